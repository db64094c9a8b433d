// Package region partitions one durable medium into fixed, independently
// addressed regions. Region ids are part of the on-disk layout and must never
// be renumbered.
package region

import (
	"context"
	"fmt"
	"sync"

	"salon-scheduler/internal/medium"
)

type ID uint8

const (
	ClientSeq      ID = 0
	ServiceSeq     ID = 1
	AppointmentSeq ID = 2
	Clients        ID = 3
	Services       ID = 4
	Appointments   ID = 5
)

func (id ID) String() string {
	switch id {
	case ClientSeq:
		return "client-seq"
	case ServiceSeq:
		return "service-seq"
	case AppointmentSeq:
		return "appointment-seq"
	case Clients:
		return "clients"
	case Services:
		return "services"
	case Appointments:
		return "appointments"
	default:
		return fmt.Sprintf("region-%d", uint8(id))
	}
}

// Options picks and configures the medium behind a Manager.
type Options struct {
	Driver      string // file, postgres or memory
	Dir         string
	DatabaseURL string
	Compression medium.Compression
}

type Manager struct {
	m       medium.Medium
	mu      sync.Mutex
	regions map[ID]*Region
}

// Open opens the configured medium. Callers treat an error as fatal.
func Open(ctx context.Context, opts Options) (*Manager, error) {
	var (
		m   medium.Medium
		err error
	)
	switch opts.Driver {
	case "", "file":
		m, err = medium.OpenFile(opts.Dir, opts.Compression)
	case "postgres":
		m, err = medium.OpenPostgres(ctx, opts.DatabaseURL)
	case "memory":
		m = medium.NewMemory()
	default:
		return nil, fmt.Errorf("region: unknown driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("region: open %s medium: %w", opts.Driver, err)
	}
	return NewManager(m), nil
}

func NewManager(m medium.Medium) *Manager {
	return &Manager{m: m, regions: make(map[ID]*Region)}
}

// Region returns the handle for id; repeated calls return the same handle.
func (mgr *Manager) Region(id ID) *Region {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	r, ok := mgr.regions[id]
	if !ok {
		r = &Region{id: id, m: mgr.m}
		mgr.regions[id] = r
	}
	return r
}

func (mgr *Manager) Close() error { return mgr.m.Close() }

// Region is a view of the medium restricted to one region id.
type Region struct {
	id ID
	m  medium.Medium
}

func (r *Region) ID() ID { return r.id }

func (r *Region) Scalar(ctx context.Context) (uint64, error) {
	return r.m.Scalar(ctx, uint8(r.id))
}

func (r *Region) SetScalar(ctx context.Context, v uint64) error {
	return r.m.SetScalar(ctx, uint8(r.id), v)
}

func (r *Region) Read(ctx context.Context, key uint64) ([]byte, error) {
	return r.m.Read(ctx, uint8(r.id), key)
}

func (r *Region) Write(ctx context.Context, key uint64, value []byte) error {
	return r.m.Write(ctx, uint8(r.id), key, value)
}

func (r *Region) Erase(ctx context.Context, key uint64) error {
	return r.m.Erase(ctx, uint8(r.id), key)
}

func (r *Region) Scan(ctx context.Context) (medium.Cursor, error) {
	return r.m.Scan(ctx, uint8(r.id))
}
