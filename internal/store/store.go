package store

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"salon-scheduler/internal/codec"
	"salon-scheduler/internal/counter"
	"salon-scheduler/internal/model"
	"salon-scheduler/internal/region"
	"salon-scheduler/internal/table"
)

// Store is safe for concurrent use. Each entity kind has one RWMutex
// covering its table and its counter; a write holds it for exactly one
// operation.
type Store struct {
	clients      *entities[model.Client]
	services     *entities[model.Service]
	appointments *entities[model.Appointment]
	now          func() time.Time
}

type Option func(*Store)

// WithClock overrides the timestamp source for appointments.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(mgr *region.Manager, opts ...Option) *Store {
	s := &Store{
		clients:      newEntities(mgr, "client", region.ClientSeq, region.Clients, codec.Client),
		services:     newEntities(mgr, "service", region.ServiceSeq, region.Services, codec.Service),
		appointments: newEntities(mgr, "appointment", region.AppointmentSeq, region.Appointments, codec.Appointment),
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Round(0)
}

type entities[T any] struct {
	mu    sync.RWMutex
	kind  string
	seq   *counter.Counter
	table *table.Table[T]
	codec codec.Codec[T]
}

func newEntities[T any](mgr *region.Manager, kind string, seq, tbl region.ID, c codec.Codec[T]) *entities[T] {
	return &entities[T]{
		kind:  kind,
		seq:   counter.New(mgr.Region(seq)),
		table: table.New(mgr.Region(tbl), c),
		codec: c,
	}
}

// tooLarge reports a record over the codec bound as a validation failure.
func (e *entities[T]) tooLarge(err error) error {
	if errors.Is(err, codec.ErrTooLarge) {
		return &ValidationError{Kind: e.kind, Field: "record", Reason: err.Error()}
	}
	return err
}

func (e *entities[T]) notFound(id uint64, err error) error {
	if table.IsNotFound(err) {
		return &NotFoundError{Kind: e.kind, ID: id}
	}
	return err
}

// create allocates the next id and writes build(id). Payloads are validated
// before this is called so a rejected payload never consumes an id.
func (e *entities[T]) create(ctx context.Context, build func(id uint64) T) (*T, error) {
	// the largest id has the longest varint, so this bounds the real encoding
	if _, err := e.codec.Encode(build(math.MaxUint64)); err != nil {
		return nil, e.tooLarge(err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.seq.Next(ctx)
	if err != nil {
		return nil, err
	}
	rec := build(id)
	if err := e.table.Insert(ctx, id, rec); err != nil {
		return nil, e.tooLarge(err)
	}
	return &rec, nil
}

// update replaces the record at id with build(previous).
func (e *entities[T]) update(ctx context.Context, id uint64, build func(prev T) T) (*T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, err := e.table.Get(ctx, id)
	if err != nil {
		return nil, e.notFound(id, err)
	}
	rec := build(prev)
	if err := e.table.Insert(ctx, id, rec); err != nil {
		return nil, e.tooLarge(err)
	}
	return &rec, nil
}

func (e *entities[T]) get(ctx context.Context, id uint64) (*T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rec, err := e.table.Get(ctx, id)
	if err != nil {
		return nil, e.notFound(id, err)
	}
	return &rec, nil
}

func (e *entities[T]) remove(ctx context.Context, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notFound(id, e.table.Remove(ctx, id))
}

func (e *entities[T]) list(ctx context.Context) ([]T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.table.All(ctx)
}

func (e *entities[T]) filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.table.Filter(ctx, pred)
}

func required(kind, field, v string) error {
	if v == "" {
		return &ValidationError{Kind: kind, Field: field, Reason: "is required"}
	}
	return nil
}

func positive(kind, field string, v uint64) error {
	if v == 0 {
		return &ValidationError{Kind: kind, Field: field, Reason: "must be positive"}
	}
	return nil
}
