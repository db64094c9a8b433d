package medium

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const logName = "regions.log"

// ErrClosed is returned by writes once the log file is no longer open.
var ErrClosed = errors.New("medium: log closed")

// reopen opens the compacted log for appending.
var reopen = func(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
}

// Compaction kicks in on open once the log carries this many frames and
// dead frames outnumber live entries 4:1.
const (
	compactMinFrames = 1024
	compactRatio     = 4
)

// File is a Medium backed by one append-only log. Every mutation is a
// checksummed frame that is fsynced before the call returns; the full state
// is replayed into memory on open.
type File struct {
	mu     sync.RWMutex
	path   string
	f      *os.File
	comp   Compression
	c      compressor
	st     *state
	frames int
	size   int64
}

// OpenFile opens (or creates) the log in dir. A torn or corrupt tail is cut
// off at the last intact frame.
func OpenFile(dir string, comp Compression) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	fm := &File{
		path: filepath.Join(dir, logName),
		comp: comp,
		st:   newState(),
	}
	if err := fm.replay(); err != nil {
		fm.c.close()
		return nil, err
	}
	f, err := os.OpenFile(fm.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fm.c.close()
		return nil, err
	}
	fm.f = f

	if live := fm.st.live(); fm.frames >= compactMinFrames && fm.frames > compactRatio*live {
		if err := fm.Compact(); err != nil {
			fm.Close()
			return nil, fmt.Errorf("compact: %w", err)
		}
	}
	return fm, nil
}

func (fm *File) replay() error {
	data, err := os.ReadFile(fm.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	off := 0
	for off < len(data) {
		m, n, err := fm.c.decodeFrame(data[off:])
		if err != nil {
			log.Printf("medium: %s: dropping tail at offset %d: %v", fm.path, off, err)
			if err := os.Truncate(fm.path, int64(off)); err != nil {
				return fmt.Errorf("truncate torn tail: %w", err)
			}
			break
		}
		fm.st.apply(m)
		fm.frames++
		off += n
	}
	fm.size = int64(off)
	if fm.frames > 0 {
		log.Printf("medium: replayed %d frames from %s", fm.frames, fm.path)
	}
	return nil
}

// append must be called with mu held.
func (fm *File) append(m mutation) error {
	if fm.f == nil {
		return ErrClosed
	}
	frame, err := fm.c.encodeFrame(fm.comp, m)
	if err != nil {
		return err
	}
	if _, err := fm.f.Write(frame); err != nil {
		fm.rollback()
		return err
	}
	if err := fm.f.Sync(); err != nil {
		fm.rollback()
		return err
	}
	fm.size += int64(len(frame))
	fm.frames++
	fm.st.apply(m)
	return nil
}

// rollback cuts a partially written frame so later appends stay readable.
func (fm *File) rollback() {
	if err := fm.f.Truncate(fm.size); err != nil {
		log.Printf("medium: %s: truncate after failed append: %v", fm.path, err)
	}
}

func (fm *File) Scalar(_ context.Context, region uint8) (uint64, error) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return fm.st.scalars[region], nil
}

func (fm *File) SetScalar(_ context.Context, region uint8, v uint64) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.append(mutation{op: opScalar, region: region, key: v})
}

func (fm *File) Read(_ context.Context, region uint8, key uint64) ([]byte, error) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	v, ok := fm.st.read(region, key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (fm *File) Write(_ context.Context, region uint8, key uint64, value []byte) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.append(mutation{op: opWrite, region: region, key: key, value: value})
}

func (fm *File) Erase(_ context.Context, region uint8, key uint64) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if _, ok := fm.st.entries[region][key]; !ok {
		return ErrNotFound
	}
	return fm.append(mutation{op: opErase, region: region, key: key})
}

func (fm *File) Scan(_ context.Context, region uint8) (Cursor, error) {
	fm.mu.RLock()
	keys := fm.st.keys(region)
	fm.mu.RUnlock()
	return &snapshotCursor{keys: keys, read: func(key uint64) ([]byte, bool) {
		fm.mu.RLock()
		defer fm.mu.RUnlock()
		return fm.st.read(region, key)
	}}, nil
}

// Compact rewrites the log so it holds one frame per live scalar and entry.
// The new log is written beside the old one and renamed over it.
func (fm *File) Compact() error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if fm.f == nil {
		return ErrClosed
	}

	tmp := fm.path + ".compact"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	n, size, err := fm.writeLive(out)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, fm.path); err != nil {
		os.Remove(tmp)
		return err
	}
	syncDir(filepath.Dir(fm.path))

	// the old handle now points at an unlinked inode
	f, err := reopen(fm.path)
	if err != nil {
		fm.f.Close()
		fm.f = nil
		return fmt.Errorf("reopen after compact: %w", err)
	}
	fm.f.Close()
	log.Printf("medium: compacted %s from %d to %d frames", fm.path, fm.frames, n)
	fm.f = f
	fm.frames = n
	fm.size = size
	return nil
}

// writeLive returns the number of frames and bytes written.
func (fm *File) writeLive(w io.Writer) (int, int64, error) {
	var (
		n    int
		size int64
	)
	emit := func(m mutation) error {
		frame, err := fm.c.encodeFrame(fm.comp, m)
		if err != nil {
			return err
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
		n++
		size += int64(len(frame))
		return nil
	}
	for _, r := range slices.Sorted(maps.Keys(fm.st.scalars)) {
		if err := emit(mutation{op: opScalar, region: r, key: fm.st.scalars[r]}); err != nil {
			return n, size, err
		}
	}
	for _, r := range slices.Sorted(maps.Keys(fm.st.entries)) {
		for _, k := range fm.st.keys(r) {
			if err := emit(mutation{op: opWrite, region: r, key: k, value: fm.st.entries[r][k]}); err != nil {
				return n, size, err
			}
		}
	}
	return n, size, nil
}

func (fm *File) Close() error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.c.close()
	if fm.f == nil {
		return nil
	}
	err := fm.f.Close()
	fm.f = nil
	return err
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}
