// Package medium holds the durable byte stores that back regions.
//
// A Medium keeps, per region, one unsigned 64-bit scalar and an ordered map
// from uint64 keys to byte values. A write that returned nil is visible after
// the process restarts (except for Memory, which is not durable).
package medium

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"slices"
)

var ErrNotFound = errors.New("medium: key not found")

type Medium interface {
	Scalar(ctx context.Context, region uint8) (uint64, error)
	SetScalar(ctx context.Context, region uint8, v uint64) error
	Read(ctx context.Context, region uint8, key uint64) ([]byte, error)
	Write(ctx context.Context, region uint8, key uint64, value []byte) error
	Erase(ctx context.Context, region uint8, key uint64) error
	// Scan walks a region in ascending key order. Every call starts an
	// independent traversal.
	Scan(ctx context.Context, region uint8) (Cursor, error)
	Close() error
}

// Cursor follows the pgx.Rows shape: call Next until it returns false, then
// check Err. Close is safe to call more than once.
type Cursor interface {
	Next() bool
	Key() uint64
	Value() []byte
	Err() error
	Close()
}

// state is the in-memory image shared by Memory and File.
type state struct {
	scalars map[uint8]uint64
	entries map[uint8]map[uint64][]byte
}

func newState() *state {
	return &state{
		scalars: make(map[uint8]uint64),
		entries: make(map[uint8]map[uint64][]byte),
	}
}

func (s *state) read(region uint8, key uint64) ([]byte, bool) {
	v, ok := s.entries[region][key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

func (s *state) write(region uint8, key uint64, value []byte) {
	m, ok := s.entries[region]
	if !ok {
		m = make(map[uint64][]byte)
		s.entries[region] = m
	}
	m[key] = bytes.Clone(value)
}

func (s *state) erase(region uint8, key uint64) bool {
	if _, ok := s.entries[region][key]; !ok {
		return false
	}
	delete(s.entries[region], key)
	return true
}

func (s *state) keys(region uint8) []uint64 {
	return slices.Sorted(maps.Keys(s.entries[region]))
}

// live counts what a compacted log would hold.
func (s *state) live() int {
	n := len(s.scalars)
	for _, m := range s.entries {
		n += len(m)
	}
	return n
}

// snapshotCursor iterates a key list captured at Scan time and fetches each
// value on demand, skipping keys erased since.
type snapshotCursor struct {
	keys []uint64
	pos  int
	read func(key uint64) ([]byte, bool)
	key  uint64
	val  []byte
}

func (c *snapshotCursor) Next() bool {
	for c.pos < len(c.keys) {
		k := c.keys[c.pos]
		c.pos++
		if v, ok := c.read(k); ok {
			c.key, c.val = k, v
			return true
		}
	}
	c.val = nil
	return false
}

func (c *snapshotCursor) Key() uint64   { return c.key }
func (c *snapshotCursor) Value() []byte { return c.val }
func (c *snapshotCursor) Err() error    { return nil }
func (c *snapshotCursor) Close()        { c.pos = len(c.keys) }
