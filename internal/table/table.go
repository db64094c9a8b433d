// Package table maps identities to records inside one region.
package table

import (
	"context"
	"errors"
	"fmt"

	"salon-scheduler/internal/codec"
	"salon-scheduler/internal/medium"
	"salon-scheduler/internal/region"
)

var ErrNotFound = medium.ErrNotFound

type Table[T any] struct {
	r *region.Region
	c codec.Codec[T]
}

func New[T any](r *region.Region, c codec.Codec[T]) *Table[T] {
	return &Table[T]{r: r, c: c}
}

// Insert writes rec at id, replacing whatever is there.
func (t *Table[T]) Insert(ctx context.Context, id uint64, rec T) error {
	b, err := t.c.Encode(rec)
	if err != nil {
		return fmt.Errorf("%s %d: %w", t.r.ID(), id, err)
	}
	return t.r.Write(ctx, id, b)
}

func (t *Table[T]) Get(ctx context.Context, id uint64) (T, error) {
	var zero T
	b, err := t.r.Read(ctx, id)
	if err != nil {
		return zero, err
	}
	rec, err := t.c.Decode(b)
	if err != nil {
		return zero, fmt.Errorf("%s %d: %w", t.r.ID(), id, err)
	}
	return rec, nil
}

func (t *Table[T]) Remove(ctx context.Context, id uint64) error {
	return t.r.Erase(ctx, id)
}

// Iterate starts a fresh traversal in ascending id order.
func (t *Table[T]) Iterate(ctx context.Context) (*Cursor[T], error) {
	mc, err := t.r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &Cursor[T]{mc: mc, c: t.c, region: t.r.ID()}, nil
}

func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	return t.Filter(ctx, func(T) bool { return true })
}

// Filter scans the whole table and keeps the records pred accepts.
func (t *Table[T]) Filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	cur, err := t.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	out := []T{}
	for cur.Next() {
		if rec := cur.Record(); pred(rec) {
			out = append(out, rec)
		}
	}
	return out, cur.Err()
}

type Cursor[T any] struct {
	mc     medium.Cursor
	c      codec.Codec[T]
	region region.ID
	id     uint64
	rec    T
	err    error
}

func (c *Cursor[T]) Next() bool {
	if c.err != nil || !c.mc.Next() {
		return false
	}
	rec, err := c.c.Decode(c.mc.Value())
	if err != nil {
		c.err = fmt.Errorf("%s %d: %w", c.region, c.mc.Key(), err)
		return false
	}
	c.id, c.rec = c.mc.Key(), rec
	return true
}

func (c *Cursor[T]) ID() uint64 { return c.id }
func (c *Cursor[T]) Record() T  { return c.rec }

func (c *Cursor[T]) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.mc.Err()
}

func (c *Cursor[T]) Close() { c.mc.Close() }

// IsNotFound reports whether err means the id has no record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
