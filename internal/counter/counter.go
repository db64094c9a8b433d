// Package counter hands out identities from a scalar persisted in a region.
package counter

import (
	"context"
	"math"

	"salon-scheduler/internal/region"
)

// Counter is not safe for concurrent use; callers serialize Next.
type Counter struct {
	r *region.Region
}

func New(r *region.Region) *Counter {
	return &Counter{r: r}
}

// Next returns the stored value as the new identity and persists value+1.
// The first identity is 0. Running out of identities panics: the region is
// unusable from that point on.
func (c *Counter) Next(ctx context.Context) (uint64, error) {
	cur, err := c.r.Scalar(ctx)
	if err != nil {
		return 0, err
	}
	if cur == math.MaxUint64 {
		panic("counter: identity space exhausted for " + c.r.ID().String())
	}
	if err := c.r.SetScalar(ctx, cur+1); err != nil {
		return 0, err
	}
	return cur, nil
}

// Peek returns the identity Next would hand out.
func (c *Counter) Peek(ctx context.Context) (uint64, error) {
	return c.r.Scalar(ctx)
}
