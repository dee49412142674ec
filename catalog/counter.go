package catalog

import (
	"context"
	"fmt"
	"slices"
)

// Direction of a plan_count adjustment.
type Direction int

const (
	Increment Direction = iota + 1
	Decrement
)

func (d Direction) String() string {
	switch d {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// CounterStore applies a single plan_count change. Decrements never take the
// counter below zero.
type CounterStore interface {
	Index
	AdjustPlanCount(ctx context.Context, table Table, contentID int64, dir Direction) error
}

// Counter keeps plan_count in step with course membership.
type Counter struct {
	resolver *Resolver
}

// NewCounter creates a Counter resolving tables through r.
func NewCounter(r *Resolver) *Counter {
	return &Counter{resolver: r}
}

// Adjust moves plan_count one step in dir for every distinct id. Ids are
// handled in ascending order; the first failure stops the batch and is
// returned so the caller can roll back.
func (c *Counter) Adjust(ctx context.Context, s CounterStore, contentIDs []int64, dir Direction) error {
	ids := slices.Clone(contentIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		table, err := c.resolver.Resolve(ctx, s, id)
		if err != nil {
			return err
		}
		if err := s.AdjustPlanCount(ctx, table, id, dir); err != nil {
			return fmt.Errorf("%s plan_count of %d in %s: %w", dir, id, table, err)
		}
	}
	return nil
}
