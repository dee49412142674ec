package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Resolver maps content ids to category tables.
type Resolver struct {
	cache  Cache
	logger *zap.Logger
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(cache Cache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cache: cache, logger: logger}
}

// Resolve returns the category table of contentID, reading through the cache
// when one is configured. Cached names are validated like fresh ones.
func (r *Resolver) Resolve(ctx context.Context, idx Index, contentID int64) (Table, error) {
	if r.cache != nil {
		if name, ok := r.cache.Get(ctx, contentID); ok {
			t, err := ParseTable(name)
			if err == nil {
				return t, nil
			}
			r.logger.Warn("cached target table rejected",
				zap.Int64("content_id", contentID), zap.String("table", name))
		}
	}

	name, err := idx.TargetTable(ctx, contentID)
	if err != nil {
		return "", fmt.Errorf("resolve content %d: %w", contentID, err)
	}
	t, err := ParseTable(name)
	if err != nil {
		return "", fmt.Errorf("resolve content %d: %w", contentID, err)
	}
	if r.cache != nil {
		r.cache.Set(ctx, contentID, name)
	}
	return t, nil
}
