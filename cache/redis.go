// Package cache holds the redis-backed content index cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const contentPrefix = "content:table:"

// Redis caches content id to category table lookups. Failures are logged and
// treated as misses so the content index stays the source of truth.
type Redis struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Options configures a redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts Options, logger *zap.Logger) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	logger.Info("redis connected", zap.String("addr", opts.Addr))
	return &Redis{rdb: rdb, ttl: opts.TTL, logger: logger}, nil
}

func key(contentID int64) string {
	return contentPrefix + strconv.FormatInt(contentID, 10)
}

// Get implements catalog.Cache.
func (r *Redis) Get(ctx context.Context, contentID int64) (string, bool) {
	v, err := r.rdb.Get(ctx, key(contentID)).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			r.logger.Warn("content cache get", zap.Int64("content_id", contentID), zap.Error(err))
		}
		return "", false
	}
	return v, true
}

// Set implements catalog.Cache.
func (r *Redis) Set(ctx context.Context, contentID int64, table string) {
	if err := r.rdb.Set(ctx, key(contentID), table, r.ttl).Err(); err != nil {
		r.logger.Warn("content cache set", zap.Int64("content_id", contentID), zap.Error(err))
	}
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
