// Package usage tracks lightweight conversion counters in Redis for the
// stats endpoint. Rendered images themselves are never cached.
package usage

import (
	"context"

	"github.com/redis/go-redis/v9"

	"pdf2image/internal/infra/logging"
)

const (
	documentsKey = "usage:documents"
	pagesKey     = "usage:pages"
)

// Stats is a point-in-time snapshot of the counters.
type Stats struct {
	Documents int64 `json:"documents"`
	Pages     int64 `json:"pages"`
}

// Counters increments conversion totals. A nil *Counters is a valid no-op,
// used when no Redis is configured.
type Counters struct {
	rdb *redis.Client
}

// New connects to the counters database. Returns nil when addr is empty.
func New(addr string, db int) *Counters {
	if addr == "" {
		return nil
	}
	return &Counters{rdb: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

// NewWithClient wires an existing client, mainly for tests.
func NewWithClient(rdb *redis.Client) *Counters {
	return &Counters{rdb: rdb}
}

// RecordConversion counts one converted document and its pages. Counter
// failures are logged, never surfaced: stats must not fail a conversion.
func (c *Counters) RecordConversion(ctx context.Context, pages int) {
	if c == nil {
		return
	}
	pipe := c.rdb.Pipeline()
	pipe.Incr(ctx, documentsKey)
	pipe.IncrBy(ctx, pagesKey, int64(pages))
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Warn("Usage counter update failed", "error", err)
	}
}

// Snapshot reads the current totals. A nil receiver reports zeros.
func (c *Counters) Snapshot(ctx context.Context) (Stats, error) {
	if c == nil {
		return Stats{}, nil
	}
	docs, err := c.rdb.Get(ctx, documentsKey).Int64()
	if err != nil && err != redis.Nil {
		return Stats{}, err
	}
	pages, err := c.rdb.Get(ctx, pagesKey).Int64()
	if err != nil && err != redis.Nil {
		return Stats{}, err
	}
	return Stats{Documents: docs, Pages: pages}, nil
}
