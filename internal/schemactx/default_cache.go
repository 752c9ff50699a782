package schemactx

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"matric-memory/internal/obslog"
	"matric-memory/internal/types"
)

const defaultTTL = 5 * time.Minute

// DefaultArchiveCache is the process-wide cell caching the current default
// archive. A read-lock fast path serves fresh entries; a
// stale or empty cache upgrades to a write lock, re-queries, and falls back
// to the public archive on any database error rather than failing the
// caller.
type DefaultArchiveCache struct {
	mu          sync.RWMutex
	ctx         *types.ArchiveContext
	lastRefresh time.Time
	ttl         time.Duration
	pool        *pgxpool.Pool
}

// NewDefaultArchiveCache constructs an empty cache bound to pool, with the
// spec's default 5-minute TTL.
func NewDefaultArchiveCache(pool *pgxpool.Pool) *DefaultArchiveCache {
	return &DefaultArchiveCache{pool: pool, ttl: defaultTTL}
}

// Get returns the current default ArchiveContext, refreshing it from the
// archives table if the cache is stale or empty.
func (c *DefaultArchiveCache) Get(ctx context.Context) types.ArchiveContext {
	c.mu.RLock()
	if c.ctx != nil && time.Since(c.lastRefresh) < c.ttl {
		v := *c.ctx
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the write lock.
	if c.ctx != nil && time.Since(c.lastRefresh) < c.ttl {
		return *c.ctx
	}

	row := c.pool.QueryRow(ctx,
		`SELECT schema_name, is_default FROM public.archives WHERE is_default = true LIMIT 1`)

	var archive types.ArchiveContext
	if err := row.Scan(&archive.Schema, &archive.IsDefault); err != nil {
		obslog.FromContext(ctx).Warn("default archive lookup failed, falling back to public",
			obslog.ErrorMsg, err)
		archive = types.DefaultArchiveContext()
	}

	c.ctx = &archive
	c.lastRefresh = time.Now()
	return archive
}

// Invalidate forces the next Get to re-query, used when the default
// archive assignment changes.
func (c *DefaultArchiveCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRefresh = time.Time{}
}
