package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"matric-memory/internal/types"
)

const (
	defaultCacheNamespace = "mm"
	defaultCacheTTL       = 5 * time.Minute
)

// ResultCache caches SearchResponses in Redis keyed by a hash of the
// resolved request, so repeated identical queries (common for paginated
// UIs) skip the FTS/semantic retrieval and fusion pipeline entirely.
type ResultCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewResultCache connects to redisURL (e.g. "redis://localhost:6379/0") and
// verifies connectivity before returning.
func NewResultCache(redisURL string) (*ResultCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &ResultCache{client: client, namespace: defaultCacheNamespace, ttl: defaultCacheTTL}, nil
}

// Close releases the underlying Redis connection pool.
func (c *ResultCache) Close() error {
	return c.client.Close()
}

// requestKey hashes the fields of req (and the bound schema) that affect
// the result set, so distinct archives or filters never collide.
func requestKey(schema string, req types.SearchRequest) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(struct {
		Schema string
		Req    types.SearchRequest
	}{schema, req})
	return hex.EncodeToString(h.Sum(nil))
}

func (c *ResultCache) key(schema string, req types.SearchRequest) string {
	return fmt.Sprintf("%s:search:%s", c.namespace, requestKey(schema, req))
}

// Get returns a cached response, or nil if absent or expired.
func (c *ResultCache) Get(ctx context.Context, schema string, req types.SearchRequest) (*types.SearchResponse, error) {
	data, err := c.client.Get(ctx, c.key(schema, req)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var resp types.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("cache unmarshal: %w", err)
	}
	return &resp, nil
}

// Set stores resp under the request's cache key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, schema string, req types.SearchRequest, resp *types.SearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key(schema, req), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// InvalidateArchive drops every cached search response in the namespace,
// for all archives alike: the schema is hashed into each key, so one
// archive's entries cannot be matched by pattern and schema is not used.
// Nothing in this module calls it.
func (c *ResultCache) InvalidateArchive(ctx context.Context, schema string) error {
	pattern := fmt.Sprintf("%s:search:*", c.namespace)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
