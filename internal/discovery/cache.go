package discovery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

// CatalogCache stores discovered catalogs in Redis, keyed by a hash of the
// source type and configuration so that a configuration change invalidates
// the cached catalog. A nil *CatalogCache is a no-op.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a CatalogCache. client may be nil to disable caching.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if client == nil {
		return nil
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// CacheKey derives the cache key for a source type and configuration blob.
func CacheKey(sourceType, configuration string) string {
	sum := sha256.Sum256([]byte(sourceType + "\n" + configuration))
	return "catalog:" + hex.EncodeToString(sum[:])
}

// Get returns the cached catalog, if any. Cache failures are logged and
// treated as misses.
func (c *CatalogCache) Get(ctx context.Context, sourceType, configuration string) (*models.Catalog, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, CacheKey(sourceType, configuration)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Catalog cache read failed: %v", err)
		}
		return nil, false
	}
	var catalog models.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		log.Printf("Catalog cache entry is corrupt, ignoring: %v", err)
		return nil, false
	}
	return &catalog, true
}

// Set stores a catalog. Cache failures are logged and ignored; discovery
// results are never lost to a cache outage.
func (c *CatalogCache) Set(ctx context.Context, sourceType, configuration string, catalog *models.Catalog) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(catalog)
	if err != nil {
		log.Printf("Failed to marshal catalog for cache: %v", err)
		return
	}
	if err := c.client.Set(ctx, CacheKey(sourceType, configuration), raw, c.ttl).Err(); err != nil {
		log.Printf("Catalog cache write failed: %v", err)
	}
}
