package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Josh-IE/risk-management/internal/domain/models"
)

// SchemaCache keeps loaded schemas, with their active fields, for a bounded
// time. Each process has its own cache; entries written by other processes
// are picked up once the TTL expires. Cached schemas are shared and must not
// be mutated.
type SchemaCache struct {
	cache *expirable.LRU[int64, *models.Schema]
}

// NewSchemaCache creates a cache of at most maxSize schemas living ttl
func NewSchemaCache(maxSize int, ttl time.Duration) *SchemaCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &SchemaCache{cache: expirable.NewLRU[int64, *models.Schema](maxSize, nil, ttl)}
}

// Get returns a cached schema and records a hit or miss
func (c *SchemaCache) Get(id int64) (*models.Schema, bool) {
	val, ok := c.cache.Get(id)
	if ok {
		schemaCacheHitsTotal.Inc()
		return val, true
	}
	schemaCacheMissesTotal.Inc()
	return nil, false
}

// Set adds or replaces a schema
func (c *SchemaCache) Set(schema *models.Schema) {
	c.cache.Add(schema.ID, schema)
}

// Invalidate drops a schema after it changed
func (c *SchemaCache) Invalidate(id int64) {
	c.cache.Remove(id)
}
