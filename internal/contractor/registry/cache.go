package registry

import (
	"context"
	"sync"
	"time"

	"pankas/pkg/platform/sentinel"
)

// RowCache stores a recent raw-row result per (registry, company id) to
// spare the upstream when several reconciliations hit the same identifier
// in a short window. It is a stampede guard, not the freshness authority —
// that lives in the freshness package.
type RowCache interface {
	Find(ctx context.Context, source, companyID string) ([]RawRecord, error)
	Save(ctx context.Context, source, companyID string, rows []RawRecord) error
}

type cachedRows struct {
	rows     []RawRecord
	storedAt time.Time
}

// InMemoryRowCache is a TTL map cache for raw registry rows.
type InMemoryRowCache struct {
	mu   sync.RWMutex
	rows map[string]cachedRows
	ttl  time.Duration
}

// NewInMemoryRowCache creates an in-memory row cache with the given TTL.
func NewInMemoryRowCache(ttl time.Duration) *InMemoryRowCache {
	return &InMemoryRowCache{
		rows: make(map[string]cachedRows),
		ttl:  ttl,
	}
}

func rowKey(source, companyID string) string {
	return source + ":" + companyID
}

// Find returns cached rows, or sentinel.ErrNotFound when absent or expired.
func (c *InMemoryRowCache) Find(_ context.Context, source, companyID string) ([]RawRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.rows[rowKey(source, companyID)]; ok {
		if time.Since(cached.storedAt) < c.ttl {
			return cached.rows, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Save stores rows for the (source, companyID) pair. An empty result set
// is cached too: "not listed" is an answer worth remembering for the TTL.
func (c *InMemoryRowCache) Save(_ context.Context, source, companyID string, rows []RawRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[rowKey(source, companyID)] = cachedRows{rows: rows, storedAt: time.Now()}
	return nil
}
