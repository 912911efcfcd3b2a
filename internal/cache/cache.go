package cache

import (
	"context"
	"time"

	"github.com/asheeshkh/mausam/internal/models"
)

// Store defines the interface for weather report caching backends.
// Get returns a cached report if present and not expired, Set stores one with TTL.
type Store interface {
	Get(ctx context.Context, key string) (models.Report, bool, error)
	Set(ctx context.Context, key string, value models.Report, ttl time.Duration) error
}

// Memory implements Store using an in-memory map with TTL-based expiration.
// Expired entries are removed on access. Not safe for concurrent use; the
// session handles one query at a time.
type Memory struct {
	data map[string]entry
	now  func() time.Time
}

// entry stores a cached report with its expiration timestamp.
type entry struct {
	value     models.Report
	expiresAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// NewMemoryWithClock creates a store using the given clock. Tests use this to
// pin expiry boundaries without sleeping.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		data: make(map[string]entry),
		now:  now,
	}
}

// Get retrieves the cached report for key if present and not expired.
// Returns (report, true, nil) on hit, (zero, false, nil) on miss or expiry.
// Expired entries are evicted on access.
func (m *Memory) Get(ctx context.Context, key string) (models.Report, bool, error) {
	e, ok := m.data[key]
	if !ok {
		return models.Report{}, false, nil
	}

	if m.now().After(e.expiresAt) {
		delete(m.data, key)
		return models.Report{}, false, nil
	}

	return e.value, true, nil
}

// Set stores a report with the specified TTL, overwriting any prior entry for
// the key. At most one live entry per key exists at any time.
func (m *Memory) Set(ctx context.Context, key string, value models.Report, ttl time.Duration) error {
	m.data[key] = entry{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
	return nil
}
