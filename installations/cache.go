package installations

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vigilo-home/vigilo/session"
)

// ErrCacheMiss signals that no usable cached entry exists. Callers decide
// whether to fetch; the cache never fetches on its own.
var ErrCacheMiss = errors.New("cache miss")

// DefaultCacheTTL is how long a services entry stays usable. Entries also
// become unusable earlier when their capability token expires.
const DefaultCacheTTL = 540 * time.Second

// Cache stores per-installation service details.
type Cache interface {
	Get(ctx context.Context, installationID string) (*Services, error)
	Put(ctx context.Context, installationID string, svc *Services) error
	Invalidate(ctx context.Context, installationID string) error
	InvalidateAll(ctx context.Context) error
}

// EntryStats describes one cached entry for diagnostics.
type EntryStats struct {
	InstallationID string
	Age            time.Duration
	Valid          bool
}

// Stats is a point-in-time view of cache behavior.
type Stats struct {
	Size      int
	TTL       time.Duration
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   []EntryStats
}

type memoryEntry struct {
	services *Services
	storedAt time.Time
}

// MemoryCache is an in-process TTL cache of installation services.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	stats   Stats
	now     func() time.Time
}

// NewMemoryCache creates a memory cache. ttl <= 0 selects the default.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached services for an installation. Expired entries, by
// age or by capability token, are evicted and reported as a miss.
func (c *MemoryCache) Get(_ context.Context, installationID string) (*Services, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[installationID]
	if !ok {
		c.stats.Misses++
		return nil, ErrCacheMiss
	}

	if c.now().Sub(entry.storedAt) >= c.ttl || session.TokenExpired(entry.services.Capabilities, session.DefaultLeeway) {
		delete(c.entries, installationID)
		c.stats.Evictions++
		c.stats.Misses++
		return nil, ErrCacheMiss
	}

	c.stats.Hits++
	return entry.services, nil
}

// Put stores services for an installation, replacing any previous entry.
func (c *MemoryCache) Put(_ context.Context, installationID string, svc *Services) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[installationID] = memoryEntry{services: svc, storedAt: c.now()}
	return nil
}

// Invalidate drops the entry for an installation.
func (c *MemoryCache) Invalidate(_ context.Context, installationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[installationID]; ok {
		delete(c.entries, installationID)
		c.stats.Evictions++
	}
	return nil
}

// InvalidateAll drops every entry.
func (c *MemoryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Evictions += int64(len(c.entries))
	c.entries = make(map[string]memoryEntry)
	return nil
}

// SetTTL changes the freshness window. Existing entries are re-judged
// against the new TTL on their next read.
func (c *MemoryCache) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// Stats returns a snapshot of the cache counters and per-entry state.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = len(c.entries)
	stats.TTL = c.ttl
	now := c.now()
	for id, entry := range c.entries {
		age := now.Sub(entry.storedAt)
		stats.Entries = append(stats.Entries, EntryStats{
			InstallationID: id,
			Age:            age,
			Valid:          age < c.ttl && !session.TokenExpired(entry.services.Capabilities, session.DefaultLeeway),
		})
	}
	return stats
}
