package storage

import (
	"context"
	"sync"
	"time"

	"advisor-engine/internal/types"
)

// recencyEntry holds one user's cached recent records
type recencyEntry struct {
	records   []*types.QuestionRecord
	expiresAt time.Time
}

// TTLRecencyCache is a thread-safe in-process recency cache. Entries expire
// after the configured TTL and each user's list is bounded to maxRecent
// records, newest first. Lost updates under concurrent same-user writers
// only shorten the cached list; the durable ledger stays authoritative.
type TTLRecencyCache struct {
	mu        sync.RWMutex
	entries   map[string]*recencyEntry
	ttl       time.Duration
	maxRecent int
}

// NewTTLRecencyCache creates a recency cache with the given TTL and per-user
// bound
func NewTTLRecencyCache(ttl time.Duration, maxRecent int) *TTLRecencyCache {
	return &TTLRecencyCache{
		entries:   make(map[string]*recencyEntry),
		ttl:       ttl,
		maxRecent: maxRecent,
	}
}

// Append adds a record to the user's recent list, trimming to the bound
func (c *TTLRecencyCache) Append(_ context.Context, userID string, record *types.QuestionRecord) {
	clone := *record

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entries[userID]
	if entry == nil || time.Now().After(entry.expiresAt) {
		entry = &recencyEntry{}
		c.entries[userID] = entry
	}

	entry.records = append([]*types.QuestionRecord{&clone}, entry.records...)
	if len(entry.records) > c.maxRecent {
		entry.records = entry.records[:c.maxRecent]
	}
	entry.expiresAt = time.Now().Add(c.ttl)
}

// Recent returns cached records newest-first, or nil on a cold cache
func (c *TTLRecencyCache) Recent(_ context.Context, userID string) []*types.QuestionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry := c.entries[userID]
	if entry == nil || time.Now().After(entry.expiresAt) {
		return nil
	}

	out := make([]*types.QuestionRecord, len(entry.records))
	for i, r := range entry.records {
		clone := *r
		out[i] = &clone
	}
	return out
}

// Invalidate drops the user's cached list
func (c *TTLRecencyCache) Invalidate(_ context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// NoopRecencyCache disables caching entirely; every read goes to durable
// storage. Used to verify that correctness holds without the cache.
type NoopRecencyCache struct{}

// NewNoopRecencyCache creates a cache that never holds anything
func NewNoopRecencyCache() *NoopRecencyCache { return &NoopRecencyCache{} }

// Append discards the record
func (c *NoopRecencyCache) Append(_ context.Context, _ string, _ *types.QuestionRecord) {}

// Recent always reports a cold cache
func (c *NoopRecencyCache) Recent(_ context.Context, _ string) []*types.QuestionRecord { return nil }

// Invalidate is a no-op
func (c *NoopRecencyCache) Invalidate(_ context.Context, _ string) {}
