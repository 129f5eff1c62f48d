package idempotency

import (
	"sync"
	"time"
)

// Entry is a cached response. A Pending entry marks a request that holds
// the key but has not produced a response yet.
type Entry struct {
	Key          string
	UserID       string
	RequestHash  string
	StatusCode   int
	ResponseBody []byte
	Pending      bool
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

type cacheKey struct {
	key    string
	userID string
}

// Cache keeps replayable responses in memory, scoped per user. Entries are
// lost on restart, like sessions.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*Entry
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[cacheKey]*Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns nil when no live entry exists.
func (c *Cache) Get(key, userID string) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.live(cacheKey{key, userID}, c.now())
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

// Reserve claims key for a request with the given hash. When another
// request already holds or answered the key, Reserve returns a copy of that
// entry and false; the caller must not run the request.
func (c *Cache) Reserve(key, userID, requestHash string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey{key, userID}
	now := c.now()
	if e := c.live(k, now); e != nil {
		cp := *e
		return &cp, false
	}

	c.entries[k] = &Entry{
		Key:         key,
		UserID:      userID,
		RequestHash: requestHash,
		Pending:     true,
		CreatedAt:   now,
		ExpiresAt:   now.Add(c.ttl),
	}
	return nil, true
}

// Complete stores the response for a reserved key. It is a no-op when the
// reservation is gone or already completed.
func (c *Cache) Complete(key, userID string, statusCode int, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey{key, userID}]
	if !ok || !e.Pending {
		return
	}
	now := c.now()
	e.StatusCode = statusCode
	e.ResponseBody = append([]byte(nil), body...)
	e.Pending = false
	e.CreatedAt = now
	e.ExpiresAt = now.Add(c.ttl)
}

// Release drops a pending reservation so the key can be retried.
func (c *Cache) Release(key, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey{key, userID}
	if e, ok := c.entries[k]; ok && e.Pending {
		delete(c.entries, k)
	}
}

func (c *Cache) live(k cacheKey, now time.Time) *Entry {
	e, ok := c.entries[k]
	if !ok {
		return nil
	}
	if !now.Before(e.ExpiresAt) {
		delete(c.entries, k)
		return nil
	}
	return e
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
