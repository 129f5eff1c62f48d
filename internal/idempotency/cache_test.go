package idempotency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) (*Cache, *time.Time) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache(ttl)
	c.SetClock(func() time.Time { return now })
	return c, &now
}

func put(t *testing.T, c *Cache, key, userID string, status int) {
	t.Helper()
	_, ok := c.Reserve(key, userID, "h")
	require.True(t, ok)
	c.Complete(key, userID, status, []byte(`{}`))
}

func TestCache_ReserveComplete(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	existing, ok := c.Reserve("k1", "u1", "h")
	require.True(t, ok)
	assert.Nil(t, existing)

	pending := c.Get("k1", "u1")
	require.NotNil(t, pending)
	assert.True(t, pending.Pending)

	c.Complete("k1", "u1", 200, []byte(`{"ok":true}`))

	got := c.Get("k1", "u1")
	require.NotNil(t, got)
	assert.False(t, got.Pending)
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, "h", got.RequestHash)
	assert.JSONEq(t, `{"ok":true}`, string(got.ResponseBody))

	assert.Nil(t, c.Get("k1", "u2"), "keys are scoped per user")
	assert.Nil(t, c.Get("k2", "u1"))
}

func TestCache_ReserveHeldKey(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	_, ok := c.Reserve("k", "u", "h1")
	require.True(t, ok)

	existing, ok := c.Reserve("k", "u", "h2")
	assert.False(t, ok)
	require.NotNil(t, existing)
	assert.True(t, existing.Pending)
	assert.Equal(t, "h1", existing.RequestHash)

	c.Complete("k", "u", 200, nil)
	existing, ok = c.Reserve("k", "u", "h1")
	assert.False(t, ok)
	assert.Equal(t, 200, existing.StatusCode)
}

func TestCache_CompleteOnce(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	put(t, c, "k", "u", 200)
	c.Complete("k", "u", 500, nil)
	c.Complete("other", "u", 200, nil)

	assert.Equal(t, 200, c.Get("k", "u").StatusCode)
	assert.Nil(t, c.Get("other", "u"), "complete without reservation stores nothing")
}

func TestCache_Release(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	_, ok := c.Reserve("k", "u", "h")
	require.True(t, ok)
	c.Release("k", "u")
	assert.Nil(t, c.Get("k", "u"))

	_, ok = c.Reserve("k", "u", "h")
	assert.True(t, ok, "released key can be reserved again")

	put(t, c, "done", "u", 201)
	c.Release("done", "u")
	assert.NotNil(t, c.Get("done", "u"), "completed entries are not released")
}

func TestCache_ConcurrentReserve(t *testing.T) {
	c := NewCache(time.Hour)

	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Reserve("k", "u", "h"); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestCache_Expiry(t *testing.T) {
	c, now := newTestCache(time.Minute)

	put(t, c, "k", "u", 200)
	*now = now.Add(time.Minute)

	assert.Nil(t, c.Get("k", "u"))

	put(t, c, "k", "u", 201)
	assert.Equal(t, 201, c.Get("k", "u").StatusCode)
}

func TestCache_Purge(t *testing.T) {
	c, now := newTestCache(time.Minute)

	put(t, c, "a", "u", 200)
	*now = now.Add(30 * time.Second)
	put(t, c, "b", "u", 200)
	*now = now.Add(45 * time.Second)

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())
	assert.NotNil(t, c.Get("b", "u"))
}
