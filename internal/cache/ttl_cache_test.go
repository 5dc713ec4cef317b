package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evictions struct {
	mu   sync.Mutex
	keys []string
}

func (e *evictions) record(key string, _ string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = append(e.keys, key)
}

func (e *evictions) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.keys...)
}

// fakeClock lets tests move time without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, ttl time.Duration) (*TTLCache[string], *fakeClock, *evictions) {
	t.Helper()
	ev := &evictions{}
	c := NewTTLCache[string](ttl, time.Hour, ev.record)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.Now
	t.Cleanup(c.Stop)
	return c, clock, ev
}

func TestTTLCache_BasicOperations(t *testing.T) {
	c, _, _ := newTestCache(t, time.Minute)

	c.Set("test-key", "test-value")
	value, exists := c.Get("test-key")
	assert.True(t, exists)
	assert.Equal(t, "test-value", value)

	value, exists = c.Get("non-existent-key")
	assert.False(t, exists)
	assert.Empty(t, value)
}

func TestTTLCache_UpdateEvictsPrevious(t *testing.T) {
	c, _, ev := newTestCache(t, time.Minute)

	c.Set("k", "original")
	c.Set("k", "updated")

	value, _ := c.Get("k")
	assert.Equal(t, "updated", value)
	assert.Equal(t, []string{"k"}, ev.list())
}

func TestTTLCache_Delete(t *testing.T) {
	c, _, ev := newTestCache(t, time.Minute)

	c.Set("k", "v")
	c.Delete("k")
	c.Delete("k")

	_, exists := c.Get("k")
	assert.False(t, exists)
	assert.Equal(t, []string{"k"}, ev.list(), "deleting a missing key evicts nothing")
}

func TestTTLCache_ExpiresAfterIdleTTL(t *testing.T) {
	c, clock, ev := newTestCache(t, time.Minute)
	c.Set("k", "v")

	clock.Advance(45 * time.Second)
	_, exists := c.Get("k")
	require.True(t, exists)

	// the hit above extended the lifetime
	clock.Advance(45 * time.Second)
	_, exists = c.Get("k")
	require.True(t, exists)

	clock.Advance(61 * time.Second)
	_, exists = c.Get("k")
	assert.False(t, exists)
	assert.Equal(t, []string{"k"}, ev.list())
}

func TestTTLCache_CleanupEvictsExpired(t *testing.T) {
	c, clock, ev := newTestCache(t, time.Minute)
	c.Set("old", "v")
	clock.Advance(30 * time.Second)
	c.Set("new", "v")

	clock.Advance(45 * time.Second)
	stats := c.GetStats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)

	c.performCleanup()
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, []string{"old"}, ev.list())
}

func TestTTLCache_Clear(t *testing.T) {
	c, _, ev := newTestCache(t, time.Minute)
	for _, k := range []string{"key1", "key2", "key3"} {
		c.Set(k, "v")
	}

	c.Clear()
	assert.Zero(t, c.Size())
	assert.ElementsMatch(t, []string{"key1", "key2", "key3"}, ev.list())
}

func TestTTLCache_GetOrCreate(t *testing.T) {
	c, _, _ := newTestCache(t, time.Minute)

	calls := 0
	create := func() (string, error) {
		calls++
		return "made", nil
	}
	v, err := c.GetOrCreate("k", create)
	require.NoError(t, err)
	assert.Equal(t, "made", v)

	v, err = c.GetOrCreate("k", create)
	require.NoError(t, err)
	assert.Equal(t, "made", v)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrCreate("bad", func() (string, error) { return "", errors.New("nope") })
	assert.Error(t, err)
	_, exists := c.Get("bad")
	assert.False(t, exists)
}

func TestTTLCache_StopIsIdempotent(t *testing.T) {
	c := NewTTLCache[int](time.Minute, time.Millisecond, nil)
	c.Stop()
	assert.NotPanics(t, c.Stop)
}
