package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLRU(capacity int) (*LRU[[]string], *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := NewLRU[[]string](capacity, time.Minute)
	c.now = clock.Now
	return c, clock
}

func TestLRU_BasicOperations(t *testing.T) {
	c, _ := newTestLRU(10)

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set("chicken", []string{"171477"}, 0)
		v, ok := c.Get("chicken")
		assert.True(t, ok)
		assert.Equal(t, []string{"171477"}, v)
	})

	t.Run("GetMissing", func(t *testing.T) {
		v, ok := c.Get("durian")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		c.Set("rice", []string{"a"}, 0)
		c.Set("rice", []string{"b"}, 0)
		v, ok := c.Get("rice")
		assert.True(t, ok)
		assert.Equal(t, []string{"b"}, v)
		assert.Equal(t, 2, c.Len())
	})
}

func TestLRU_Expiration(t *testing.T) {
	c, clock := newTestLRU(10)
	c.Set("short", []string{"x"}, 10*time.Second)
	c.Set("default", []string{"y"}, 0)

	clock.Advance(11 * time.Second)
	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("default")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, c.CleanupExpired())
	assert.Equal(t, 0, c.Len())
}

func TestLRU_Eviction(t *testing.T) {
	c, _ := newTestLRU(3)
	c.Set("a", nil, 0)
	c.Set("b", nil, 0)
	c.Set("c", nil, 0)

	// Touch a so b becomes the oldest.
	_, _ = c.Get("a")
	c.Set("d", nil, 0)

	_, ok := c.Get("b")
	assert.False(t, ok)
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, 3, c.Len())
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](50, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := strconv.Itoa((n * j) % 80)
				c.Set(key, j, 0)
				_, _ = c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}

func TestService_SweepsExpired(t *testing.T) {
	s := NewService[string](ServiceConfig{Capacity: 10, DefaultTTL: 10 * time.Millisecond, CleanupInterval: 5 * time.Millisecond})
	defer s.Close()

	s.Set("k", "v", 0)
	require.Equal(t, 1, s.Len())
	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}
