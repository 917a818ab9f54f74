package cache

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frequency[V any](t *testing.T, c *LFU[V], key string) int {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	require.True(t, ok, "key %q is not cached", key)
	e, _ := elem.Value.(*entry[V])
	return e.freq
}

func TestGet(t *testing.T) {
	t.Run("key not found", func(t *testing.T) {
		sut := New[string](2)

		_, ok := sut.Get("a")

		assert.False(t, ok)
		assert.Equal(t, 0, sut.Len())
	})

	t.Run("get stored value", func(t *testing.T) {
		sut := New[string](2)
		sut.Put("a", "1")

		got, ok := sut.Get("a")

		assert.True(t, ok)
		assert.Equal(t, "1", got)
	})

	t.Run("get increments frequency by one", func(t *testing.T) {
		sut := New[string](3)
		sut.Put("a", "1")
		sut.Put("b", "2")
		require.Equal(t, 1, frequency(t, sut, "a"))

		_, _ = sut.Get("a")
		_, _ = sut.Get("a")

		assert.Equal(t, 3, frequency(t, sut, "a"))
		assert.Equal(t, 1, frequency(t, sut, "b"))
	})

	t.Run("miss has no side effects", func(t *testing.T) {
		sut := New[string](2)
		sut.Put("a", "1")

		_, _ = sut.Get("b")

		assert.Equal(t, 1, sut.Len())
		assert.Equal(t, 1, frequency(t, sut, "a"))
	})
}

func TestPut(t *testing.T) {
	t.Run("replace value increments frequency", func(t *testing.T) {
		sut := New[string](2)
		sut.Put("a", "1")

		sut.Put("a", "2")

		got, ok := sut.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "2", got)
		assert.Equal(t, 3, frequency(t, sut, "a"))
		assert.Equal(t, 1, sut.Len())
	})

	t.Run("evict least frequently used", func(t *testing.T) {
		sut := New[string](2)
		sut.Put("a", "1")
		sut.Put("b", "2")
		_, _ = sut.Get("a")

		sut.Put("c", "3")

		_, ok := sut.Get("b")
		assert.False(t, ok)
		_, ok = sut.Get("a")
		assert.True(t, ok)
		_, ok = sut.Get("c")
		assert.True(t, ok)
	})

	t.Run("evict oldest among equally frequent", func(t *testing.T) {
		sut := New[string](3)
		sut.Put("a", "1")
		sut.Put("b", "2")
		sut.Put("c", "3")

		sut.Put("d", "4")

		_, ok := sut.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 3, sut.Len())
	})

	t.Run("ties are broken by promotion order", func(t *testing.T) {
		sut := New[string](3)
		sut.Put("a", "1")
		sut.Put("b", "2")
		sut.Put("c", "3")
		_, _ = sut.Get("b")
		_, _ = sut.Get("a")
		_, _ = sut.Get("c")

		sut.Put("d", "4")

		_, ok := sut.Get("b")
		assert.False(t, ok, "b was promoted to frequency 2 first")
		for _, key := range []string{"a", "c", "d"} {
			_, ok = sut.Get(key)
			assert.True(t, ok, key)
		}
	})

	t.Run("new entry is evicted before frequent ones", func(t *testing.T) {
		sut := New[string](2)
		sut.Put("a", "1")
		sut.Put("b", "2")
		_, _ = sut.Get("a")
		_, _ = sut.Get("b")
		sut.Put("c", "3")

		sut.Put("d", "4")

		_, ok := sut.Get("c")
		assert.False(t, ok)
		_, ok = sut.Get("d")
		assert.True(t, ok)
	})

	t.Run("size never exceeds capacity", func(t *testing.T) {
		const capacity = 10
		sut := New[int](capacity)

		for i := 0; i < 100; i++ {
			key := strconv.Itoa(i)
			sut.Put(key, i)
			if i%3 == 0 {
				_, _ = sut.Get(key)
			}
			assert.LessOrEqual(t, sut.Len(), capacity)
		}

		stats := sut.Stats()
		assert.Equal(t, capacity, stats.Size)
		assert.Equal(t, uint64(90), stats.Evictions)
	})

	t.Run("zero capacity retains nothing", func(t *testing.T) {
		sut := New[string](0)

		sut.Put("a", "1")

		_, ok := sut.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 0, sut.Len())
	})

	t.Run("negative capacity retains nothing", func(t *testing.T) {
		sut := New[string](-5)

		assert.NotPanics(t, func() { sut.Put("a", "1") })

		_, ok := sut.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 0, sut.Capacity())
	})
}

func TestRemove(t *testing.T) {
	t.Run("remove cached key", func(t *testing.T) {
		sut := New[string](2)
		sut.Put("a", "1")

		removed := sut.Remove("a")

		assert.True(t, removed)
		_, ok := sut.Get("a")
		assert.False(t, ok)
	})

	t.Run("remove unknown key", func(t *testing.T) {
		sut := New[string](2)

		assert.False(t, sut.Remove("a"))
	})

	t.Run("eviction after removing least frequent entry", func(t *testing.T) {
		sut := New[string](2)
		sut.Put("a", "1")
		sut.Put("b", "2")
		_, _ = sut.Get("b")
		_, _ = sut.Get("b")
		require.True(t, sut.Remove("a"))
		sut.Put("c", "3")
		_, _ = sut.Get("c")

		sut.Put("d", "4")

		_, ok := sut.Get("c")
		assert.False(t, ok)
		_, ok = sut.Get("b")
		assert.True(t, ok)
	})
}

func TestStats(t *testing.T) {
	sut := New[string](1)
	sut.Put("a", "1")
	_, _ = sut.Get("a")
	_, _ = sut.Get("b")
	sut.Put("c", "3")

	got := sut.Stats()

	want := Stats{
		Size:      1,
		Capacity:  1,
		Hits:      1,
		Misses:    1,
		Evictions: 1,
	}
	assert.Equal(t, want, got)
}

func TestConcurrentAccess(t *testing.T) {
	const (
		capacity   = 16
		goroutines = 8
		iterations = 1000
	)
	sut := New[int](capacity)
	var wg sync.WaitGroup

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				key := strconv.Itoa((g*iterations + i) % 64)
				sut.Put(key, i)
				_, _ = sut.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, sut.Len(), capacity)
}
