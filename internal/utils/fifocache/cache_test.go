package fifocache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_EvictsOldestFirst(t *testing.T) {
	c := New[string, int](3)
	assert.False(t, c.Set("a", 1))
	assert.False(t, c.Set("b", 2))
	assert.False(t, c.Set("c", 3))

	// Reads do not refresh position.
	_, _ = c.Get("a")
	assert.True(t, c.Set("d", 4))

	_, ok := c.Get("a")
	assert.False(t, ok)
	for _, k := range []string{"b", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}

	assert.True(t, c.Set("e", 5))
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestCache_UpdateKeepsPosition(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.False(t, c.Set("a", 10))

	v, _ := c.Get("a")
	assert.Equal(t, 10, v)

	c.Set("c", 3)
	_, ok := c.Get("a")
	assert.False(t, ok, "a is still the oldest insertion")
}

func TestCache_ZeroCapacity(t *testing.T) {
	c := New[string, int](0)
	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, New[int, int](-1).Capacity())
}

func TestCache_Concurrent(t *testing.T) {
	c := New[string, int](50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				k := fmt.Sprintf("%d-%d", g, j)
				c.Set(k, j)
				c.Get(k)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}
