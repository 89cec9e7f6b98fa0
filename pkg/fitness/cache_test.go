package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fill 分批写入 n 个条目，返回仍可读出的条目数
func fill(t *testing.T, c *Cache, n int) int {
	t.Helper()
	for i := 0; i < n; i++ {
		c.Set(Key([]int{i}), float64(-i))
		if i%32 == 31 {
			c.Wait()
		}
	}
	c.Wait()

	held := 0
	for i := 0; i < n; i++ {
		v, ok := c.Get(Key([]int{i}))
		if ok {
			require.Equal(t, float64(-i), v)
			held++
		}
	}
	return held
}

func TestCacheHoldsMaxEntries(t *testing.T) {
	tests := []struct {
		name       string
		maxEntries int64
		n          int
	}{
		{"small", 16, 16},
		{"default size", 10000, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCache(tt.maxEntries)
			require.NoError(t, err)
			defer c.Close()

			held := fill(t, c, tt.n)
			assert.GreaterOrEqual(t, held, tt.n*9/10, "entries within capacity stay retrievable")
		})
	}
}

func TestCacheIsBounded(t *testing.T) {
	c, err := NewCache(16)
	require.NoError(t, err)
	defer c.Close()

	held := fill(t, c, 256)
	assert.Positive(t, held)
	assert.LessOrEqual(t, held, 16)
}
