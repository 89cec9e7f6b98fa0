package fitness

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
)

// Cache 按基因型缓存适应度
// 评估是 (基因, 项目) 的纯函数，同一项目内相同基因的结果可以复用
type Cache struct {
	store *ristretto.Cache[uint64, float64]
}

// NewCache 创建最多保存 maxEntries 个结果的缓存
func NewCache(maxEntries int64) (*Cache, error) {
	if maxEntries < 1 {
		maxEntries = 1
	}
	store, err := ristretto.NewCache(&ristretto.Config[uint64, float64]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,

		// MaxCost 按条目计数，不计入 ristretto 自身的内存开销
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{store: store}, nil
}

// Key 基因型的 xxhash 摘要
func Key(genes []int) uint64 {
	buf := make([]byte, 8*len(genes))
	for i, g := range genes {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(int64(g)))
	}
	return xxhash.Sum64(buf)
}

// Get 查询缓存
func (c *Cache) Get(key uint64) (float64, bool) {
	if c == nil {
		return 0, false
	}
	return c.store.Get(key)
}

// Set 写入缓存（异步生效）
func (c *Cache) Set(key uint64, fitness float64) {
	if c == nil {
		return
	}
	c.store.Set(key, fitness, 1)
}

// Wait 等待写缓冲落地
func (c *Cache) Wait() {
	if c == nil {
		return
	}
	c.store.Wait()
}

// Close 释放缓存
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.store.Close()
}
