package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
)

// Cache buffers writes over a backing store. Reads see pending writes.
// Nothing reaches the backing store until Commit, so dropping a Cache
// discards every write made through it.
type Cache struct {
	mu      sync.Mutex
	backing sdk.Storage
	pending map[string]*[]byte // nil value marks a removal
}

func NewCache(backing sdk.Storage) *Cache {
	return &Cache{backing: backing, pending: make(map[string]*[]byte)}
}

func (c *Cache) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	c.mu.Lock()
	v, ok := c.pending[string(key)]
	c.mu.Unlock()
	if ok {
		if v == nil {
			return nil, sdk.ErrNotFound
		}
		return append([]byte(nil), (*v)...), nil
	}
	return c.backing.Get(ctx, key)
}

func (c *Cache) Set(_ context.Context, key, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := checkValue(value); err != nil {
		return err
	}
	cp := append([]byte(nil), value...)
	c.mu.Lock()
	c.pending[string(key)] = &cp
	c.mu.Unlock()
	return nil
}

func (c *Cache) Remove(_ context.Context, key []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	c.mu.Lock()
	c.pending[string(key)] = nil
	c.mu.Unlock()
	return nil
}

// Pending reports how many keys have uncommitted changes.
func (c *Cache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Commit flushes pending writes in key order and clears the buffer. A
// backing store that implements Batcher receives them as one batch, so a
// failed commit leaves it untouched and the writes stay pending.
func (c *Cache) Commit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.pending))
	for k := range c.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writes := make([]Write, 0, len(keys))
	for _, k := range keys {
		if v := c.pending[k]; v != nil {
			writes = append(writes, Write{Key: []byte(k), Value: *v})
		} else {
			writes = append(writes, Write{Key: []byte(k), Delete: true})
		}
	}

	if err := flush(ctx, c.backing, writes); err != nil {
		return err
	}
	c.pending = make(map[string]*[]byte)
	return nil
}

func flush(ctx context.Context, backing sdk.Storage, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	if b, ok := backing.(Batcher); ok {
		return b.WriteBatch(ctx, writes)
	}
	for _, w := range writes {
		var err error
		if w.Delete {
			err = backing.Remove(ctx, w.Key)
		} else {
			err = backing.Set(ctx, w.Key, w.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops all pending writes.
func (c *Cache) Discard() {
	c.mu.Lock()
	c.pending = make(map[string]*[]byte)
	c.mu.Unlock()
}
