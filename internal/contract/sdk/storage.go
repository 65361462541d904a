package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ReadonlyStorage is a contract's view of its own key-value store.
type ReadonlyStorage interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key []byte) ([]byte, error)
}

// Storage is a contract's writable key-value store.
type Storage interface {
	ReadonlyStorage
	Set(ctx context.Context, key, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// Item stores a single JSON-encoded value under a fixed key.
type Item[T any] struct {
	key []byte
}

func NewItem[T any](key string) Item[T] {
	return Item[T]{key: []byte(key)}
}

// Key returns the storage key.
func (i Item[T]) Key() []byte {
	return i.key
}

func (i Item[T]) Save(ctx context.Context, store Storage, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", i.key, err)
	}
	return store.Set(ctx, i.key, data)
}

// Load returns ErrNotFound if nothing was saved.
func (i Item[T]) Load(ctx context.Context, store ReadonlyStorage) (T, error) {
	var out T
	data, err := store.Get(ctx, i.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return out, fmt.Errorf("%s: %w", i.key, ErrNotFound)
		}
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parsing %s: %w", i.key, err)
	}
	return out, nil
}

// MayLoad is Load that reports absence as nil instead of an error.
func (i Item[T]) MayLoad(ctx context.Context, store ReadonlyStorage) (*T, error) {
	v, err := i.Load(ctx, store)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (i Item[T]) Remove(ctx context.Context, store Storage) error {
	return store.Remove(ctx, i.key)
}
