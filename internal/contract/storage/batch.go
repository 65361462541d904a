package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Write is one buffered change. A Delete write removes Key.
type Write struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// Batcher is implemented by stores that can apply several writes as one
// unit: either all of them land or none do.
type Batcher interface {
	WriteBatch(ctx context.Context, writes []Write) error
}

var (
	_ Batcher = (*memoryStore)(nil)
	_ Batcher = (*sqlStore)(nil)
	_ Batcher = (*redisStore)(nil)
)

func checkWrites(writes []Write) error {
	for _, w := range writes {
		if err := checkKey(w.Key); err != nil {
			return err
		}
		if !w.Delete {
			if err := checkValue(w.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *memoryStore) WriteBatch(_ context.Context, writes []Write) error {
	if err := checkWrites(writes); err != nil {
		return err
	}
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	ns, ok := s.parent.data[s.addr]
	if !ok {
		ns = make(map[string][]byte)
		s.parent.data[s.addr] = ns
	}
	for _, w := range writes {
		if w.Delete {
			delete(ns, string(w.Key))
			continue
		}
		ns[string(w.Key)] = append([]byte(nil), w.Value...)
	}
	return nil
}

// WriteBatch applies writes in one transaction, or inside the caller's
// transaction when ctx already carries one.
func (s *sqlStore) WriteBatch(ctx context.Context, writes []Write) error {
	if err := checkWrites(writes); err != nil {
		return err
	}
	return s.parent.InTx(ctx, func(ctx context.Context) error {
		for _, w := range writes {
			var err error
			if w.Delete {
				err = s.Remove(ctx, w.Key)
			} else {
				err = s.Set(ctx, w.Key, w.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteBatch applies writes in a MULTI/EXEC block.
func (s *redisStore) WriteBatch(ctx context.Context, writes []Write) error {
	if err := checkWrites(writes); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			if w.Delete {
				pipe.Del(ctx, RedisKey(s.addr, w.Key))
				continue
			}
			pipe.Set(ctx, RedisKey(s.addr, w.Key), w.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing contract state: %w", err)
	}
	return nil
}
