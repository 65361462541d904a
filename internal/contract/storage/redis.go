package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
)

// Redis stores contract state in Redis under
// contract:{addr}:state:{hex(key)}. Keys are hex encoded because contract
// keys are arbitrary bytes.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) ForContract(addr string) sdk.Storage {
	return &redisStore{client: r.client, addr: addr}
}

// RedisKey returns the Redis key a contract key is stored under.
func RedisKey(addr string, key []byte) string {
	return fmt.Sprintf("contract:%s:state:%s", addr, hex.EncodeToString(key))
}

type redisStore struct {
	client redis.UniversalClient
	addr   string
}

func (s *redisStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	val, err := s.client.Get(ctx, RedisKey(s.addr, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sdk.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, key, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := checkValue(value); err != nil {
		return err
	}
	return s.client.Set(ctx, RedisKey(s.addr, key), value, 0).Err()
}

func (s *redisStore) Remove(ctx context.Context, key []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.client.Del(ctx, RedisKey(s.addr, key)).Err()
}
