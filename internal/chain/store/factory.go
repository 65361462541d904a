package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database"
)

// Backends holds the clients a Store may be built over.
type Backends struct {
	DB     database.Connection
	Redis  redis.UniversalClient
	Prefix string
}

// Open builds the store for kind, creating SQL tables on the way.
func Open(ctx context.Context, kind Kind, b Backends) (Store, error) {
	switch kind {
	case KindMemory, "":
		return NewMemory(), nil
	case KindSQL:
		if b.DB == nil {
			return nil, fmt.Errorf("sql chain store needs a database connection")
		}
		s := NewSQL(b.DB, b.Prefix)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case KindRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("redis chain store needs a redis client")
		}
		return NewRedis(b.Redis, b.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown chain store %q", kind)
	}
}
