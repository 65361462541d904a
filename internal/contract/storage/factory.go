package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database"
)

// Backends holds the clients a Factory may be built over. Missing clients
// make NewFactory fall back to in-memory storage.
type Backends struct {
	DB    database.Connection
	Redis redis.UniversalClient
	Table string
}

// NewFactory builds the storage factory for kind. The SQL backend's table
// is created on the way.
func NewFactory(ctx context.Context, kind Kind, b Backends) (Factory, error) {
	switch kind {
	case KindSQL:
		if b.DB == nil {
			return NewMemory(), nil
		}
		s := NewSQL(b.DB, b.Table)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case KindRedis:
		if b.Redis == nil {
			return NewMemory(), nil
		}
		return NewRedis(b.Redis), nil
	case KindMemory, "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
