// Package store persists the chain state Babylon queries read: Bitcoin
// headers indexed by height and hash, and epoch counters.
package store

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

// ErrHeightTaken is returned when a different header is already stored at a height.
var ErrHeightTaken = errors.New("height already holds a different header")

// Store is the chain state backend. Lookups that find nothing return nil
// with a nil error.
type Store interface {
	PutHeader(ctx context.Context, hash chainhash.Hash, info bindings.BtcBlockHeaderInfo) error
	HeaderByHeight(ctx context.Context, height uint64) (*bindings.BtcBlockHeaderInfo, error)
	HeaderByHash(ctx context.Context, hash chainhash.Hash) (*bindings.BtcBlockHeaderInfo, error)
	// Tip returns the highest stored header.
	Tip(ctx context.Context) (*bindings.BtcBlockHeaderInfo, error)
	// Base returns the lowest stored header.
	Base(ctx context.Context) (*bindings.BtcBlockHeaderInfo, error)

	SetEpoch(ctx context.Context, epoch uint64) error
	CurrentEpoch(ctx context.Context) (uint64, error)
	SetFinalizedEpoch(ctx context.Context, info bindings.FinalizedEpochInfo) error
	LatestFinalizedEpoch(ctx context.Context) (*bindings.FinalizedEpochInfo, error)
}

// Transactional is implemented by stores that can apply several writes atomically.
type Transactional interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Kind selects a Store implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindSQL    Kind = "sql"
	KindRedis  Kind = "redis"
)
