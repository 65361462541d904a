// Package chain is the host side of the Babylon queries: it answers each
// catalog entry from a Store of Bitcoin headers and epoch state.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain/store"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

var (
	// ErrNotBootstrapped is returned for tip, base or finalized epoch
	// queries before any header or finalized epoch was stored.
	ErrNotBootstrapped = errors.New("btc light client not bootstrapped")
)

// IsQueryError reports whether err is the chain rejecting a query, as
// opposed to a storage failure.
func IsQueryError(err error) bool {
	return errors.Is(err, ErrInvalidHash) || errors.Is(err, ErrNotBootstrapped)
}

// Module answers Babylon queries from a Store.
type Module struct {
	store  store.Store
	logger *slog.Logger
}

func NewModule(s store.Store, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	return &Module{store: s, logger: logger}
}

// Store returns the backing store.
func (m *Module) Store() store.Store {
	return m.store
}

// Query answers q with a value of the response type bound to its tag.
func (m *Module) Query(ctx context.Context, q bindings.BabylonQuery) (any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	switch tag := q.Tag(); tag {
	case bindings.TagEpoch:
		epoch, err := m.store.CurrentEpoch(ctx)
		if err != nil {
			return nil, err
		}
		return bindings.CurrentEpochResponse{Epoch: epoch}, nil

	case bindings.TagLatestFinalizedEpochInfo:
		info, err := m.store.LatestFinalizedEpoch(ctx)
		if err != nil {
			return nil, err
		}
		if info == nil {
			return nil, fmt.Errorf("%w: no finalized epoch", ErrNotBootstrapped)
		}
		return bindings.LatestFinalizedEpochInfoResponse{EpochInfo: *info}, nil

	case bindings.TagBtcTip:
		info, err := m.store.Tip(ctx)
		if err := required(info, err, "tip"); err != nil {
			return nil, err
		}
		return bindings.BtcTipResponse{HeaderInfo: *info}, nil

	case bindings.TagBtcBaseHeader:
		info, err := m.store.Base(ctx)
		if err := required(info, err, "base header"); err != nil {
			return nil, err
		}
		return bindings.BtcBaseHeaderResponse{HeaderInfo: *info}, nil

	case bindings.TagBtcHeaderByHeight:
		info, err := m.store.HeaderByHeight(ctx, q.BtcHeaderByHeight.Height)
		if err != nil {
			return nil, err
		}
		return bindings.BtcHeaderQueryResponse{HeaderInfo: info}, nil

	case bindings.TagBtcHeaderByHash:
		hash, err := ParseHash(q.BtcHeaderByHash.Hash)
		if err != nil {
			return nil, err
		}
		info, err := m.store.HeaderByHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		return bindings.BtcHeaderQueryResponse{HeaderInfo: info}, nil

	default:
		return nil, fmt.Errorf("%w: %q", bindings.ErrUnknownQuery, tag)
	}
}

func required(info *bindings.BtcBlockHeaderInfo, err error, what string) error {
	if err != nil {
		return err
	}
	if info == nil {
		return fmt.Errorf("%w: no %s", ErrNotBootstrapped, what)
	}
	return nil
}

// InsertHeader stores info under its computed hash.
func (m *Module) InsertHeader(ctx context.Context, info bindings.BtcBlockHeaderInfo) error {
	hash, err := HeaderHash(info.Header)
	if err != nil {
		return fmt.Errorf("header %d: %w", info.Height, err)
	}
	if err := m.store.PutHeader(ctx, hash, info); err != nil {
		return fmt.Errorf("header %d: %w", info.Height, err)
	}
	m.logger.Debug("stored btc header", "height", info.Height, "hash", hash.String())
	return nil
}
