package chain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain/store"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// Genesis is the initial chain state loaded from a JSON state file.
type Genesis struct {
	Epoch          uint64                        `json:"epoch"`
	FinalizedEpoch *bindings.FinalizedEpochInfo  `json:"finalized_epoch,omitempty"`
	Headers        []bindings.BtcBlockHeaderInfo `json:"headers"`
	Balances       []Balance                     `json:"balances"`
}

// Balance seeds the bank with an account's coins.
type Balance struct {
	Address string         `json:"address"`
	Coins   []hostapi.Coin `json:"coins"`
}

// LoadGenesis reads and validates the state file at path.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := security.SafeReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis: %w", err)
	}
	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks header hashes, duplicate heights and epoch ordering.
// Proof of work and header linkage are not checked.
func (g *Genesis) Validate() error {
	seen := make(map[uint64]bool, len(g.Headers))
	for _, h := range g.Headers {
		if seen[h.Height] {
			return fmt.Errorf("genesis: duplicate header at height %d", h.Height)
		}
		seen[h.Height] = true
		if _, err := HeaderHash(h.Header); err != nil {
			return fmt.Errorf("genesis: header %d: %w", h.Height, err)
		}
	}
	if f := g.FinalizedEpoch; f != nil && f.EpochNumber > g.Epoch {
		return fmt.Errorf("genesis: finalized epoch %d is ahead of current epoch %d", f.EpochNumber, g.Epoch)
	}
	for _, b := range g.Balances {
		if b.Address == "" {
			return fmt.Errorf("genesis: balance without address")
		}
	}
	return nil
}

// InitGenesis writes g into the module's store, atomically when the store
// supports transactions.
func (m *Module) InitGenesis(ctx context.Context, g *Genesis) error {
	if err := g.Validate(); err != nil {
		return err
	}

	apply := func(ctx context.Context) error {
		if err := m.store.SetEpoch(ctx, g.Epoch); err != nil {
			return err
		}
		if g.FinalizedEpoch != nil {
			if err := m.store.SetFinalizedEpoch(ctx, *g.FinalizedEpoch); err != nil {
				return err
			}
		}
		for _, h := range g.Headers {
			if err := m.InsertHeader(ctx, h); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if tx, ok := m.store.(store.Transactional); ok {
		err = tx.InTx(ctx, apply)
	} else {
		err = apply(ctx)
	}
	if err != nil {
		return fmt.Errorf("applying genesis: %w", err)
	}

	m.logger.Info("genesis applied",
		"epoch", g.Epoch,
		"headers", len(g.Headers),
		"accounts", len(g.Balances),
	)
	return nil
}
