// Package runtime executes contracts against namespaced storage and a host
// querier, enforcing the capabilities they declare.
package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/storage"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// Sandbox builds the dependencies a contract entry point runs with: storage
// scoped to the contract's address and a querier limited to what the
// contract declared.
type Sandbox struct {
	logger  *slog.Logger
	storage storage.Factory
	querier hostapi.Querier
	chainID string
	now     func() time.Time
	height  atomic.Uint64
}

// SandboxConfig holds configuration for the sandbox.
type SandboxConfig struct {
	Logger  *slog.Logger
	Storage storage.Factory
	// Querier answers the contract's chain queries. It may be set later
	// with SetQuerier when the host router is built after the sandbox.
	Querier hostapi.Querier
	ChainID string
	// Height is the block height the first entry point sees.
	Height uint64
	Now    func() time.Time
}

func NewSandbox(cfg SandboxConfig) *Sandbox {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Storage == nil {
		cfg.Storage = storage.NewMemory()
	}
	if cfg.ChainID == "" {
		cfg.ChainID = "bbn-local"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Height == 0 {
		cfg.Height = 1
	}

	s := &Sandbox{
		logger:  cfg.Logger,
		storage: cfg.Storage,
		querier: cfg.Querier,
		chainID: cfg.ChainID,
		now:     cfg.Now,
	}
	s.height.Store(cfg.Height)
	return s
}

// SetQuerier replaces the host querier. Call it before serving traffic.
func (s *Sandbox) SetQuerier(q hostapi.Querier) {
	s.querier = q
}

// Env describes the current block for the contract at addr.
func (s *Sandbox) Env(addr string) sdk.Env {
	return sdk.Env{
		Block: sdk.BlockInfo{
			Height:  s.height.Load(),
			Time:    s.now().UTC(),
			ChainID: s.chainID,
		},
		Contract: sdk.ContractInfo{Address: addr},
	}
}

// AdvanceBlock moves to the next block and returns its height.
func (s *Sandbox) AdvanceBlock() uint64 {
	return s.height.Add(1)
}

// Deps returns read-only dependencies for the contract.
func (s *Sandbox) Deps(addr string, caps sdk.CapabilitySet) sdk.Deps {
	return sdk.Deps{
		Storage: s.storage.ForContract(addr),
		Querier: hostapi.NewQuerierWrapper(s.gate(addr, caps)),
	}
}

// DepsMut returns dependencies whose writes land in the returned cache. The
// caller commits it once the entry point succeeded.
func (s *Sandbox) DepsMut(addr string, caps sdk.CapabilitySet) (sdk.DepsMut, *storage.Cache) {
	cache := storage.NewCache(s.storage.ForContract(addr))
	s.logger.Debug("created sandboxed context", "contract_addr", addr)
	return sdk.DepsMut{
		Storage: cache,
		Querier: hostapi.NewQuerierWrapper(s.gate(addr, caps)),
	}, cache
}

// ReadRaw reads one key of the contract's storage directly.
func (s *Sandbox) ReadRaw(ctx context.Context, addr string, key []byte) ([]byte, error) {
	return s.storage.ForContract(addr).Get(ctx, key)
}

func (s *Sandbox) gate(addr string, caps sdk.CapabilitySet) hostapi.Querier {
	return &gatedQuerier{sandbox: s, addr: addr, caps: caps}
}

// gatedQuerier refuses custom queries from contracts that did not declare
// the babylon capability.
type gatedQuerier struct {
	sandbox *Sandbox
	addr    string
	caps    sdk.CapabilitySet
}

func (g *gatedQuerier) RawQuery(ctx context.Context, request []byte) hostapi.SystemResult {
	if g.sandbox.querier == nil {
		return hostapi.SystemErr(hostapi.NewUnknownSystemError())
	}
	if !g.caps.Has(sdk.CapBabylon) && isCustom(request) {
		g.sandbox.logger.Warn("custom query refused",
			"contract_addr", g.addr,
			"error", sdk.ErrCapabilityNotGranted,
		)
		return hostapi.SystemErr(hostapi.NewUnsupportedRequest("custom"))
	}
	return g.sandbox.querier.RawQuery(ctx, request)
}

func isCustom(request []byte) bool {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(request, &envelope); err != nil {
		return false
	}
	_, ok := envelope[string(hostapi.RouteCustom)]
	return ok
}
