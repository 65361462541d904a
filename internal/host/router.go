// Package host implements the chain side of the query boundary. Router
// decodes a raw query envelope and hands it to the bank, the Babylon chain
// module or a deployed contract, then wraps the answer in a SystemResult.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

var _ hostapi.Querier = (*Router)(nil)

// Contracts runs wasm queries against deployed contracts.
type Contracts interface {
	Query(ctx context.Context, addr string, msg json.RawMessage) (hostapi.Binary, error)
	ReadRaw(ctx context.Context, addr string, key []byte) ([]byte, error)
}

// Router is the host querier.
type Router struct {
	chain   *chain.Module
	bank    *Bank
	metrics observability.Metrics
	logger  *slog.Logger

	mu        sync.RWMutex
	contracts Contracts
}

// RouterConfig holds the router's collaborators. Chain is required.
type RouterConfig struct {
	Chain   *chain.Module
	Bank    *Bank
	Metrics observability.Metrics
	Logger  *slog.Logger
}

func NewRouter(cfg RouterConfig) *Router {
	if cfg.Bank == nil {
		cfg.Bank = NewBank()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Router{
		chain:   cfg.Chain,
		bank:    cfg.Bank,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// AttachContracts enables wasm routing. The executor needs the router as
// its querier, so it is attached once both exist.
func (r *Router) AttachContracts(c Contracts) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = c
}

// Bank returns the router's bank.
func (r *Router) Bank() *Bank {
	return r.bank
}

// RawQuery answers one serialized query envelope.
func (r *Router) RawQuery(ctx context.Context, request []byte) hostapi.SystemResult {
	var req hostapi.QueryRequest
	if err := hostapi.UnmarshalStrict(request, &req); err != nil {
		return r.finish(observability.StartTimer("unparsed"), request,
			hostapi.SystemErr(hostapi.NewInvalidRequest(err.Error(), request)))
	}
	route, err := req.Route()
	if err != nil {
		return r.finish(observability.StartTimer("unrouted"), request,
			hostapi.SystemErr(hostapi.NewInvalidRequest(err.Error(), request)))
	}

	timer := observability.StartTimer(string(route)).WithTags(observability.T("route", string(route)))
	var res hostapi.SystemResult
	switch route {
	case hostapi.RouteBank:
		res = r.answer(r.bank.query(req.Bank))
	case hostapi.RouteCustom:
		res = r.custom(ctx, req.Custom)
	case hostapi.RouteWasm:
		res = r.wasm(ctx, req.Wasm)
	}
	return r.finish(timer, request, res)
}

func (r *Router) custom(ctx context.Context, raw json.RawMessage) hostapi.SystemResult {
	var q bindings.BabylonQuery
	if err := json.Unmarshal(raw, &q); err != nil {
		return hostapi.SystemErr(hostapi.NewInvalidRequest(err.Error(), raw))
	}
	if r.chain == nil {
		return hostapi.SystemErr(hostapi.NewUnsupportedRequest("custom"))
	}

	resp, err := r.chain.Query(ctx, q)
	if err != nil {
		if chain.IsQueryError(err) {
			return hostapi.SystemContractErr(err.Error())
		}
		r.logger.Error("babylon query failed", "query", string(q.Tag()), "error", err)
		return hostapi.SystemErr(hostapi.NewUnknownSystemError())
	}
	return r.answer(resp, nil)
}

func (r *Router) wasm(ctx context.Context, q *hostapi.WasmQuery) hostapi.SystemResult {
	r.mu.RLock()
	contracts := r.contracts
	r.mu.RUnlock()

	switch {
	case q.Smart != nil && q.Raw != nil:
		return hostapi.SystemErr(hostapi.NewInvalidRequest("wasm query must set exactly one of smart, raw", nil))
	case q.Smart != nil:
		if contracts == nil {
			return hostapi.SystemErr(hostapi.NewNoSuchContract(q.Smart.ContractAddr))
		}
		data, err := contracts.Query(ctx, q.Smart.ContractAddr, json.RawMessage(q.Smart.Msg))
		if err != nil {
			return r.contractFailure(q.Smart.ContractAddr, err)
		}
		return hostapi.SystemOk(data)

	case q.Raw != nil:
		if contracts == nil {
			return hostapi.SystemErr(hostapi.NewNoSuchContract(q.Raw.ContractAddr))
		}
		data, err := contracts.ReadRaw(ctx, q.Raw.ContractAddr, q.Raw.Key)
		if err != nil {
			return r.contractFailure(q.Raw.ContractAddr, err)
		}
		return hostapi.SystemOk(data)

	default:
		return hostapi.SystemErr(hostapi.NewUnsupportedRequest("wasm"))
	}
}

func (r *Router) contractFailure(addr string, err error) hostapi.SystemResult {
	if errors.Is(err, sdk.ErrContractNotFound) {
		return hostapi.SystemErr(hostapi.NewNoSuchContract(addr))
	}
	var capErr *sdk.CapabilityError
	if errors.As(err, &capErr) {
		return hostapi.SystemErr(hostapi.NewUnsupportedRequest("wasm"))
	}
	var contractErr *sdk.ContractError
	if errors.As(err, &contractErr) {
		return hostapi.SystemContractErr(contractErr.Err.Error())
	}
	r.logger.Error("wasm query failed", "contract_addr", addr, "error", err)
	return hostapi.SystemErr(hostapi.NewUnknownSystemError())
}

// answer encodes a handler's reply. A *hostapi.SystemError from the handler
// is passed through as is.
func (r *Router) answer(resp any, err error) hostapi.SystemResult {
	if err != nil {
		var sysErr *hostapi.SystemError
		if errors.As(err, &sysErr) {
			return hostapi.SystemErr(sysErr)
		}
		return hostapi.SystemErr(hostapi.NewUnknownSystemError())
	}
	data, err := hostapi.ToBinary(resp)
	if err != nil {
		r.logger.Error("encoding reply", "error", err)
		return hostapi.SystemErr(hostapi.NewUnknownSystemError())
	}
	return hostapi.SystemOk(data)
}

func (r *Router) finish(timer *observability.Timer, request []byte, res hostapi.SystemResult) hostapi.SystemResult {
	outcome := observability.OutcomeOK
	switch {
	case res.Err != nil:
		outcome = observability.OutcomeSystem
		r.logger.Debug("query rejected",
			"kind", res.Err.Kind(),
			"error", res.Err.Error(),
			"request_bytes", len(request),
		)
	case res.Ok != nil && res.Ok.IsErr():
		outcome = observability.OutcomeContract
	}
	timer.WithMetrics(r.metrics).Stop(outcome)
	return res
}
