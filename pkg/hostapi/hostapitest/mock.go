// Package hostapitest provides test doubles for the host boundary.
package hostapitest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// MockContractAddr is the address mock environments assign to the contract under test.
const MockContractAddr = "cosmos2contract"

var _ hostapi.Querier = (*MockQuerier)(nil)

// MockQuerier answers bank queries from seeded balances and hands custom
// and wasm queries to configurable handlers. Unconfigured custom queries
// fail with an invalid-request system error; unconfigured wasm queries
// report that no such contract exists.
type MockQuerier struct {
	mu       sync.RWMutex
	balances map[string][]hostapi.Coin

	CustomFn func(ctx context.Context, query json.RawMessage) hostapi.SystemResult
	WasmFn   func(ctx context.Context, query hostapi.WasmQuery) hostapi.SystemResult

	Calls atomic.Int64
}

// NewMockQuerier seeds balances keyed by address.
func NewMockQuerier(balances map[string][]hostapi.Coin) *MockQuerier {
	m := &MockQuerier{balances: make(map[string][]hostapi.Coin)}
	for addr, coins := range balances {
		m.SetBalance(addr, coins)
	}
	return m
}

// WithCustomHandler installs fn for custom queries and returns m.
func (m *MockQuerier) WithCustomHandler(fn func(ctx context.Context, query json.RawMessage) hostapi.SystemResult) *MockQuerier {
	m.CustomFn = fn
	return m
}

// SetBalance replaces the balances held by addr.
func (m *MockQuerier) SetBalance(addr string, coins []hostapi.Coin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := append([]hostapi.Coin(nil), coins...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Denom < cp[j].Denom })
	m.balances[addr] = cp
}

func (m *MockQuerier) RawQuery(ctx context.Context, request []byte) hostapi.SystemResult {
	m.Calls.Add(1)

	var req hostapi.QueryRequest
	if err := json.Unmarshal(request, &req); err != nil {
		return hostapi.SystemErr(hostapi.NewInvalidRequest("Parsing query request: "+err.Error(), request))
	}
	route, err := req.Route()
	if err != nil {
		return hostapi.SystemErr(hostapi.NewInvalidRequest(err.Error(), request))
	}

	switch route {
	case hostapi.RouteBank:
		return m.bank(req.Bank)
	case hostapi.RouteCustom:
		if m.CustomFn == nil {
			return hostapi.SystemErr(hostapi.NewInvalidRequest("not implemented", nil))
		}
		return m.CustomFn(ctx, req.Custom)
	default:
		if m.WasmFn == nil {
			addr := ""
			if req.Wasm.Smart != nil {
				addr = req.Wasm.Smart.ContractAddr
			} else if req.Wasm.Raw != nil {
				addr = req.Wasm.Raw.ContractAddr
			}
			return hostapi.SystemErr(hostapi.NewNoSuchContract(addr))
		}
		return m.WasmFn(ctx, *req.Wasm)
	}
}

func (m *MockQuerier) bank(q *hostapi.BankQuery) hostapi.SystemResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var resp any
	switch {
	case q.AllBalances != nil:
		amount := m.balances[q.AllBalances.Address]
		if amount == nil {
			amount = []hostapi.Coin{}
		}
		resp = hostapi.AllBalanceResponse{Amount: amount}
	case q.Balance != nil:
		coin := hostapi.NewCoin(0, q.Balance.Denom)
		for _, c := range m.balances[q.Balance.Address] {
			if c.Denom == q.Balance.Denom {
				coin = c
			}
		}
		resp = hostapi.BalanceResponse{Amount: coin}
	default:
		return hostapi.SystemErr(hostapi.NewUnsupportedRequest("bank"))
	}

	data, err := hostapi.ToBinary(resp)
	if err != nil {
		return hostapi.SystemErr(hostapi.NewUnknownSystemError())
	}
	return hostapi.SystemOk(data)
}

// Reply returns a querier that always answers with res.
func Reply(res hostapi.SystemResult) hostapi.QuerierFunc {
	return func(context.Context, []byte) hostapi.SystemResult { return res }
}

// ReplyJSON returns a querier that always answers successfully with v encoded as JSON.
func ReplyJSON(v any) hostapi.QuerierFunc {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Reply(hostapi.SystemOk(data))
}

// Sequence returns a querier that replays results in order and repeats the
// last one once exhausted.
func Sequence(results ...hostapi.SystemResult) hostapi.QuerierFunc {
	var n atomic.Int64
	return func(context.Context, []byte) hostapi.SystemResult {
		i := int(n.Add(1) - 1)
		if i >= len(results) {
			i = len(results) - 1
		}
		return results[i]
	}
}

// Recorder captures every request it sees before delegating to Next.
type Recorder struct {
	mu       sync.Mutex
	Next     hostapi.Querier
	Requests [][]byte
}

func (r *Recorder) RawQuery(ctx context.Context, request []byte) hostapi.SystemResult {
	r.mu.Lock()
	r.Requests = append(r.Requests, append([]byte(nil), request...))
	r.mu.Unlock()
	return r.Next.RawQuery(ctx, request)
}

// Last returns the most recent request, or nil.
func (r *Recorder) Last() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Requests) == 0 {
		return nil
	}
	return r.Requests[len(r.Requests)-1]
}
