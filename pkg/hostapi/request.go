// Package hostapi defines the boundary between contract code and the chain
// that hosts it: the query envelope a contract sends, the three-way result
// the host returns, and a wrapper that turns that result into typed values
// or one of three distinguishable errors.
package hostapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Route names a top-level branch of the query envelope.
type Route string

const (
	RouteBank   Route = "bank"
	RouteCustom Route = "custom"
	RouteWasm   Route = "wasm"
)

var (
	// ErrEmptyRequest is returned when no envelope branch is set.
	ErrEmptyRequest = errors.New("query request has no route")
	// ErrAmbiguousRequest is returned when more than one branch is set.
	ErrAmbiguousRequest = errors.New("query request has more than one route")
	// ErrSerialize is returned when a request or value cannot be encoded.
	ErrSerialize = errors.New("serialization failed")
)

// Binary is an opaque byte payload. It encodes as a base64 JSON string.
type Binary []byte

// String returns the payload as text, which is how JSON replies are usually inspected.
func (b Binary) String() string {
	return string(b)
}

// ToBinary encodes v as canonical JSON.
func ToBinary(v any) (Binary, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return data, nil
}

// FromBinary decodes a payload into T. It is the explicit second decoding
// step for replies obtained through a pass-through query. Decoding is
// strict: see UnmarshalStrict.
func FromBinary[T any](data Binary) (T, error) {
	var out T
	if err := UnmarshalStrict(data, &out); err != nil {
		return out, &DecodeError{Target: typeName[T](), Err: err}
	}
	return out, nil
}

// QueryRequest is the envelope a contract hands to the host. Exactly one
// branch is set.
type QueryRequest struct {
	Bank   *BankQuery      `json:"bank,omitempty"`
	Custom json.RawMessage `json:"custom,omitempty"`
	Wasm   *WasmQuery      `json:"wasm,omitempty"`
}

// BankQuery selects a balance lookup.
type BankQuery struct {
	Balance     *BalanceQuery     `json:"balance,omitempty"`
	AllBalances *AllBalancesQuery `json:"all_balances,omitempty"`
}

type BalanceQuery struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

type AllBalancesQuery struct {
	Address string `json:"address"`
}

// WasmQuery addresses another contract.
type WasmQuery struct {
	Smart *SmartQuery `json:"smart,omitempty"`
	Raw   *RawQuery   `json:"raw,omitempty"`
}

// SmartQuery runs a contract's query entry point with Msg.
type SmartQuery struct {
	ContractAddr string `json:"contract_addr"`
	Msg          Binary `json:"msg"`
}

// RawQuery reads a key from a contract's storage.
type RawQuery struct {
	ContractAddr string `json:"contract_addr"`
	Key          Binary `json:"key"`
}

// NewCustomQuery wraps a chain-specific query in the envelope.
func NewCustomQuery(query any) (QueryRequest, error) {
	raw, err := json.Marshal(query)
	if err != nil {
		return QueryRequest{}, fmt.Errorf("%w: custom query: %v", ErrSerialize, err)
	}
	return QueryRequest{Custom: raw}, nil
}

// NewAllBalancesQuery builds a bank query for every balance held by address.
func NewAllBalancesQuery(address string) QueryRequest {
	return QueryRequest{Bank: &BankQuery{AllBalances: &AllBalancesQuery{Address: address}}}
}

// NewBalanceQuery builds a bank query for a single denomination.
func NewBalanceQuery(address, denom string) QueryRequest {
	return QueryRequest{Bank: &BankQuery{Balance: &BalanceQuery{Address: address, Denom: denom}}}
}

// NewSmartQuery builds a wasm query that runs msg against a contract.
func NewSmartQuery(contractAddr string, msg any) (QueryRequest, error) {
	data, err := ToBinary(msg)
	if err != nil {
		return QueryRequest{}, err
	}
	return QueryRequest{Wasm: &WasmQuery{Smart: &SmartQuery{ContractAddr: contractAddr, Msg: data}}}, nil
}

// Route reports which branch is set.
func (r QueryRequest) Route() (Route, error) {
	var routes []Route
	if r.Bank != nil {
		routes = append(routes, RouteBank)
	}
	if len(r.Custom) > 0 {
		routes = append(routes, RouteCustom)
	}
	if r.Wasm != nil {
		routes = append(routes, RouteWasm)
	}
	switch len(routes) {
	case 0:
		return "", ErrEmptyRequest
	case 1:
		return routes[0], nil
	default:
		return "", ErrAmbiguousRequest
	}
}

// Coin is an amount of a single denomination. Amount is a decimal string so
// 128-bit values survive JSON.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// NewCoin builds a coin from a 64-bit amount.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: strconv.FormatUint(amount, 10)}
}

// Coins builds a single-entry coin list.
func Coins(amount uint64, denom string) []Coin {
	return []Coin{NewCoin(amount, denom)}
}

func (c Coin) String() string {
	return c.Amount + c.Denom
}

type BalanceResponse struct {
	Amount Coin `json:"amount"`
}

type AllBalanceResponse struct {
	Amount []Coin `json:"amount"`
}
