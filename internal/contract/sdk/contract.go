// Package sdk defines what a contract sees of the chain it runs on: its
// entry points, the dependencies handed to them, and the capability model
// used to decide whether a host can run it at all.
package sdk

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// Contract is implemented by every contract the runtime can execute.
type Contract interface {
	// Name identifies the contract code, e.g. "babylon-example".
	Name() string

	// Capabilities lists the chain features the contract relies on.
	Capabilities() []Capability

	// Instantiate runs once when the contract is created. Storage writes
	// are discarded if it returns an error.
	Instantiate(ctx context.Context, deps DepsMut, env Env, info MessageInfo, msg json.RawMessage) (*Response, error)

	// Query answers a read-only message with an encoded reply.
	Query(ctx context.Context, deps Deps, env Env, msg json.RawMessage) (hostapi.Binary, error)
}

// Deps is handed to read-only entry points.
type Deps struct {
	Storage ReadonlyStorage
	Querier hostapi.QuerierWrapper
}

// DepsMut is handed to entry points that may write state.
type DepsMut struct {
	Storage Storage
	Querier hostapi.QuerierWrapper
}

// AsRef returns the read-only view of d.
func (d DepsMut) AsRef() Deps {
	return Deps{Storage: d.Storage, Querier: d.Querier}
}

// Env describes the block and contract an entry point runs in.
type Env struct {
	Block    BlockInfo    `json:"block"`
	Contract ContractInfo `json:"contract"`
}

type BlockInfo struct {
	Height  uint64    `json:"height"`
	Time    time.Time `json:"time"`
	ChainID string    `json:"chain_id"`
}

type ContractInfo struct {
	Address string `json:"address"`
}

// MessageInfo identifies who sent a message and what funds came with it.
type MessageInfo struct {
	Sender string         `json:"sender"`
	Funds  []hostapi.Coin `json:"funds"`
}

// Attribute is a key/value pair attached to a Response.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the result of a state-changing entry point.
type Response struct {
	Attributes []Attribute    `json:"attributes"`
	Data       hostapi.Binary `json:"data,omitempty"`
}

// NewResponse returns an empty response.
func NewResponse() *Response {
	return &Response{Attributes: []Attribute{}}
}

// AddAttribute appends an attribute and returns r.
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}
