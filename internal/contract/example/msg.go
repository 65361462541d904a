package example

import (
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// InstantiateMsg carries no fields; the sender becomes the owner.
type InstantiateMsg struct{}

// QueryMsg sets exactly one route.
type QueryMsg struct {
	Owner        *OwnerQuery        `json:"owner,omitempty"`
	Chain        *ChainQuery        `json:"chain,omitempty"`
	CurrentEpoch *CurrentEpochQuery `json:"current_epoch,omitempty"`
}

type OwnerQuery struct{}

// ChainQuery forwards Request to the host unchanged.
type ChainQuery struct {
	Request hostapi.QueryRequest `json:"request"`
}

type CurrentEpochQuery struct{}

type OwnerResponse struct {
	Owner string `json:"owner"`
}

// ChainResponse carries the host's reply undecoded.
type ChainResponse struct {
	Data hostapi.Binary `json:"data"`
}

// CurrentEpochResponse is bindings.CurrentEpochResponse, answered through the typed querier.
type CurrentEpochResponse = bindings.CurrentEpochResponse
