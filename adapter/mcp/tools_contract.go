package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/example"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

const defaultLabel = "default"

type contractInput struct {
	Label   string `json:"label,omitempty"`
	Address string `json:"address,omitempty"`
}

type contractChainInput struct {
	Label   string               `json:"label,omitempty"`
	Address string               `json:"address,omitempty"`
	Request hostapi.QueryRequest `json:"request" jsonschema:"required"`
}

func registerContractTools(srv *mcp.Server, t *Tools) {
	srv.Tool("contract.owner").
		Description("Owner recorded by the example contract (label defaults to \"default\")").
		Handler(t.ContractOwner)

	srv.Tool("contract.epoch").
		Description("Current epoch as read by the example contract through the bindings").
		Handler(t.ContractEpoch)

	srv.Tool("contract.chain").
		Description("Have the example contract forward a query request to the chain").
		Handler(t.ContractChain)
}

func (t *Tools) contractAddr(input contractInput) (string, error) {
	if input.Address != "" {
		return input.Address, nil
	}
	label := input.Label
	if label == "" {
		label = defaultLabel
	}
	return t.app.ExampleContract(label)
}

func (t *Tools) ContractOwner(ctx context.Context, input contractInput) (example.OwnerResponse, error) {
	addr, err := t.contractAddr(input)
	if err != nil {
		return example.OwnerResponse{}, err
	}
	return smartQuery[example.OwnerResponse](ctx, t.app, addr, example.QueryMsg{Owner: &example.OwnerQuery{}})
}

func (t *Tools) ContractEpoch(ctx context.Context, input contractInput) (example.CurrentEpochResponse, error) {
	addr, err := t.contractAddr(input)
	if err != nil {
		return example.CurrentEpochResponse{}, err
	}
	return smartQuery[example.CurrentEpochResponse](ctx, t.app, addr, example.QueryMsg{CurrentEpoch: &example.CurrentEpochQuery{}})
}

// ContractChain returns the forwarded reply wrapped in the contract's ChainResponse.
func (t *Tools) ContractChain(ctx context.Context, input contractChainInput) (example.ChainResponse, error) {
	if _, err := input.Request.Route(); err != nil {
		return example.ChainResponse{}, errors.New("request: " + err.Error())
	}
	addr, err := t.contractAddr(contractInput{Label: input.Label, Address: input.Address})
	if err != nil {
		return example.ChainResponse{}, err
	}
	return smartQuery[example.ChainResponse](ctx, t.app, addr, example.QueryMsg{Chain: &example.ChainQuery{Request: input.Request}})
}

func smartQuery[T any](ctx context.Context, app *cli.App, addr string, msg any) (T, error) {
	var zero T
	req, err := hostapi.NewSmartQuery(addr, msg)
	if err != nil {
		return zero, err
	}
	out, err := hostapi.Query[T](ctx, app.Host, req)
	if err != nil {
		return zero, cli.DescribeError(err)
	}
	return out, nil
}
