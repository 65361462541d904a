// Package example is a minimal contract built on the Babylon bindings. It
// records its creator and forwards chain queries on request.
package example

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// Name is the contract's code name.
const Name = "babylon-example"

var _ sdk.Contract = (*Contract)(nil)

type Contract struct{}

func New() *Contract {
	return &Contract{}
}

func (c *Contract) Name() string {
	return Name
}

func (c *Contract) Capabilities() []sdk.Capability {
	return []sdk.Capability{sdk.CapBabylon}
}

func (c *Contract) Instantiate(ctx context.Context, deps sdk.DepsMut, _ sdk.Env, info sdk.MessageInfo, msg json.RawMessage) (*sdk.Response, error) {
	var init InstantiateMsg
	if err := decodeMsg(msg, &init); err != nil {
		return nil, err
	}
	if info.Sender == "" {
		return nil, fmt.Errorf("%w: sender is required", sdk.ErrInvalidMessage)
	}

	if err := Config.Save(ctx, deps.Storage, State{Owner: info.Sender}); err != nil {
		return nil, err
	}
	return sdk.NewResponse().
		AddAttribute("method", "instantiate").
		AddAttribute("owner", info.Sender), nil
}

func (c *Contract) Query(ctx context.Context, deps sdk.Deps, _ sdk.Env, msg json.RawMessage) (hostapi.Binary, error) {
	var q QueryMsg
	if err := decodeMsg(msg, &q); err != nil {
		return nil, err
	}

	switch {
	case q.Owner != nil && q.Chain == nil && q.CurrentEpoch == nil:
		return queryOwner(ctx, deps)
	case q.Chain != nil && q.Owner == nil && q.CurrentEpoch == nil:
		return queryChain(ctx, deps, q.Chain.Request)
	case q.CurrentEpoch != nil && q.Owner == nil && q.Chain == nil:
		return queryCurrentEpoch(ctx, deps)
	default:
		return nil, sdk.ErrUnknownMessage
	}
}

func queryOwner(ctx context.Context, deps sdk.Deps) (hostapi.Binary, error) {
	state, err := Config.Load(ctx, deps.Storage)
	if err != nil {
		return nil, err
	}
	return hostapi.ToBinary(OwnerResponse{Owner: state.Owner})
}

// queryChain forwards request and wraps the raw reply. The host's verdict
// is reported with a prefix naming which side failed.
func queryChain(ctx context.Context, deps sdk.Deps, request hostapi.QueryRequest) (hostapi.Binary, error) {
	data, err := deps.Querier.RawQuery(ctx, request)
	if err != nil {
		return nil, describe(err)
	}
	return hostapi.ToBinary(ChainResponse{Data: data})
}

func queryCurrentEpoch(ctx context.Context, deps sdk.Deps) (hostapi.Binary, error) {
	epoch, err := bindings.NewBabylonQuerier(deps.Querier).CurrentEpoch(ctx)
	if err != nil {
		return nil, describe(err)
	}
	return hostapi.ToBinary(CurrentEpochResponse{Epoch: epoch})
}

func describe(err error) error {
	if sysErr, ok := hostapi.IsSystemError(err); ok {
		return fmt.Errorf("Querier system error: %s", sysErr)
	}
	if contractErr, ok := hostapi.IsContractError(err); ok {
		return fmt.Errorf("Querier contract error: %s", contractErr.Msg)
	}
	return err
}

func decodeMsg(msg json.RawMessage, v any) error {
	if len(msg) == 0 {
		return fmt.Errorf("%w: empty message", sdk.ErrInvalidMessage)
	}
	if err := json.Unmarshal(msg, v); err != nil {
		return errors.Join(sdk.ErrInvalidMessage, err)
	}
	return nil
}
