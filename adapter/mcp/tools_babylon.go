package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

type heightInput struct {
	Height uint64 `json:"height" jsonschema:"required"`
}

type hashInput struct {
	Hash string `json:"hash" jsonschema:"required"`
}

type rawQueryInput struct {
	Request json.RawMessage `json:"request" jsonschema:"required"`
}

type rawQueryOutput struct {
	Data hostapi.Binary `json:"data"`
}

type balanceInput struct {
	Address string `json:"address" jsonschema:"required"`
	Denom   string `json:"denom,omitempty"`
}

func registerBabylonTools(srv *mcp.Server, t *Tools) {
	srv.Tool("babylon.epoch").
		Description("Current Babylon epoch number").
		Handler(t.Epoch)

	srv.Tool("babylon.finalized_epoch").
		Description("Latest finalized epoch and the last block height it covers").
		Handler(t.FinalizedEpoch)

	srv.Tool("babylon.btc_tip").
		Description("Best BTC header known to the light client").
		Handler(t.BtcTip)

	srv.Tool("babylon.btc_base_header").
		Description("BTC header the light client starts from").
		Handler(t.BtcBaseHeader)

	srv.Tool("babylon.btc_header_by_height").
		Description("BTC header at a height; header_info is null when unknown").
		Handler(t.BtcHeaderByHeight)

	srv.Tool("babylon.btc_header_by_hash").
		Description("BTC header with a display-order hex hash; header_info is null when unknown").
		Handler(t.BtcHeaderByHash)

	srv.Tool("babylon.raw_query").
		Description("Send a raw query request (bank, custom or wasm) and return the base64 reply bytes").
		Handler(t.RawQuery)

	srv.Tool("bank.balances").
		Description("Bank balances of an address, optionally for one denomination").
		Handler(t.Balances)
}

func (t *Tools) Epoch(ctx context.Context, _ struct{}) (bindings.CurrentEpochResponse, error) {
	epoch, err := t.app.Babylon.CurrentEpoch(ctx)
	if err != nil {
		return bindings.CurrentEpochResponse{}, cli.DescribeError(err)
	}
	return bindings.CurrentEpochResponse{Epoch: epoch}, nil
}

func (t *Tools) FinalizedEpoch(ctx context.Context, _ struct{}) (bindings.LatestFinalizedEpochInfoResponse, error) {
	info, err := t.app.Babylon.LatestFinalizedEpochInfo(ctx)
	if err != nil {
		return bindings.LatestFinalizedEpochInfoResponse{}, cli.DescribeError(err)
	}
	return bindings.LatestFinalizedEpochInfoResponse{EpochInfo: info}, nil
}

func (t *Tools) BtcTip(ctx context.Context, _ struct{}) (bindings.BtcTipResponse, error) {
	info, err := t.app.Babylon.BtcTip(ctx)
	if err != nil {
		return bindings.BtcTipResponse{}, cli.DescribeError(err)
	}
	return bindings.BtcTipResponse{HeaderInfo: info}, nil
}

func (t *Tools) BtcBaseHeader(ctx context.Context, _ struct{}) (bindings.BtcBaseHeaderResponse, error) {
	info, err := t.app.Babylon.BtcBaseHeader(ctx)
	if err != nil {
		return bindings.BtcBaseHeaderResponse{}, cli.DescribeError(err)
	}
	return bindings.BtcBaseHeaderResponse{HeaderInfo: info}, nil
}

func (t *Tools) BtcHeaderByHeight(ctx context.Context, input heightInput) (bindings.BtcHeaderQueryResponse, error) {
	info, err := t.app.Babylon.BtcHeaderByHeight(ctx, input.Height)
	if err != nil {
		return bindings.BtcHeaderQueryResponse{}, cli.DescribeError(err)
	}
	return bindings.BtcHeaderQueryResponse{HeaderInfo: info}, nil
}

func (t *Tools) BtcHeaderByHash(ctx context.Context, input hashInput) (bindings.BtcHeaderQueryResponse, error) {
	if input.Hash == "" {
		return bindings.BtcHeaderQueryResponse{}, errors.New("hash is required")
	}
	info, err := t.app.Babylon.BtcHeaderByHash(ctx, input.Hash)
	if err != nil {
		return bindings.BtcHeaderQueryResponse{}, cli.DescribeError(err)
	}
	return bindings.BtcHeaderQueryResponse{HeaderInfo: info}, nil
}

// RawQuery returns the reply bytes; they travel base64-encoded since a
// wasm raw read need not be JSON.
func (t *Tools) RawQuery(ctx context.Context, input rawQueryInput) (rawQueryOutput, error) {
	if len(input.Request) == 0 {
		return rawQueryOutput{}, errors.New("request is required")
	}
	data, err := t.app.Host.RawQueryBytes(ctx, input.Request)
	if err != nil {
		return rawQueryOutput{}, cli.DescribeError(err)
	}
	return rawQueryOutput{Data: data}, nil
}

func (t *Tools) Balances(ctx context.Context, input balanceInput) (hostapi.AllBalanceResponse, error) {
	if input.Address == "" {
		return hostapi.AllBalanceResponse{}, errors.New("address is required")
	}
	if input.Denom != "" {
		coin, err := t.app.Host.QueryBalance(ctx, input.Address, input.Denom)
		if err != nil {
			return hostapi.AllBalanceResponse{}, cli.DescribeError(err)
		}
		return hostapi.AllBalanceResponse{Amount: []hostapi.Coin{coin}}, nil
	}
	coins, err := t.app.Host.QueryAllBalances(ctx, input.Address)
	if err != nil {
		return hostapi.AllBalanceResponse{}, cli.DescribeError(err)
	}
	return hostapi.AllBalanceResponse{Amount: coins}, nil
}
