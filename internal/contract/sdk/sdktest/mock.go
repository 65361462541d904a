// Package sdktest builds contract entry point arguments for tests.
package sdktest

import (
	"time"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/storage"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi/hostapitest"
)

// MockChainID is the chain ID of MockEnv.
const MockChainID = "bbn-testing"

// MockEnv returns an environment at height 12345 for hostapitest.MockContractAddr.
func MockEnv() sdk.Env {
	return sdk.Env{
		Block: sdk.BlockInfo{
			Height:  12_345,
			Time:    time.Unix(1_571_797_419, 879_305_533).UTC(),
			ChainID: MockChainID,
		},
		Contract: sdk.ContractInfo{Address: hostapitest.MockContractAddr},
	}
}

// MockInfo returns message info for sender carrying funds.
func MockInfo(sender string, funds []hostapi.Coin) sdk.MessageInfo {
	return sdk.MessageInfo{Sender: sender, Funds: funds}
}

// MockDeps returns writable dependencies over fresh in-memory storage.
func MockDeps(querier hostapi.Querier) sdk.DepsMut {
	return sdk.DepsMut{
		Storage: storage.NewMemory().ForContract(hostapitest.MockContractAddr),
		Querier: hostapi.NewQuerierWrapper(querier),
	}
}
