package chaintest

import (
	"encoding/json"

	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// genesis mirrors chain.Genesis so the fixture can be written without
// importing the package under test.
type genesis struct {
	Epoch          uint64                        `json:"epoch"`
	FinalizedEpoch *bindings.FinalizedEpochInfo  `json:"finalized_epoch,omitempty"`
	Headers        []bindings.BtcBlockHeaderInfo `json:"headers"`
	Balances       []balance                     `json:"balances"`
}

type balance struct {
	Address string         `json:"address"`
	Coins   []hostapi.Coin `json:"coins"`
}

// GenesisJSON is a state file at epoch 12 with epoch 10 finalized at
// height 1000, blocks 0 to 2, and FundedAddress funded.
func GenesisJSON() []byte {
	data, err := json.MarshalIndent(genesis{
		Epoch:          12,
		FinalizedEpoch: &bindings.FinalizedEpochInfo{EpochNumber: 10, LastBlockHeight: 1000},
		Headers:        Headers(),
		Balances: []balance{
			{Address: FundedAddress, Coins: hostapi.Coins(123, "ucosm")},
		},
	}, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}
