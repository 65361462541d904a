// Package chaintest provides real Bitcoin mainnet headers and a genesis
// built from them.
package chaintest

import (
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

const (
	GenesisHash = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	Block1Hash  = "00000000839a8e6886ab5951d76f411475428afc90947ee320161bbf18eb6048"

	zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"
)

// Block0 is the mainnet genesis header.
func Block0() bindings.BtcBlockHeaderInfo {
	return bindings.BtcBlockHeaderInfo{
		Header: bindings.BtcBlockHeader{
			Version:       1,
			PrevBlockhash: zeroHash,
			MerkleRoot:    "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
			Time:          1231006505,
			Bits:          0x1d00ffff,
			Nonce:         2083236893,
		},
		Height: 0,
	}
}

// Block1 is the first header mined after genesis.
func Block1() bindings.BtcBlockHeaderInfo {
	return bindings.BtcBlockHeaderInfo{
		Header: bindings.BtcBlockHeader{
			Version:       1,
			PrevBlockhash: GenesisHash,
			MerkleRoot:    "0e3e2357e806b6cdb1f70b54c3a3a17b6714ee1f0e68bebb44a74b1efd512098",
			Time:          1231469665,
			Bits:          0x1d00ffff,
			Nonce:         2573394689,
		},
		Height: 1,
	}
}

// Block2 is the header at height 2.
func Block2() bindings.BtcBlockHeaderInfo {
	return bindings.BtcBlockHeaderInfo{
		Header: bindings.BtcBlockHeader{
			Version:       1,
			PrevBlockhash: Block1Hash,
			MerkleRoot:    "9b0fc92260312ce44e74ef369f5c66bbb85848f2eddd5a7a1cde251e54ccfdd5",
			Time:          1231469744,
			Bits:          0x1d00ffff,
			Nonce:         1639830024,
		},
		Height: 2,
	}
}

// Headers returns blocks 0 to 2.
func Headers() []bindings.BtcBlockHeaderInfo {
	return []bindings.BtcBlockHeaderInfo{Block0(), Block1(), Block2()}
}

// FundedAddress holds 123ucosm in GenesisJSON.
const FundedAddress = "bbn1funded"

// Balances seeds FundedAddress.
func Balances() map[string][]hostapi.Coin {
	return map[string][]hostapi.Coin{FundedAddress: hostapi.Coins(123, "ucosm")}
}
