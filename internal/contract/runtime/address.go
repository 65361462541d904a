package runtime

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressPrefix is the human-readable part of contract addresses.
const AddressPrefix = "bbn"

// ContractAddress derives the address a contract gets when code name is
// instantiated under label. The same pair always yields the same address.
func ContractAddress(name, label string) (string, error) {
	sum := sha256.Sum256([]byte("wasm\x00" + name + "\x00" + label))
	conv, err := bech32.ConvertBits(sum[:], 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("converting address bits: %w", err)
	}
	return bech32.Encode(AddressPrefix, conv)
}

// ValidateAddress checks that addr is a bech32 string with the contract prefix.
func ValidateAddress(addr string) error {
	hrp, _, err := bech32.Decode(addr)
	if err != nil {
		return fmt.Errorf("invalid contract address %q: %w", addr, err)
	}
	if hrp != AddressPrefix {
		return fmt.Errorf("invalid contract address %q: prefix %q, want %q", addr, hrp, AddressPrefix)
	}
	return nil
}
