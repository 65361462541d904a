package chain

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

// ErrInvalidHash is returned for hash strings that are not 64 hex digits.
var ErrInvalidHash = errors.New("invalid hash")

// ParseHash parses a display-order (byte-reversed) block hash.
func ParseHash(s string) (chainhash.Hash, error) {
	if len(s) != chainhash.MaxHashStringSize {
		return chainhash.Hash{}, fmt.Errorf("%w: %q: want %d hex digits, got %d", ErrInvalidHash, s, chainhash.MaxHashStringSize, len(s))
	}
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("%w: %q: %v", ErrInvalidHash, s, err)
	}
	return *h, nil
}

// HeaderHash computes the block hash of h, the double SHA-256 of its
// 80-byte serialization.
func HeaderHash(h bindings.BtcBlockHeader) (chainhash.Hash, error) {
	prev, err := ParseHash(h.PrevBlockhash)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("prev_blockhash: %w", err)
	}
	merkle, err := ParseHash(h.MerkleRoot)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("merkle_root: %w", err)
	}
	header := wire.BlockHeader{
		Version:    h.Version,
		PrevBlock:  prev,
		MerkleRoot: merkle,
		Timestamp:  time.Unix(int64(h.Time), 0),
		Bits:       h.Bits,
		Nonce:      h.Nonce,
	}
	return header.BlockHash(), nil
}
