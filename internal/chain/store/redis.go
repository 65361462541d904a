package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

var _ Store = (*Redis)(nil)

// Redis stores chain state under a key prefix:
//
//	{prefix}header:{height}   CBOR header record
//	{prefix}hash:{hash}       height
//	{prefix}heights           sorted set of heights, scored by height
//	{prefix}epoch             current epoch
//	{prefix}finalized         CBOR finalized epoch info
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// DefaultRedisPrefix namespaces chain keys.
const DefaultRedisPrefix = "chain:"

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) headerKey(height uint64) string {
	return r.prefix + "header:" + strconv.FormatUint(height, 10)
}

func (r *Redis) hashKey(hash chainhash.Hash) string {
	return r.prefix + "hash:" + hash.String()
}

func (r *Redis) heightsKey() string   { return r.prefix + "heights" }
func (r *Redis) epochKey() string     { return r.prefix + "epoch" }
func (r *Redis) finalizedKey() string { return r.prefix + "finalized" }

// headerRecord is the stored form of a header: hashes as raw bytes, fields
// in a fixed array order.
type headerRecord struct {
	_          struct{} `cbor:",toarray"`
	Height     uint64
	Hash       [chainhash.HashSize]byte
	Version    int32
	PrevBlock  [chainhash.HashSize]byte
	MerkleRoot [chainhash.HashSize]byte
	Time       uint32
	Bits       uint32
	Nonce      uint32
}

func encodeHeader(hash chainhash.Hash, info bindings.BtcBlockHeaderInfo) ([]byte, error) {
	prev, err := chainhash.NewHashFromStr(info.Header.PrevBlockhash)
	if err != nil {
		return nil, fmt.Errorf("prev_blockhash: %w", err)
	}
	merkle, err := chainhash.NewHashFromStr(info.Header.MerkleRoot)
	if err != nil {
		return nil, fmt.Errorf("merkle_root: %w", err)
	}
	return cbor.Marshal(headerRecord{
		Height:     info.Height,
		Hash:       hash,
		Version:    info.Header.Version,
		PrevBlock:  *prev,
		MerkleRoot: *merkle,
		Time:       info.Header.Time,
		Bits:       info.Header.Bits,
		Nonce:      info.Header.Nonce,
	})
}

func decodeHeader(data []byte) (chainhash.Hash, *bindings.BtcBlockHeaderInfo, error) {
	var rec headerRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return chainhash.Hash{}, nil, fmt.Errorf("decoding header record: %w", err)
	}
	return rec.Hash, &bindings.BtcBlockHeaderInfo{
		Header: bindings.BtcBlockHeader{
			Version:       rec.Version,
			PrevBlockhash: chainhash.Hash(rec.PrevBlock).String(),
			MerkleRoot:    chainhash.Hash(rec.MerkleRoot).String(),
			Time:          rec.Time,
			Bits:          rec.Bits,
			Nonce:         rec.Nonce,
		},
		Height: rec.Height,
	}, nil
}

func (r *Redis) PutHeader(ctx context.Context, hash chainhash.Hash, info bindings.BtcBlockHeaderInfo) error {
	data, err := encodeHeader(hash, info)
	if err != nil {
		return err
	}

	existing, err := r.client.Get(ctx, r.headerKey(info.Height)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return err
	default:
		oldHash, _, err := decodeHeader(existing)
		if err != nil {
			return err
		}
		if oldHash != hash {
			return ErrHeightTaken
		}
		return nil
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.headerKey(info.Height), data, 0)
		pipe.Set(ctx, r.hashKey(hash), strconv.FormatUint(info.Height, 10), 0)
		pipe.ZAdd(ctx, r.heightsKey(), redis.Z{
			Score:  float64(info.Height),
			Member: strconv.FormatUint(info.Height, 10),
		})
		return nil
	})
	return err
}

func (r *Redis) HeaderByHeight(ctx context.Context, height uint64) (*bindings.BtcBlockHeaderInfo, error) {
	data, err := r.client.Get(ctx, r.headerKey(height)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_, info, err := decodeHeader(data)
	return info, err
}

func (r *Redis) HeaderByHash(ctx context.Context, hash chainhash.Hash) (*bindings.BtcBlockHeaderInfo, error) {
	height, err := r.client.Get(ctx, r.hashKey(hash)).Uint64()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.HeaderByHeight(ctx, height)
}

func (r *Redis) Tip(ctx context.Context) (*bindings.BtcBlockHeaderInfo, error) {
	return r.edge(ctx, r.client.ZRevRange(ctx, r.heightsKey(), 0, 0))
}

func (r *Redis) Base(ctx context.Context) (*bindings.BtcBlockHeaderInfo, error) {
	return r.edge(ctx, r.client.ZRange(ctx, r.heightsKey(), 0, 0))
}

func (r *Redis) edge(ctx context.Context, cmd *redis.StringSliceCmd) (*bindings.BtcBlockHeaderInfo, error) {
	members, err := cmd.Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	height, err := strconv.ParseUint(members[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad height member %q: %w", members[0], err)
	}
	return r.HeaderByHeight(ctx, height)
}

func (r *Redis) SetEpoch(ctx context.Context, epoch uint64) error {
	return r.client.Set(ctx, r.epochKey(), strconv.FormatUint(epoch, 10), 0).Err()
}

func (r *Redis) CurrentEpoch(ctx context.Context) (uint64, error) {
	epoch, err := r.client.Get(ctx, r.epochKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return epoch, err
}

func (r *Redis) SetFinalizedEpoch(ctx context.Context, info bindings.FinalizedEpochInfo) error {
	data, err := cbor.Marshal(info)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.finalizedKey(), data, 0).Err()
}

func (r *Redis) LatestFinalizedEpoch(ctx context.Context) (*bindings.FinalizedEpochInfo, error) {
	data, err := r.client.Get(ctx, r.finalizedKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var info bindings.FinalizedEpochInfo
	if err := cbor.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decoding finalized epoch: %w", err)
	}
	return &info, nil
}
