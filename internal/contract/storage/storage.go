// Package storage provides the key-value backends contract state lives in.
// Every backend namespaces keys by contract address, so one contract can
// never see another's state.
package storage

import (
	"errors"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
)

const (
	// KeyMaxLength is the largest key a contract may use, in bytes.
	KeyMaxLength = 64 * 1024

	// ValueMaxSize is the largest value a contract may store, in bytes.
	ValueMaxSize = 128 * 1024
)

var (
	ErrEmptyKey    = errors.New("storage key is empty")
	ErrKeyTooLong  = errors.New("storage key too long")
	ErrValueTooBig = errors.New("storage value too big")
)

// Factory hands out the storage of a single contract.
type Factory interface {
	ForContract(addr string) sdk.Storage
}

// Kind names a storage backend.
type Kind string

const (
	KindMemory Kind = "memory"
	KindSQL    Kind = "sql"
	KindRedis  Kind = "redis"
)

func checkKey(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if len(key) > KeyMaxLength {
		return ErrKeyTooLong
	}
	return nil
}

func checkValue(value []byte) error {
	if len(value) > ValueMaxSize {
		return ErrValueTooBig
	}
	return nil
}
