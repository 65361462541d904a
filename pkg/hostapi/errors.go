package hostapi

import (
	"errors"
	"fmt"
	"reflect"
)

// ContractError carries the message a query handler returned when it
// rejected a query that the host otherwise delivered.
type ContractError struct {
	Msg string
}

func (e *ContractError) Error() string {
	return e.Msg
}

// DecodeError reports a reply whose bytes do not match the expected shape.
// It means the contract and host disagree about the protocol.
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsSystemError checks whether err came from the host boundary and returns it.
func IsSystemError(err error) (*SystemError, bool) {
	var e *SystemError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsContractError checks whether err is an application-level rejection and returns it.
func IsContractError(err error) (*ContractError, bool) {
	var e *ContractError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsDecodeError checks whether err is a local decoding failure and returns it.
func IsDecodeError(err error) (*DecodeError, bool) {
	var e *DecodeError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ErrorKind names which of the three failure origins err belongs to. It
// returns "" for nil and "other" for errors outside the taxonomy.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := IsSystemError(err); ok {
		return "system"
	}
	if _, ok := IsContractError(err); ok {
		return "contract"
	}
	if _, ok := IsDecodeError(err); ok {
		return "decode"
	}
	return "other"
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
