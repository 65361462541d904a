package sdk

import (
	"errors"
	"strings"
)

var (
	// Capability errors
	ErrInvalidCapability      = errors.New("invalid capability")
	ErrCapabilityNotSupported = errors.New("capability not supported by host")
	ErrCapabilityNotGranted   = errors.New("capability not granted")

	// Registry errors
	ErrContractNotFound      = errors.New("contract not found")
	ErrContractAlreadyExists = errors.New("contract already registered")

	// Message errors
	ErrUnknownMessage = errors.New("unknown message variant")
	ErrInvalidMessage = errors.New("invalid message")

	// Storage errors
	ErrNotFound = errors.New("not found")
)

// ContractError wraps a failure with the contract and entry point it came from.
type ContractError struct {
	ContractAddr string
	Op           string
	Err          error
}

func (e *ContractError) Error() string {
	if e.ContractAddr != "" {
		return "contract " + e.ContractAddr + ": " + e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

func NewContractError(addr, op string, err error) *ContractError {
	return &ContractError{ContractAddr: addr, Op: op, Err: err}
}

// CapabilityError reports the capabilities a contract needs that the host lacks.
type CapabilityError struct {
	ContractAddr string
	Missing      []Capability
}

func (e *CapabilityError) Error() string {
	names := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		names[i] = string(c)
	}
	return "contract " + e.ContractAddr + " requires unsupported capabilities: " + strings.Join(names, ", ")
}

func (e *CapabilityError) Unwrap() error {
	return ErrCapabilityNotSupported
}
