package hostapi

import (
	"fmt"
)

// SystemResult is what the host returns for every raw query. Err is set when
// the host could not process the envelope at all; otherwise Ok carries the
// target's own outcome.
type SystemResult struct {
	Ok  *ContractResult `json:"ok,omitempty"`
	Err *SystemError    `json:"error,omitempty"`
}

// ContractResult is the outcome produced by whatever handled the query.
type ContractResult struct {
	Ok  Binary  `json:"ok,omitempty"`
	Err *string `json:"error,omitempty"`
}

// IsErr reports whether the handler rejected the query.
func (r ContractResult) IsErr() bool {
	return r.Err != nil
}

// SystemOk builds a successful result carrying data.
func SystemOk(data Binary) SystemResult {
	return SystemResult{Ok: &ContractResult{Ok: data}}
}

// SystemContractErr builds a result where the host reached the handler but
// the handler refused the query.
func SystemContractErr(msg string) SystemResult {
	return SystemResult{Ok: &ContractResult{Err: &msg}}
}

// SystemErr builds a host-level failure.
func SystemErr(err *SystemError) SystemResult {
	return SystemResult{Err: err}
}

// SystemError describes why the host could not process a query envelope.
// It is a union; exactly one field is set.
type SystemError struct {
	InvalidRequest     *InvalidRequest     `json:"invalid_request,omitempty"`
	InvalidResponse    *InvalidResponse    `json:"invalid_response,omitempty"`
	NoSuchContract     *NoSuchContract     `json:"no_such_contract,omitempty"`
	UnsupportedRequest *UnsupportedRequest `json:"unsupported_request,omitempty"`
	Unknown            *Unknown            `json:"unknown,omitempty"`
}

type InvalidRequest struct {
	Error   string `json:"error"`
	Request Binary `json:"request"`
}

type InvalidResponse struct {
	Error    string `json:"error"`
	Response Binary `json:"response"`
}

type NoSuchContract struct {
	Addr string `json:"addr"`
}

type UnsupportedRequest struct {
	Kind string `json:"kind"`
}

type Unknown struct{}

func NewInvalidRequest(msg string, request []byte) *SystemError {
	return &SystemError{InvalidRequest: &InvalidRequest{Error: msg, Request: request}}
}

func NewInvalidResponse(msg string, response []byte) *SystemError {
	return &SystemError{InvalidResponse: &InvalidResponse{Error: msg, Response: response}}
}

func NewNoSuchContract(addr string) *SystemError {
	return &SystemError{NoSuchContract: &NoSuchContract{Addr: addr}}
}

func NewUnsupportedRequest(kind string) *SystemError {
	return &SystemError{UnsupportedRequest: &UnsupportedRequest{Kind: kind}}
}

func NewUnknownSystemError() *SystemError {
	return &SystemError{Unknown: &Unknown{}}
}

func (e *SystemError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.InvalidRequest != nil:
		return fmt.Sprintf("Cannot parse request: %s in: %s", e.InvalidRequest.Error, e.InvalidRequest.Request)
	case e.InvalidResponse != nil:
		return fmt.Sprintf("Cannot parse response: %s in: %s", e.InvalidResponse.Error, e.InvalidResponse.Response)
	case e.NoSuchContract != nil:
		return fmt.Sprintf("No such contract: %s", e.NoSuchContract.Addr)
	case e.UnsupportedRequest != nil:
		return fmt.Sprintf("Unsupported query type: %s", e.UnsupportedRequest.Kind)
	default:
		return "Unknown system error"
	}
}

// Kind returns a short machine name for the variant, used in logs and metrics.
func (e *SystemError) Kind() string {
	switch {
	case e == nil:
		return ""
	case e.InvalidRequest != nil:
		return "invalid_request"
	case e.InvalidResponse != nil:
		return "invalid_response"
	case e.NoSuchContract != nil:
		return "no_such_contract"
	case e.UnsupportedRequest != nil:
		return "unsupported_request"
	default:
		return "unknown"
	}
}
