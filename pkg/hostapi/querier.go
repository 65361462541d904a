package hostapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// Querier is the host boundary: it takes a serialized QueryRequest and
// reports a three-way result. Implementations decide whether concurrent
// calls are allowed.
type Querier interface {
	RawQuery(ctx context.Context, request []byte) SystemResult
}

// QuerierFunc adapts a function to Querier.
type QuerierFunc func(ctx context.Context, request []byte) SystemResult

func (f QuerierFunc) RawQuery(ctx context.Context, request []byte) SystemResult {
	return f(ctx, request)
}

// QuerierWrapper gives contract code typed access to a Querier. It holds no
// state of its own beyond the wrapped Querier.
type QuerierWrapper struct {
	querier Querier
}

// NewQuerierWrapper wraps q.
func NewQuerierWrapper(q Querier) QuerierWrapper {
	return QuerierWrapper{querier: q}
}

// Querier returns the wrapped boundary.
func (w QuerierWrapper) Querier() Querier {
	return w.querier
}

// RawQuery forwards request and returns the undecoded reply bytes. A host
// failure comes back as *SystemError and a handler rejection as
// *ContractError.
func (w QuerierWrapper) RawQuery(ctx context.Context, request QueryRequest) (Binary, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%w: query request: %v", ErrSerialize, err)
	}
	return w.RawQueryBytes(ctx, raw)
}

// RawQueryBytes is RawQuery for an envelope that is already serialized.
func (w QuerierWrapper) RawQueryBytes(ctx context.Context, raw []byte) (Binary, error) {
	if w.querier == nil {
		return nil, NewUnknownSystemError()
	}
	res := w.querier.RawQuery(ctx, raw)
	switch {
	case res.Err != nil:
		return nil, res.Err
	case res.Ok == nil:
		return nil, NewInvalidResponse("empty system result", nil)
	case res.Ok.IsErr():
		return nil, &ContractError{Msg: *res.Ok.Err}
	default:
		return res.Ok.Ok, nil
	}
}

// Query forwards request and decodes the reply into T.
func Query[T any](ctx context.Context, w QuerierWrapper, request QueryRequest) (T, error) {
	var zero T
	data, err := w.RawQuery(ctx, request)
	if err != nil {
		return zero, err
	}
	return FromBinary[T](data)
}

// QueryBalance returns the balance of a single denomination held by address.
func (w QuerierWrapper) QueryBalance(ctx context.Context, address, denom string) (Coin, error) {
	res, err := Query[BalanceResponse](ctx, w, NewBalanceQuery(address, denom))
	if err != nil {
		return Coin{}, err
	}
	return res.Amount, nil
}

// QueryAllBalances returns every balance held by address.
func (w QuerierWrapper) QueryAllBalances(ctx context.Context, address string) ([]Coin, error) {
	res, err := Query[AllBalanceResponse](ctx, w, NewAllBalancesQuery(address))
	if err != nil {
		return nil, err
	}
	return res.Amount, nil
}
