package bindings

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// BabylonQuerier issues catalog queries through a host querier. It keeps no
// mutable state, so it is safe for concurrent use whenever the wrapped
// querier is.
type BabylonQuerier struct {
	querier hostapi.QuerierWrapper
	logger  *slog.Logger
}

// QuerierOption configures a BabylonQuerier.
type QuerierOption func(*BabylonQuerier)

// WithLogger sets the logger used for per-call debug output.
func WithLogger(logger *slog.Logger) QuerierOption {
	return func(q *BabylonQuerier) {
		if logger != nil {
			q.logger = logger
		}
	}
}

func NewBabylonQuerier(querier hostapi.QuerierWrapper, opts ...QuerierOption) *BabylonQuerier {
	q := &BabylonQuerier{
		querier: querier,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// CurrentEpoch returns the chain's current epoch number.
func (q *BabylonQuerier) CurrentEpoch(ctx context.Context) (uint64, error) {
	q.logCall("CurrentEpoch", TagEpoch)
	res, err := runQuery[CurrentEpochResponse](ctx, q, NewEpochQuery())
	if err != nil {
		return 0, err
	}
	return res.Epoch, nil
}

// LatestFinalizedEpochInfo returns the most recently finalized epoch.
func (q *BabylonQuerier) LatestFinalizedEpochInfo(ctx context.Context) (FinalizedEpochInfo, error) {
	q.logCall("LatestFinalizedEpochInfo", TagLatestFinalizedEpochInfo)
	res, err := runQuery[LatestFinalizedEpochInfoResponse](ctx, q, NewLatestFinalizedEpochInfoQuery())
	if err != nil {
		return FinalizedEpochInfo{}, err
	}
	return res.EpochInfo, nil
}

// BtcTip returns the best known Bitcoin header.
func (q *BabylonQuerier) BtcTip(ctx context.Context) (BtcBlockHeaderInfo, error) {
	q.logCall("BtcTip", TagBtcTip)
	res, err := runQuery[BtcTipResponse](ctx, q, NewBtcTipQuery())
	if err != nil {
		return BtcBlockHeaderInfo{}, err
	}
	return res.HeaderInfo, nil
}

// BtcBaseHeader returns the header the chain's Bitcoin light client starts from.
func (q *BabylonQuerier) BtcBaseHeader(ctx context.Context) (BtcBlockHeaderInfo, error) {
	q.logCall("BtcBaseHeader", TagBtcBaseHeader)
	res, err := runQuery[BtcBaseHeaderResponse](ctx, q, NewBtcBaseHeaderQuery())
	if err != nil {
		return BtcBlockHeaderInfo{}, err
	}
	return res.HeaderInfo, nil
}

// BtcHeaderByHeight returns the header at height, or nil if the chain has
// none there yet.
func (q *BabylonQuerier) BtcHeaderByHeight(ctx context.Context, height uint64) (*BtcBlockHeaderInfo, error) {
	q.logCall("BtcHeaderByHeight", TagBtcHeaderByHeight, "height", height)
	res, err := runQuery[BtcHeaderQueryResponse](ctx, q, NewBtcHeaderByHeightQuery(height))
	if err != nil {
		return nil, err
	}
	return res.HeaderInfo, nil
}

// BtcHeaderByHash returns the header with the given display-order hash, or
// nil if the chain does not know it.
func (q *BabylonQuerier) BtcHeaderByHash(ctx context.Context, hash string) (*BtcBlockHeaderInfo, error) {
	q.logCall("BtcHeaderByHash", TagBtcHeaderByHash, "hash", hash)
	res, err := runQuery[BtcHeaderQueryResponse](ctx, q, NewBtcHeaderByHashQuery(hash))
	if err != nil {
		return nil, err
	}
	return res.HeaderInfo, nil
}

// Query dispatches any catalog value and returns a pointer to its bound
// response record.
func (q *BabylonQuerier) Query(ctx context.Context, query BabylonQuery) (any, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	tag := query.Tag()
	q.logCall("Query", tag)

	req, err := hostapi.NewCustomQuery(query)
	if err != nil {
		return nil, err
	}
	data, err := q.querier.RawQuery(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := NewResponse(tag)
	if err != nil {
		return nil, err
	}
	if err := hostapi.UnmarshalStrict(data, out); err != nil {
		return nil, &hostapi.DecodeError{Target: reflect.TypeOf(out).Elem().String(), Err: err}
	}
	return out, nil
}

func runQuery[T any](ctx context.Context, q *BabylonQuerier, query BabylonQuery) (T, error) {
	var zero T
	req, err := hostapi.NewCustomQuery(query)
	if err != nil {
		return zero, err
	}
	return hostapi.Query[T](ctx, q.querier, req)
}

func (q *BabylonQuerier) logCall(method string, tag QueryTag, args ...any) {
	q.logger.Debug(
		"calling "+method+"()",
		append([]any{"component", "bindings", "query", string(tag)}, args...)...,
	)
}
