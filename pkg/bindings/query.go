// Package bindings is the contract-side view of the Babylon custom queries:
// the closed catalog of requests, the response record bound to each of
// them, and BabylonQuerier, which dispatches a request through the host and
// decodes the reply into its bound type.
package bindings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// RequiredCapability is the chain capability a contract depends on once it
// issues Babylon queries. Hosts without it must refuse to run the contract.
const RequiredCapability = "babylon"

// QueryTag is the wire name of a catalog entry.
type QueryTag string

const (
	TagEpoch                    QueryTag = "epoch"
	TagLatestFinalizedEpochInfo QueryTag = "latest_finalized_epoch_info"
	TagBtcBaseHeader            QueryTag = "btc_base_header"
	TagBtcTip                   QueryTag = "btc_tip"
	TagBtcHeaderByHeight        QueryTag = "btc_header_by_height"
	TagBtcHeaderByHash          QueryTag = "btc_header_by_hash"
)

var (
	// ErrUnknownQuery is returned when a payload names no known tag.
	ErrUnknownQuery = errors.New("unknown babylon query")
	// ErrAmbiguousQuery is returned when a payload sets more than one tag.
	ErrAmbiguousQuery = errors.New("babylon query must set exactly one variant")
	// ErrMalformedQuery is returned when a variant payload has unknown,
	// missing or mistyped fields.
	ErrMalformedQuery = errors.New("malformed babylon query")
)

// Variant payloads. The argument-free ones encode as {}.
type (
	EpochQuery                    struct{}
	LatestFinalizedEpochInfoQuery struct{}
	BtcBaseHeaderQuery            struct{}
	BtcTipQuery                   struct{}

	BtcHeaderByHeightQuery struct {
		Height uint64 `json:"height"`
	}

	BtcHeaderByHashQuery struct {
		Hash string `json:"hash"`
	}
)

// BabylonQuery is a tagged union: exactly one field is set, and it encodes
// as a single-key object named after the tag, e.g.
// {"btc_header_by_height":{"height":100}}.
type BabylonQuery struct {
	Epoch                    *EpochQuery                    `json:"epoch,omitempty"`
	LatestFinalizedEpochInfo *LatestFinalizedEpochInfoQuery `json:"latest_finalized_epoch_info,omitempty"`
	BtcBaseHeader            *BtcBaseHeaderQuery            `json:"btc_base_header,omitempty"`
	BtcTip                   *BtcTipQuery                   `json:"btc_tip,omitempty"`
	BtcHeaderByHeight        *BtcHeaderByHeightQuery        `json:"btc_header_by_height,omitempty"`
	BtcHeaderByHash          *BtcHeaderByHashQuery          `json:"btc_header_by_hash,omitempty"`
}

func NewEpochQuery() BabylonQuery {
	return BabylonQuery{Epoch: &EpochQuery{}}
}

func NewLatestFinalizedEpochInfoQuery() BabylonQuery {
	return BabylonQuery{LatestFinalizedEpochInfo: &LatestFinalizedEpochInfoQuery{}}
}

func NewBtcBaseHeaderQuery() BabylonQuery {
	return BabylonQuery{BtcBaseHeader: &BtcBaseHeaderQuery{}}
}

func NewBtcTipQuery() BabylonQuery {
	return BabylonQuery{BtcTip: &BtcTipQuery{}}
}

func NewBtcHeaderByHeightQuery(height uint64) BabylonQuery {
	return BabylonQuery{BtcHeaderByHeight: &BtcHeaderByHeightQuery{Height: height}}
}

// NewBtcHeaderByHashQuery does not check hash; the host rejects malformed values.
func NewBtcHeaderByHashQuery(hash string) BabylonQuery {
	return BabylonQuery{BtcHeaderByHash: &BtcHeaderByHashQuery{Hash: hash}}
}

func (q BabylonQuery) set() []QueryTag {
	var tags []QueryTag
	if q.Epoch != nil {
		tags = append(tags, TagEpoch)
	}
	if q.LatestFinalizedEpochInfo != nil {
		tags = append(tags, TagLatestFinalizedEpochInfo)
	}
	if q.BtcBaseHeader != nil {
		tags = append(tags, TagBtcBaseHeader)
	}
	if q.BtcTip != nil {
		tags = append(tags, TagBtcTip)
	}
	if q.BtcHeaderByHeight != nil {
		tags = append(tags, TagBtcHeaderByHeight)
	}
	if q.BtcHeaderByHash != nil {
		tags = append(tags, TagBtcHeaderByHash)
	}
	return tags
}

// Tag returns the tag of the set variant, or "" when zero or several are set.
func (q BabylonQuery) Tag() QueryTag {
	tags := q.set()
	if len(tags) != 1 {
		return ""
	}
	return tags[0]
}

// Validate checks the union shape. Argument values are not inspected.
func (q BabylonQuery) Validate() error {
	switch tags := q.set(); len(tags) {
	case 0:
		return ErrUnknownQuery
	case 1:
		return nil
	default:
		return fmt.Errorf("%w: got %v", ErrAmbiguousQuery, tags)
	}
}

type babylonQueryJSON BabylonQuery

func (q BabylonQuery) MarshalJSON() ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(babylonQueryJSON(q))
}

func (q *BabylonQuery) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if len(keys) != 1 {
		if len(keys) == 0 {
			return ErrUnknownQuery
		}
		return ErrAmbiguousQuery
	}

	for key, payload := range keys {
		if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
			return fmt.Errorf("%w: %q has null payload", ErrUnknownQuery, key)
		}

		var out BabylonQuery
		var target any
		switch QueryTag(key) {
		case TagEpoch:
			out.Epoch = &EpochQuery{}
			target = out.Epoch
		case TagLatestFinalizedEpochInfo:
			out.LatestFinalizedEpochInfo = &LatestFinalizedEpochInfoQuery{}
			target = out.LatestFinalizedEpochInfo
		case TagBtcBaseHeader:
			out.BtcBaseHeader = &BtcBaseHeaderQuery{}
			target = out.BtcBaseHeader
		case TagBtcTip:
			out.BtcTip = &BtcTipQuery{}
			target = out.BtcTip
		case TagBtcHeaderByHeight:
			out.BtcHeaderByHeight = &BtcHeaderByHeightQuery{}
			target = out.BtcHeaderByHeight
		case TagBtcHeaderByHash:
			out.BtcHeaderByHash = &BtcHeaderByHashQuery{}
			target = out.BtcHeaderByHash
		default:
			return fmt.Errorf("%w: %q", ErrUnknownQuery, key)
		}

		if err := hostapi.UnmarshalStrict(payload, target); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMalformedQuery, key, err)
		}
		*q = out
	}
	return nil
}

// responseTypes binds each tag to the single record its reply decodes into.
var responseTypes = map[QueryTag]reflect.Type{
	TagEpoch:                    reflect.TypeFor[CurrentEpochResponse](),
	TagLatestFinalizedEpochInfo: reflect.TypeFor[LatestFinalizedEpochInfoResponse](),
	TagBtcBaseHeader:            reflect.TypeFor[BtcBaseHeaderResponse](),
	TagBtcTip:                   reflect.TypeFor[BtcTipResponse](),
	TagBtcHeaderByHeight:        reflect.TypeFor[BtcHeaderQueryResponse](),
	TagBtcHeaderByHash:          reflect.TypeFor[BtcHeaderQueryResponse](),
}

// Tags lists the catalog in declaration order.
func Tags() []QueryTag {
	return []QueryTag{
		TagEpoch,
		TagLatestFinalizedEpochInfo,
		TagBtcBaseHeader,
		TagBtcTip,
		TagBtcHeaderByHeight,
		TagBtcHeaderByHash,
	}
}

// ResponseTypeFor returns the record type bound to tag.
func ResponseTypeFor(tag QueryTag) (reflect.Type, bool) {
	t, ok := responseTypes[tag]
	return t, ok
}

// NewResponse allocates a pointer to the record bound to tag, ready to decode into.
func NewResponse(tag QueryTag) (any, error) {
	t, ok := responseTypes[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, tag)
	}
	return reflect.New(t).Interface(), nil
}
