// Package grpc carries the host querier over gRPC. Messages are the
// hostapi JSON types themselves; no protobuf code generation is involved.
package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

// JSONCodec implements encoding.Codec with encoding/json so the wire shape
// matches what contracts exchange with the host.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func (JSONCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(JSONCodec{})
}
