package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/schema"
)

const schemaURIPrefix = "babylon://schema/"

// RegisterResources registers one resource per exported schema plus the
// light client status.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	tools, err := NewTools(deps)
	if err != nil {
		return err
	}

	for _, entry := range cli.Schemas() {
		entry := entry
		srv.Resource(schemaURIPrefix + entry.Name).
			Name(entry.Name).
			Description("JSON Schema of " + entry.Name).
			MimeType("application/schema+json").
			Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
				s, err := schema.Generate(entry)
				if err != nil {
					return nil, err
				}
				return jsonContent(uri, "application/schema+json", s)
			})
	}

	srv.Resource("babylon://btc/light-client").
		Name("BTC light client").
		Description("Base and tip headers of the BTC light client").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			status, err := tools.LightClient(ctx)
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, "application/json", status)
		})

	return nil
}

// LightClientStatus summarises the BTC light client.
type LightClientStatus struct {
	Base bindings.BtcBlockHeaderInfo `json:"base"`
	Tip  bindings.BtcBlockHeaderInfo `json:"tip"`
	// Depth counts headers from base to tip, both included.
	Depth uint64 `json:"depth"`
}

// LightClient reads the base and tip headers.
func (t *Tools) LightClient(ctx context.Context) (LightClientStatus, error) {
	base, err := t.app.Babylon.BtcBaseHeader(ctx)
	if err != nil {
		return LightClientStatus{}, cli.DescribeError(err)
	}
	tip, err := t.app.Babylon.BtcTip(ctx)
	if err != nil {
		return LightClientStatus{}, cli.DescribeError(err)
	}
	status := LightClientStatus{Base: base, Tip: tip}
	if tip.Height >= base.Height {
		status.Depth = tip.Height - base.Height + 1
	}
	return status, nil
}

func jsonContent(uri, mimeType string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: mimeType,
		Text:     string(data),
	}, nil
}
