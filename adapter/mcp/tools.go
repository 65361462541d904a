// Package mcp exposes the bindings' queries as MCP tools and resources.
package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// Tools holds the handler behind every registered tool.
type Tools struct {
	app *cli.App
}

// NewTools returns the handlers for deps.
func NewTools(deps ToolDependencies) (*Tools, error) {
	if deps.App == nil {
		return nil, errors.New("app is required")
	}
	return &Tools{app: deps.App}, nil
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	tools, err := NewTools(deps)
	if err != nil {
		return err
	}

	registerCoreTools(srv, tools)
	registerBabylonTools(srv, tools)
	registerContractTools(srv, tools)
	return nil
}

func registerCoreTools(srv *mcp.Server, t *Tools) {
	srv.Tool("cli.health").
		Description("Run the host health checks").
		Handler(t.Health)

	srv.Tool("cli.version").
		Description("Get CLI version information").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{
				"version":   cli.Version,
				"commit":    cli.Commit,
				"buildDate": cli.BuildDate,
			}, nil
		})
}

// Health runs every registered health check.
func (t *Tools) Health(ctx context.Context, _ struct{}) (observability.OverallHealth, error) {
	return t.app.Health.GetOverallHealth(ctx), nil
}
