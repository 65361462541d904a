// Package clitest wires a CLI application against a throwaway local host.
package clitest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/internal/app"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/chaintest"
	"github.com/felixgeelhaar/babylon-bindings/pkg/config"
)

// Config returns a local configuration backed by a SQLite file in a temp
// directory and the chaintest genesis.
func Config(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	state := filepath.Join(dir, "genesis.json")
	require.NoError(t, os.WriteFile(state, chaintest.GenesisJSON(), 0o600))

	return &config.Config{
		AppEnv:             "test",
		LogLevel:           "error",
		ChainID:            "bbn-test",
		SQLitePath:         filepath.Join(dir, "state.db"),
		StateFile:          state,
		ChainStore:         config.StoreSQL,
		ContractStore:      config.StoreSQL,
		GRPCAddr:           "127.0.0.1:0",
		MCPAddr:            "127.0.0.1:0",
		Capabilities:       []string{"iterator", "staking", "babylon"},
		BreakerMaxFailures: 5,
		BreakerTimeout:     time.Second,
		QueryTimeout:       5 * time.Second,
		SchemaDir:          filepath.Join(dir, "schema"),
	}
}

// Logger only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// NewApp builds a container for cfg, installs the CLI app globally and
// removes it again when the test ends.
func NewApp(t *testing.T, cfg *config.Config) *cli.App {
	t.Helper()

	container, err := app.NewContainer(context.Background(), cfg, Logger())
	require.NoError(t, err)

	a := cli.NewApp(container)
	cli.SetApp(a)
	cli.SetLogger(Logger())
	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return a
}

// Run executes args against a fresh root carrying cmds and returns what
// the command printed.
func Run(t *testing.T, args []string, cmds ...*cobra.Command) (string, error) {
	t.Helper()

	root := cli.NewRootCmd()
	for _, cmd := range cmds {
		root.AddCommand(cmd)
	}
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
