package cli

import (
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/babylon-bindings/internal/app"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/example"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/runtime"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/config"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
	"github.com/felixgeelhaar/babylon-bindings/pkg/schema"
)

// ErrNotInitialized is returned by commands that need a host when none was wired.
var ErrNotInitialized = errors.New("application not initialized - host connection required")

// App holds the CLI application dependencies.
type App struct {
	Config  *config.Config
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Querier is the untyped host the serve commands expose.
	Querier hostapi.Querier
	Host    hostapi.QuerierWrapper
	Babylon *bindings.BabylonQuerier

	// Executor is nil when talking to a remote host.
	Executor *runtime.Executor

	exampleContract func(label string) (string, error)
}

// NewApp creates a CLI application on top of a wired container.
func NewApp(c *app.Container) *App {
	a := &App{
		Config:          c.Config,
		Metrics:         c.Metrics,
		Health:          c.Health,
		Querier:         c.Querier,
		Host:            c.QuerierWrapper(),
		exampleContract: c.ExampleContract,
	}
	a.Babylon = bindings.NewBabylonQuerier(a.Host, bindings.WithLogger(observability.Component(c.Logger, "bindings")))
	if c.Node != nil {
		a.Executor = c.Node.Executor
	}
	return a
}

// NewQueryApp creates an App that only answers queries, for callers that
// hold a querier but no container.
func NewQueryApp(q hostapi.Querier, logger *slog.Logger) *App {
	host := hostapi.NewQuerierWrapper(q)
	return &App{
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
		Querier: q,
		Host:    host,
		Babylon: bindings.NewBabylonQuerier(host, bindings.WithLogger(logger)),
	}
}

// ExampleContract returns the address of the example contract deployed
// under label, registering it with the runtime if needed.
func (a *App) ExampleContract(label string) (string, error) {
	if a.exampleContract == nil {
		return "", app.ErrRemoteMode
	}
	return a.exampleContract(label)
}

// Schemas lists every schema the export command writes.
func Schemas() []schema.Entry {
	return append(schema.Catalog(), example.Schemas()...)
}

// current is the global CLI application instance
var current *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	current = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return current
}

// RequireApp returns the global App or ErrNotInitialized.
func RequireApp() (*App, error) {
	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}
