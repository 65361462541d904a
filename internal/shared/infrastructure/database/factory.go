package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver Driver

	// URL is the PostgreSQL connection string.
	URL string

	// SQLitePath is the database file used with DriverSQLite. Defaults to
	// ~/.bbnbind/state.db; ":memory:" keeps everything in memory.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// NewConnection opens a connection for cfg.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}

	switch driver {
	case DriverPostgres:
		if newPostgresConnection == nil {
			return nil, fmt.Errorf("postgres driver not registered")
		}
		return newPostgresConnection(ctx, cfg)
	case DriverSQLite:
		if newSQLiteConnection == nil {
			return nil, fmt.Errorf("sqlite driver not registered")
		}
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
		}
		return newSQLiteConnection(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// DefaultSQLitePath returns ~/.bbnbind/state.db.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".bbnbind", "state.db")
}

// SQLitePathFromURL strips a sqlite:// scheme. It returns "" for an empty URL.
func SQLitePathFromURL(url string) string {
	const scheme = "sqlite://"
	if len(url) > len(scheme) && url[:len(scheme)] == scheme {
		return url[len(scheme):]
	}
	return url
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Both factories are registered by the driver packages' init functions.
var (
	newPostgresConnection func(ctx context.Context, cfg Config) (Connection, error)
	newSQLiteConnection   func(ctx context.Context, cfg Config) (Connection, error)
)

func RegisterPostgresDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newPostgresConnection = fn
}

func RegisterSQLiteDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newSQLiteConnection = fn
}
