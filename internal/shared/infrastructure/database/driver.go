// Package database hides the difference between the PostgreSQL and SQLite
// backends the stores can run on.
package database

import "strings"

// Driver names a database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// DetectDriver picks a backend from a connection string. An empty string
// selects SQLite so local runs need no configuration.
func DetectDriver(url string) Driver {
	switch {
	case url == "", url == ":memory:":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "file:"),
		strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite
	default:
		return DriverPostgres
	}
}

func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}
