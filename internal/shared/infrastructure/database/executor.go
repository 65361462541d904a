package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// Row abstracts pgx.Row and *sql.Row.
type Row interface {
	Scan(dest ...any) error
}

// Rows abstracts pgx.Rows and *sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

// Executor runs statements regardless of the underlying driver. Statements
// use '?' placeholders; call Rebind before handing them to a PostgreSQL
// executor.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Transaction is an Executor that can be committed or rolled back.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection is a database handle that can start transactions.
type Connection interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
	Ping(ctx context.Context) error
	Driver() Driver
}

// Rebind rewrites '?' placeholders into the form driver expects.
// Placeholders inside single-quoted literals are left alone.
func Rebind(driver Driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SQLConnection adapts a *sql.DB to Connection.
type SQLConnection struct {
	db     *sql.DB
	driver Driver
}

// NewSQLConnection wraps db. driver controls placeholder rebinding for
// callers that inspect Driver().
func NewSQLConnection(db *sql.DB, driver Driver) *SQLConnection {
	return &SQLConnection{db: db, driver: driver}
}

// DB returns the underlying handle.
func (c *SQLConnection) DB() *sql.DB {
	return c.db
}

func (c *SQLConnection) Driver() Driver {
	return c.driver
}

func (c *SQLConnection) Close() error {
	return c.db.Close()
}

func (c *SQLConnection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLConnection) BeginTx(ctx context.Context) (Transaction, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (c *SQLConnection) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

func (c *SQLConnection) QueryRow(ctx context.Context, query string, args ...any) Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

func (c *SQLConnection) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(context.Context) error {
	return t.tx.Rollback()
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *sqlTx) QueryRow(ctx context.Context, query string, args ...any) Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
