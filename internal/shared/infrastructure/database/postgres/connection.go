// Package postgres registers the pgx-backed PostgreSQL backend for the
// chain and contract stores. The stores write '?' placeholders; every
// statement is rebound to $n before it reaches pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database"
)

// ErrNoLastInsertID is returned by Result.LastInsertId; PostgreSQL reports
// generated keys through RETURNING instead.
var ErrNoLastInsertID = errors.New("postgres: LastInsertId is not supported, use RETURNING")

func init() {
	database.RegisterPostgresDriver(NewConnection)
}

// querier is the statement surface shared by pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pool interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type tx interface {
	querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection serves database.Connection from a pgx pool.
type Connection struct {
	pool pool
}

// NewConnection opens a pool on cfg.URL. cfg.MaxConns, when set, caps it.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	if cfg.URL == "" {
		return nil, errors.New("postgres: DATABASE_URL is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing DATABASE_URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		maxConns, err := convert.IntToInt32(cfg.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("postgres: max connections: %w", err)
		}
		poolConfig.MaxConns = maxConns
	}

	p, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	return &Connection{pool: p}, nil
}

func (c *Connection) Driver() database.Driver {
	return database.DriverPostgres
}

func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

// Ping backs the "database" health check.
func (c *Connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// BeginTx starts the transaction a UnitOfWork carries in its context.
func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	t, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	return &Transaction{tx: t}, nil
}

func (c *Connection) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	return exec(ctx, c.pool, query, args)
}

func (c *Connection) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return c.pool.QueryRow(ctx, rebind(query), args...)
}

func (c *Connection) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return runQuery(ctx, c.pool, query, args)
}

// Transaction is a pgx transaction seen as database.Transaction.
type Transaction struct {
	tx tx
}

func (t *Transaction) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Transaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (t *Transaction) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	return exec(ctx, t.tx, query, args)
}

func (t *Transaction) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.tx.QueryRow(ctx, rebind(query), args...)
}

func (t *Transaction) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return runQuery(ctx, t.tx, query, args)
}

func exec(ctx context.Context, q querier, query string, args []any) (database.Result, error) {
	tag, err := q.Exec(ctx, rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return result{tag: tag}, nil
}

func runQuery(ctx context.Context, q querier, query string, args []any) (database.Rows, error) {
	r, err := q.Query(ctx, rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return rows{r}, nil
}

func rebind(query string) string {
	return database.Rebind(database.DriverPostgres, query)
}

type result struct {
	tag pgconn.CommandTag
}

func (r result) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}

func (r result) LastInsertId() (int64, error) {
	return 0, ErrNoLastInsertID
}

type rows struct {
	pgx.Rows
}

func (r rows) Close() error {
	r.Rows.Close()
	return nil
}
