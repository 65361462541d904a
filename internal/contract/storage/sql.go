package storage

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database"
)

// DefaultTable is the table SQL-backed contract state lives in.
const DefaultTable = "contract_state"

// SQL stores contract state in a relational table keyed by
// (contract_addr, state_key). Writes join a transaction carried in the
// context when there is one.
type SQL struct {
	conn  database.Connection
	uow   *database.UnitOfWork
	table string
}

// NewSQL returns a store over conn. An empty table selects DefaultTable.
func NewSQL(conn database.Connection, table string) *SQL {
	if table == "" {
		table = DefaultTable
	}
	return &SQL{
		conn:  conn,
		uow:   database.NewUnitOfWork(conn),
		table: pq.QuoteIdentifier(table),
	}
}

// InTx runs fn in one transaction; contract stores called with its context join it.
func (s *SQL) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.uow.Do(ctx, fn)
}

// EnsureSchema creates the state table if it does not exist.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	blob := "BLOB"
	if s.conn.Driver() == database.DriverPostgres {
		blob = "BYTEA"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	contract_addr TEXT NOT NULL,
	state_key %s NOT NULL,
	state_value %s NOT NULL,
	PRIMARY KEY (contract_addr, state_key)
)`, s.table, blob, blob)
	if _, err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating %s: %w", s.table, err)
	}
	return nil
}

func (s *SQL) ForContract(addr string) sdk.Storage {
	return &sqlStore{parent: s, addr: addr}
}

type sqlStore struct {
	parent *SQL
	addr   string
}

func (s *sqlStore) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, s.parent.conn)
}

func (s *sqlStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT state_value FROM %s WHERE contract_addr = ? AND state_key = ?`, s.parent.table)

	var value []byte
	err := s.exec(ctx).QueryRow(ctx, query, s.addr, key).Scan(&value)
	if database.IsNoRows(err) {
		return nil, sdk.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading contract state: %w", err)
	}
	return value, nil
}

func (s *sqlStore) Set(ctx context.Context, key, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := checkValue(value); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	query := fmt.Sprintf(`INSERT INTO %s (contract_addr, state_key, state_value) VALUES (?, ?, ?)
ON CONFLICT (contract_addr, state_key) DO UPDATE SET state_value = excluded.state_value`, s.parent.table)

	if _, err := s.exec(ctx).Exec(ctx, query, s.addr, key, value); err != nil {
		return fmt.Errorf("writing contract state: %w", err)
	}
	return nil
}

func (s *sqlStore) Remove(ctx context.Context, key []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE contract_addr = ? AND state_key = ?`, s.parent.table)
	if _, err := s.exec(ctx).Exec(ctx, query, s.addr, key); err != nil {
		return fmt.Errorf("removing contract state: %w", err)
	}
	return nil
}
