package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lib/pq"

	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

const (
	stateEpoch     = "epoch"
	stateFinalized = "finalized_epoch"
)

var (
	_ Store         = (*SQL)(nil)
	_ Transactional = (*SQL)(nil)
)

// SQL stores chain state in two tables, {prefix}btc_headers and
// {prefix}chain_state, on sqlite or postgres.
type SQL struct {
	conn    database.Connection
	uow     *database.UnitOfWork
	headers string
	state   string
}

// NewSQL returns a store over conn whose table names start with prefix.
func NewSQL(conn database.Connection, prefix string) *SQL {
	return &SQL{
		conn:    conn,
		uow:     database.NewUnitOfWork(conn),
		headers: pq.QuoteIdentifier(prefix + "btc_headers"),
		state:   pq.QuoteIdentifier(prefix + "chain_state"),
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	height BIGINT PRIMARY KEY,
	hash TEXT NOT NULL UNIQUE,
	version INTEGER NOT NULL,
	prev_blockhash TEXT NOT NULL,
	merkle_root TEXT NOT NULL,
	block_time BIGINT NOT NULL,
	bits BIGINT NOT NULL,
	nonce BIGINT NOT NULL
)`, s.headers),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`, s.state),
	}
	for _, stmt := range ddl {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating chain tables: %w", err)
		}
	}
	return nil
}

// InTx runs fn in one transaction; stores called with its context join it.
func (s *SQL) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.uow.Do(ctx, fn)
}

func (s *SQL) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, s.conn)
}

func (s *SQL) PutHeader(ctx context.Context, hash chainhash.Hash, info bindings.BtcBlockHeaderInfo) error {
	height, err := convert.Uint64ToInt64(info.Height)
	if err != nil {
		return fmt.Errorf("header height: %w", err)
	}
	existing, err := s.hashAt(ctx, height)
	if err != nil {
		return err
	}
	if existing != "" {
		if existing != hash.String() {
			return ErrHeightTaken
		}
		return nil
	}

	h := info.Header
	query := fmt.Sprintf(`INSERT INTO %s (height, hash, version, prev_blockhash, merkle_root, block_time, bits, nonce)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.headers)
	_, err = s.exec(ctx).Exec(ctx, query,
		height, hash.String(), h.Version, h.PrevBlockhash, h.MerkleRoot,
		int64(h.Time), int64(h.Bits), int64(h.Nonce),
	)
	if err != nil {
		return fmt.Errorf("inserting header %d: %w", info.Height, err)
	}
	return nil
}

func (s *SQL) hashAt(ctx context.Context, height int64) (string, error) {
	var hash string
	query := fmt.Sprintf(`SELECT hash FROM %s WHERE height = ?`, s.headers)
	err := s.exec(ctx).QueryRow(ctx, query, height).Scan(&hash)
	if database.IsNoRows(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading header %d: %w", height, err)
	}
	return hash, nil
}

const headerColumns = `height, version, prev_blockhash, merkle_root, block_time, bits, nonce`

// HeaderByHeight returns nil for heights no BIGINT column can hold.
func (s *SQL) HeaderByHeight(ctx context.Context, height uint64) (*bindings.BtcBlockHeaderInfo, error) {
	h, err := convert.Uint64ToInt64(height)
	if err != nil {
		return nil, nil
	}
	return s.selectHeader(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE height = ?`, headerColumns, s.headers), h)
}

func (s *SQL) HeaderByHash(ctx context.Context, hash chainhash.Hash) (*bindings.BtcBlockHeaderInfo, error) {
	return s.selectHeader(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE hash = ?`, headerColumns, s.headers), hash.String())
}

func (s *SQL) Tip(ctx context.Context) (*bindings.BtcBlockHeaderInfo, error) {
	return s.selectHeader(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY height DESC LIMIT 1`, headerColumns, s.headers))
}

func (s *SQL) Base(ctx context.Context) (*bindings.BtcBlockHeaderInfo, error) {
	return s.selectHeader(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY height ASC LIMIT 1`, headerColumns, s.headers))
}

func (s *SQL) selectHeader(ctx context.Context, query string, args ...any) (*bindings.BtcBlockHeaderInfo, error) {
	var (
		height, t, bits, nonce int64
		info                   bindings.BtcBlockHeaderInfo
	)
	err := s.exec(ctx).QueryRow(ctx, query, args...).Scan(
		&height, &info.Header.Version, &info.Header.PrevBlockhash, &info.Header.MerkleRoot,
		&t, &bits, &nonce,
	)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if info.Height, err = convert.Int64ToUint64(height); err != nil {
		return nil, fmt.Errorf("reading header height: %w", err)
	}
	for _, field := range []struct {
		dst *uint32
		src int64
	}{
		{&info.Header.Time, t},
		{&info.Header.Bits, bits},
		{&info.Header.Nonce, nonce},
	} {
		if *field.dst, err = convert.Int64ToUint32(field.src); err != nil {
			return nil, fmt.Errorf("reading header %d: %w", info.Height, err)
		}
	}
	return &info, nil
}

func (s *SQL) SetEpoch(ctx context.Context, epoch uint64) error {
	return s.putState(ctx, stateEpoch, strconv.FormatUint(epoch, 10))
}

func (s *SQL) CurrentEpoch(ctx context.Context) (uint64, error) {
	value, ok, err := s.getState(ctx, stateEpoch)
	if err != nil || !ok {
		return 0, err
	}
	return strconv.ParseUint(value, 10, 64)
}

func (s *SQL) SetFinalizedEpoch(ctx context.Context, info bindings.FinalizedEpochInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return s.putState(ctx, stateFinalized, string(data))
}

func (s *SQL) LatestFinalizedEpoch(ctx context.Context) (*bindings.FinalizedEpochInfo, error) {
	value, ok, err := s.getState(ctx, stateFinalized)
	if err != nil || !ok {
		return nil, err
	}
	var info bindings.FinalizedEpochInfo
	if err := json.Unmarshal([]byte(value), &info); err != nil {
		return nil, fmt.Errorf("decoding finalized epoch: %w", err)
	}
	return &info, nil
}

func (s *SQL) putState(ctx context.Context, name, value string) error {
	query := fmt.Sprintf(`INSERT INTO %s (name, value) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value`, s.state)
	if _, err := s.exec(ctx).Exec(ctx, query, name, value); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (s *SQL) getState(ctx context.Context, name string) (string, bool, error) {
	var value string
	query := fmt.Sprintf(`SELECT value FROM %s WHERE name = ?`, s.state)
	err := s.exec(ctx).QueryRow(ctx, query, name).Scan(&value)
	if database.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", name, err)
	}
	return value, true, nil
}
