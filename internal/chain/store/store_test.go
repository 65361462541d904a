package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/chaintest"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/store"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

func hashOf(t *testing.T, info bindings.BtcBlockHeaderInfo) chainhash.Hash {
	t.Helper()
	h, err := chain.HeaderHash(info.Header)
	require.NoError(t, err)
	return h
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	tip, err := s.Tip(ctx)
	require.NoError(t, err)
	assert.Nil(t, tip)
	base, err := s.Base(ctx)
	require.NoError(t, err)
	assert.Nil(t, base)
	epoch, err := s.CurrentEpoch(ctx)
	require.NoError(t, err)
	assert.Zero(t, epoch)
	finalized, err := s.LatestFinalizedEpoch(ctx)
	require.NoError(t, err)
	assert.Nil(t, finalized)

	// Insert out of order; tip and base follow heights, not insertion.
	for _, info := range []bindings.BtcBlockHeaderInfo{chaintest.Block1(), chaintest.Block2(), chaintest.Block0()} {
		require.NoError(t, s.PutHeader(ctx, hashOf(t, info), info))
	}
	require.NoError(t, s.PutHeader(ctx, hashOf(t, chaintest.Block1()), chaintest.Block1()), "re-putting the same header is a no-op")
	assert.ErrorIs(t, s.PutHeader(ctx, hashOf(t, chaintest.Block2()), withHeight(chaintest.Block2(), 1)), store.ErrHeightTaken)

	tip, err = s.Tip(ctx)
	require.NoError(t, err)
	require.NotNil(t, tip)
	assert.Equal(t, chaintest.Block2(), *tip)

	base, err = s.Base(ctx)
	require.NoError(t, err)
	require.NotNil(t, base)
	assert.Equal(t, chaintest.Block0(), *base)

	got, err := s.HeaderByHeight(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, chaintest.Block1(), *got)

	got, err = s.HeaderByHeight(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)

	genesis, err := chainhash.NewHashFromStr(chaintest.GenesisHash)
	require.NoError(t, err)
	got, err = s.HeaderByHash(ctx, *genesis)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(0), got.Height)

	got, err = s.HeaderByHash(ctx, chainhash.Hash{})
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SetEpoch(ctx, 7))
	require.NoError(t, s.SetEpoch(ctx, 8))
	epoch, err = s.CurrentEpoch(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), epoch)

	want := bindings.FinalizedEpochInfo{EpochNumber: 6, LastBlockHeight: 600}
	require.NoError(t, s.SetFinalizedEpoch(ctx, want))
	finalized, err = s.LatestFinalizedEpoch(ctx)
	require.NoError(t, err)
	require.NotNil(t, finalized)
	assert.Equal(t, want, *finalized)
}

func withHeight(info bindings.BtcBlockHeaderInfo, height uint64) bindings.BtcBlockHeaderInfo {
	info.Height = height
	return info
}

func TestMemory_Store(t *testing.T) {
	exerciseStore(t, store.NewMemory())
}

func TestSQL_StoreOnSQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.OpenMemory(ctx)
	require.NoError(t, err)
	defer conn.Close()

	s, err := store.Open(ctx, store.KindSQL, store.Backends{DB: conn, Prefix: "test_"})
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestSQL_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.OpenMemory(ctx)
	require.NoError(t, err)
	defer conn.Close()

	s := store.NewSQL(conn, "")
	require.NoError(t, s.EnsureSchema(ctx))

	boom := errors.New("boom")
	err = s.InTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.SetEpoch(ctx, 99))
		require.NoError(t, s.PutHeader(ctx, hashOf(t, chaintest.Block0()), chaintest.Block0()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	epoch, err := s.CurrentEpoch(ctx)
	require.NoError(t, err)
	assert.Zero(t, epoch)
	tip, err := s.Tip(ctx)
	require.NoError(t, err)
	assert.Nil(t, tip)
}

func TestSQL_PropagatesDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "chain_state" WHERE name = ?`)).
		WithArgs("epoch").
		WillReturnError(errors.New("disk I/O error"))

	s := store.NewSQL(database.NewSQLConnection(db, database.DriverSQLite), "")
	_, err = s.CurrentEpoch(context.Background())
	assert.ErrorContains(t, err, "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := store.Open(ctx, store.KindMemory, store.Backends{})
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, s)

	_, err = store.Open(ctx, store.KindSQL, store.Backends{})
	assert.Error(t, err)
	_, err = store.Open(ctx, store.KindRedis, store.Backends{})
	assert.Error(t, err)
	_, err = store.Open(ctx, "etcd", store.Backends{})
	assert.ErrorContains(t, err, `unknown chain store "etcd"`)
}
