package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database/sqlite"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, f Factory) {
	t.Helper()
	ctx := context.Background()
	a := f.ForContract("bbn1contracta")
	b := f.ForContract("bbn1contractb")

	_, err := a.Get(ctx, []byte("config"))
	assert.ErrorIs(t, err, sdk.ErrNotFound)

	require.NoError(t, a.Set(ctx, []byte("config"), []byte(`{"owner":"creator"}`)))
	v, err := a.Get(ctx, []byte("config"))
	require.NoError(t, err)
	assert.Equal(t, `{"owner":"creator"}`, string(v))

	_, err = b.Get(ctx, []byte("config"))
	assert.ErrorIs(t, err, sdk.ErrNotFound, "contracts must not share state")

	require.NoError(t, a.Set(ctx, []byte("config"), []byte(`{"owner":"other"}`)))
	v, err = a.Get(ctx, []byte("config"))
	require.NoError(t, err)
	assert.Equal(t, `{"owner":"other"}`, string(v))

	require.NoError(t, a.Remove(ctx, []byte("config")))
	_, err = a.Get(ctx, []byte("config"))
	assert.ErrorIs(t, err, sdk.ErrNotFound)

	assert.ErrorIs(t, a.Set(ctx, nil, []byte("x")), ErrEmptyKey)
	assert.ErrorIs(t, a.Set(ctx, []byte("k"), make([]byte, ValueMaxSize+1)), ErrValueTooBig)
	_, err = a.Get(ctx, make([]byte, KeyMaxLength+1))
	assert.ErrorIs(t, err, ErrKeyTooLong)
}

func TestMemory_Store(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQL_StoreOnSQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.OpenMemory(ctx)
	require.NoError(t, err)
	defer conn.Close()

	f, err := NewFactory(ctx, KindSQL, Backends{DB: conn})
	require.NoError(t, err)
	exerciseStore(t, f)
}

func TestSQL_GetPropagatesDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state_value FROM "contract_state" WHERE contract_addr = ? AND state_key = ?`)).
		WithArgs("bbn1c", []byte("config")).
		WillReturnError(assert.AnError)

	store := NewSQL(database.NewSQLConnection(db, database.DriverSQLite), "").ForContract("bbn1c")
	_, err = store.Get(context.Background(), []byte("config"))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, sdk.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_QuotesTableName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "weird""name" WHERE contract_addr = ? AND state_key = ?`)).
		WithArgs("bbn1c", []byte("k")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewSQL(database.NewSQLConnection(db, database.DriverSQLite), `weird"name`).ForContract("bbn1c")
	require.NoError(t, store.Remove(context.Background(), []byte("k")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "contract:bbn1c:state:636f6e666967", RedisKey("bbn1c", []byte("config")))
}

func TestNewFactory_FallsBackToMemory(t *testing.T) {
	ctx := context.Background()

	f, err := NewFactory(ctx, KindRedis, Backends{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, f)

	f, err = NewFactory(ctx, KindSQL, Backends{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, f)

	_, err = NewFactory(ctx, "etcd", Backends{})
	assert.Error(t, err)
}

func TestCache_CommitAndDiscard(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	backing := mem.ForContract("bbn1c")
	require.NoError(t, backing.Set(ctx, []byte("keep"), []byte("1")))

	cache := NewCache(backing)
	require.NoError(t, cache.Set(ctx, []byte("config"), []byte("v")))
	require.NoError(t, cache.Remove(ctx, []byte("keep")))

	v, err := cache.Get(ctx, []byte("config"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
	_, err = cache.Get(ctx, []byte("keep"))
	assert.ErrorIs(t, err, sdk.ErrNotFound)

	_, err = backing.Get(ctx, []byte("config"))
	assert.ErrorIs(t, err, sdk.ErrNotFound, "writes must stay pending until commit")

	cache.Discard()
	assert.Zero(t, cache.Pending())
	v, err = cache.Get(ctx, []byte("keep"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	require.NoError(t, cache.Set(ctx, []byte("config"), []byte("v2")))
	require.NoError(t, cache.Commit(ctx))
	v, err = backing.Get(ctx, []byte("config"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(v))
	assert.Equal(t, 2, mem.Len("bbn1c"))
}

func TestCache_CommitRollsBackOnSQLFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	insert := regexp.QuoteMeta(`INSERT INTO "contract_state" (contract_addr, state_key, state_value)`)
	mock.ExpectBegin()
	mock.ExpectExec(insert).
		WithArgs("bbn1c", []byte("a"), []byte("1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).
		WithArgs("bbn1c", []byte("b"), []byte("2")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	ctx := context.Background()
	cache := NewCache(NewSQL(database.NewSQLConnection(db, database.DriverSQLite), "").ForContract("bbn1c"))
	require.NoError(t, cache.Set(ctx, []byte("b"), []byte("2")))
	require.NoError(t, cache.Set(ctx, []byte("a"), []byte("1")))

	err = cache.Commit(ctx)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, cache.Pending(), "a failed commit keeps every write pending")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_CommitUsesOneSQLTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "contract_state"`)).
		WithArgs("bbn1c", []byte("config"), []byte("v")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "contract_state" WHERE contract_addr = ? AND state_key = ?`)).
		WithArgs("bbn1c", []byte("old")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	cache := NewCache(NewSQL(database.NewSQLConnection(db, database.DriverSQLite), "").ForContract("bbn1c"))
	require.NoError(t, cache.Set(ctx, []byte("config"), []byte("v")))
	require.NoError(t, cache.Remove(ctx, []byte("old")))

	require.NoError(t, cache.Commit(ctx))
	assert.Zero(t, cache.Pending())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemory_WriteBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	store := mem.ForContract("bbn1c").(Batcher)

	err := store.WriteBatch(ctx, []Write{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: make([]byte, ValueMaxSize+1)},
	})
	assert.ErrorIs(t, err, ErrValueTooBig)
	assert.Zero(t, mem.Len("bbn1c"))

	require.NoError(t, store.WriteBatch(ctx, []Write{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("a"), Delete: true},
	}))
	assert.Equal(t, 1, mem.Len("bbn1c"))
}
