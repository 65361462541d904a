package chain_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/chaintest"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/store"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

func TestHeaderHash_MainnetBlocks(t *testing.T) {
	h, err := chain.HeaderHash(chaintest.Block0().Header)
	require.NoError(t, err)
	assert.Equal(t, chaintest.GenesisHash, h.String())

	h, err = chain.HeaderHash(chaintest.Block1().Header)
	require.NoError(t, err)
	assert.Equal(t, chaintest.Block1Hash, h.String())

	h, err = chain.HeaderHash(chaintest.Block2().Header)
	require.NoError(t, err)
	assert.Equal(t, "000000006a625f06636b8bb6ac7b960a8d03705d1ace08b1a19da3fdcc99ddbd", h.String())
}

func TestParseHash(t *testing.T) {
	h, err := chain.ParseHash(chaintest.GenesisHash)
	require.NoError(t, err)
	assert.Equal(t, chaintest.GenesisHash, h.String())

	for _, bad := range []string{"", "00", "not-hex", chaintest.GenesisHash + "00", "zz" + chaintest.GenesisHash[2:]} {
		_, err := chain.ParseHash(bad)
		assert.ErrorIs(t, err, chain.ErrInvalidHash, bad)
	}
}

func bootstrapped(t *testing.T) *chain.Module {
	t.Helper()
	m := chain.NewModule(store.NewMemory(), nil)

	var g chain.Genesis
	g.Epoch = 12
	g.FinalizedEpoch = &bindings.FinalizedEpochInfo{EpochNumber: 10, LastBlockHeight: 1000}
	g.Headers = chaintest.Headers()
	require.NoError(t, m.InitGenesis(context.Background(), &g))
	return m
}

func TestModule_Query(t *testing.T) {
	ctx := context.Background()
	m := bootstrapped(t)

	tests := []struct {
		name  string
		query bindings.BabylonQuery
		want  any
	}{
		{"epoch", bindings.NewEpochQuery(), bindings.CurrentEpochResponse{Epoch: 12}},
		{"finalized", bindings.NewLatestFinalizedEpochInfoQuery(), bindings.LatestFinalizedEpochInfoResponse{
			EpochInfo: bindings.FinalizedEpochInfo{EpochNumber: 10, LastBlockHeight: 1000},
		}},
		{"tip", bindings.NewBtcTipQuery(), bindings.BtcTipResponse{HeaderInfo: chaintest.Block2()}},
		{"base", bindings.NewBtcBaseHeaderQuery(), bindings.BtcBaseHeaderResponse{HeaderInfo: chaintest.Block0()}},
		{"by height", bindings.NewBtcHeaderByHeightQuery(1), bindings.BtcHeaderQueryResponse{HeaderInfo: ptr(chaintest.Block1())}},
		{"above tip", bindings.NewBtcHeaderByHeightQuery(3), bindings.BtcHeaderQueryResponse{}},
		{"by hash", bindings.NewBtcHeaderByHashQuery(chaintest.Block1Hash), bindings.BtcHeaderQueryResponse{HeaderInfo: ptr(chaintest.Block1())}},
		{"unknown hash", bindings.NewBtcHeaderByHashQuery("00000000000000000000000000000000000000000000000000000000deadbeef"), bindings.BtcHeaderQueryResponse{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Query(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			bound, ok := bindings.ResponseTypeFor(tt.query.Tag())
			require.True(t, ok)
			assert.Equal(t, bound, reflect.TypeOf(got))
		})
	}
}

func TestModule_QueryErrors(t *testing.T) {
	ctx := context.Background()

	_, err := bootstrapped(t).Query(ctx, bindings.NewBtcHeaderByHashQuery("not-hex"))
	assert.ErrorIs(t, err, chain.ErrInvalidHash)
	assert.True(t, chain.IsQueryError(err))

	_, err = bootstrapped(t).Query(ctx, bindings.BabylonQuery{})
	assert.ErrorIs(t, err, bindings.ErrUnknownQuery)

	empty := chain.NewModule(store.NewMemory(), nil)
	for _, q := range []bindings.BabylonQuery{
		bindings.NewBtcTipQuery(),
		bindings.NewBtcBaseHeaderQuery(),
		bindings.NewLatestFinalizedEpochInfoQuery(),
	} {
		_, err := empty.Query(ctx, q)
		assert.ErrorIs(t, err, chain.ErrNotBootstrapped, q.Tag())
	}

	got, err := empty.Query(ctx, bindings.NewBtcHeaderByHeightQuery(0))
	require.NoError(t, err)
	assert.Equal(t, bindings.BtcHeaderQueryResponse{}, got)
}

func TestLoadGenesis_IntoSQLStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, chaintest.GenesisJSON(), 0o600))

	g, err := chain.LoadGenesis(path)
	require.NoError(t, err)
	require.Len(t, g.Balances, 1)
	assert.Equal(t, chaintest.FundedAddress, g.Balances[0].Address)

	conn, err := sqlite.OpenMemory(ctx)
	require.NoError(t, err)
	defer conn.Close()
	s, err := store.Open(ctx, store.KindSQL, store.Backends{DB: conn})
	require.NoError(t, err)

	m := chain.NewModule(s, nil)
	require.NoError(t, m.InitGenesis(ctx, g))

	got, err := m.Query(ctx, bindings.NewBtcTipQuery())
	require.NoError(t, err)
	assert.Equal(t, bindings.BtcTipResponse{HeaderInfo: chaintest.Block2()}, got)
}

func TestGenesis_Validate(t *testing.T) {
	dup := chain.Genesis{Headers: []bindings.BtcBlockHeaderInfo{chaintest.Block0(), chaintest.Block0()}}
	assert.ErrorContains(t, dup.Validate(), "duplicate header at height 0")

	bad := chaintest.Block1()
	bad.Header.MerkleRoot = "xyz"
	badHash := chain.Genesis{Headers: []bindings.BtcBlockHeaderInfo{bad}}
	assert.ErrorIs(t, badHash.Validate(), chain.ErrInvalidHash)

	ahead := chain.Genesis{Epoch: 1, FinalizedEpoch: &bindings.FinalizedEpochInfo{EpochNumber: 2}}
	assert.ErrorContains(t, ahead.Validate(), "ahead of current epoch")

	_, err := chain.LoadGenesis(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }

