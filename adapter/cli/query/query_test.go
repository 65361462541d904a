package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/adapter/cli/clitest"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/chaintest"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return clitest.Run(t, append([]string{"query"}, args...), NewCmd())
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestQueryCommands_Babylon(t *testing.T) {
	clitest.NewApp(t, clitest.Config(t))

	out, err := run(t, "epoch")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), decode[bindings.CurrentEpochResponse](t, out).Epoch)

	out, err = run(t, "finalized-epoch")
	require.NoError(t, err)
	assert.Equal(t,
		bindings.FinalizedEpochInfo{EpochNumber: 10, LastBlockHeight: 1000},
		decode[bindings.LatestFinalizedEpochInfoResponse](t, out).EpochInfo,
	)

	out, err = run(t, "btc-tip")
	require.NoError(t, err)
	assert.Equal(t, chaintest.Block2(), decode[bindings.BtcTipResponse](t, out).HeaderInfo)

	out, err = run(t, "btc-base")
	require.NoError(t, err)
	assert.Equal(t, chaintest.Block0(), decode[bindings.BtcBaseHeaderResponse](t, out).HeaderInfo)

	out, err = run(t, "btc-header", "--height", "1")
	require.NoError(t, err)
	header := decode[bindings.BtcHeaderQueryResponse](t, out).HeaderInfo
	require.NotNil(t, header)
	assert.Equal(t, chaintest.Block1(), *header)

	out, err = run(t, "btc-header", "--hash", chaintest.Block1Hash)
	require.NoError(t, err)
	header = decode[bindings.BtcHeaderQueryResponse](t, out).HeaderInfo
	require.NotNil(t, header)
	assert.Equal(t, uint64(1), header.Height)

	out, err = run(t, "btc-header", "--height", "99")
	require.NoError(t, err)
	assert.JSONEq(t, `{"header_info":null}`, out)
}

func TestQueryCommands_BtcHeaderFlags(t *testing.T) {
	clitest.NewApp(t, clitest.Config(t))

	_, err := run(t, "btc-header")
	assert.ErrorContains(t, err, "exactly one of --height or --hash")

	_, err = run(t, "btc-header", "--height", "0", "--hash", chaintest.GenesisHash)
	assert.ErrorContains(t, err, "exactly one of --height or --hash")
}

func TestQueryCommands_ErrorKinds(t *testing.T) {
	clitest.NewApp(t, clitest.Config(t))

	_, err := run(t, "btc-header", "--hash", "zz")
	assert.ErrorContains(t, err, "contract error:")
	_, ok := hostapi.IsContractError(err)
	assert.True(t, ok)

	_, err = run(t, "raw", `{"custom":{"ping":{}}}`)
	assert.ErrorContains(t, err, "system error: Cannot parse request")
}

func TestQueryCommands_RawAndBank(t *testing.T) {
	clitest.NewApp(t, clitest.Config(t))

	out, err := run(t, "raw", `{"custom":{"epoch":{}}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"epoch":12}`, out)

	out, err = run(t, "balance", chaintest.FundedAddress)
	require.NoError(t, err)
	assert.Equal(t, hostapi.Coins(123, "ucosm"), decode[hostapi.AllBalanceResponse](t, out).Amount)

	out, err = run(t, "balance", chaintest.FundedAddress, "--denom", "ubbn")
	require.NoError(t, err)
	assert.Equal(t, hostapi.NewCoin(0, "ubbn"), decode[hostapi.BalanceResponse](t, out).Amount)
}

func TestQueryCommands_RequireApp(t *testing.T) {
	cli.SetApp(nil)

	_, err := run(t, "epoch")
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}
