package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/adapter/cli/clitest"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/chaintest"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi/hostapitest"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

func newTools(t *testing.T) (*Tools, *cli.App) {
	t.Helper()
	app := clitest.NewApp(t, clitest.Config(t))
	tools, err := NewTools(ToolDependencies{App: app})
	require.NoError(t, err)
	return tools, app
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools:     true,
			Resources: true,
		},
	})

	app := &cli.App{}
	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: app}))
	require.NoError(t, RegisterResources(srv, ToolDependencies{App: app}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool, len(tools))
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, want := range []string{
		"cli.health",
		"babylon.epoch",
		"babylon.finalized_epoch",
		"babylon.btc_tip",
		"babylon.btc_base_header",
		"babylon.btc_header_by_height",
		"babylon.btc_header_by_hash",
		"babylon.raw_query",
		"bank.balances",
		"contract.owner",
		"contract.chain",
	} {
		assert.True(t, names[want], "%s should be registered", want)
	}
}

func TestRegisterCLITools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterCLITools(srv, ToolDependencies{}))
	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
}

func TestTools_Babylon(t *testing.T) {
	ctx := context.Background()
	tools, _ := newTools(t)

	epoch, err := tools.Epoch(ctx, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, uint64(12), epoch.Epoch)

	finalized, err := tools.FinalizedEpoch(ctx, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), finalized.EpochInfo.LastBlockHeight)

	tip, err := tools.BtcTip(ctx, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, chaintest.Block2(), tip.HeaderInfo)

	base, err := tools.BtcBaseHeader(ctx, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, chaintest.Block0(), base.HeaderInfo)

	byHeight, err := tools.BtcHeaderByHeight(ctx, heightInput{Height: 1})
	require.NoError(t, err)
	require.NotNil(t, byHeight.HeaderInfo)
	assert.Equal(t, chaintest.Block1(), *byHeight.HeaderInfo)

	missing, err := tools.BtcHeaderByHeight(ctx, heightInput{Height: 3})
	require.NoError(t, err)
	assert.Nil(t, missing.HeaderInfo)

	byHash, err := tools.BtcHeaderByHash(ctx, hashInput{Hash: chaintest.GenesisHash})
	require.NoError(t, err)
	require.NotNil(t, byHash.HeaderInfo)
	assert.Equal(t, uint64(0), byHash.HeaderInfo.Height)

	_, err = tools.BtcHeaderByHash(ctx, hashInput{Hash: "xyz"})
	assert.Equal(t, "contract", hostapi.ErrorKind(err))

	status, err := tools.LightClient(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), status.Depth)
}

func TestTools_RawQueryAndBank(t *testing.T) {
	ctx := context.Background()
	tools, _ := newTools(t)

	out, err := tools.RawQuery(ctx, rawQueryInput{Request: json.RawMessage(`{"custom":{"btc_header_by_height":{"height":2}}}`)})
	require.NoError(t, err)
	var resp bindings.BtcHeaderQueryResponse
	require.NoError(t, json.Unmarshal(out.Data, &resp))
	require.NotNil(t, resp.HeaderInfo)
	assert.Equal(t, uint64(2), resp.HeaderInfo.Height)

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	var wire struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(encoded, &wire))
	assert.Equal(t, base64.StdEncoding.EncodeToString(out.Data), wire.Data)

	_, err = tools.RawQuery(ctx, rawQueryInput{Request: json.RawMessage(`{"wasm":{}}`)})
	assert.Equal(t, "system", hostapi.ErrorKind(err))

	_, err = tools.RawQuery(ctx, rawQueryInput{})
	assert.EqualError(t, err, "request is required")

	all, err := tools.Balances(ctx, balanceInput{Address: chaintest.FundedAddress})
	require.NoError(t, err)
	assert.Equal(t, hostapi.Coins(123, "ucosm"), all.Amount)

	one, err := tools.Balances(ctx, balanceInput{Address: chaintest.FundedAddress, Denom: "ucosm"})
	require.NoError(t, err)
	assert.Equal(t, hostapi.Coins(123, "ucosm"), one.Amount)
}

func TestTools_RawQueryNonJSONReply(t *testing.T) {
	stored := []byte{0xff, 0x00, 'k', 0x7f}
	mock := hostapitest.NewMockQuerier(nil)
	mock.WasmFn = func(_ context.Context, q hostapi.WasmQuery) hostapi.SystemResult {
		require.NotNil(t, q.Raw)
		return hostapi.SystemOk(stored)
	}
	tools, err := NewTools(ToolDependencies{App: &cli.App{Host: hostapi.NewQuerierWrapper(mock)}})
	require.NoError(t, err)

	out, err := tools.RawQuery(context.Background(), rawQueryInput{
		Request: json.RawMessage(`{"wasm":{"raw":{"contract_addr":"bbn1x","key":"Y29uZmln"}}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, hostapi.Binary(stored), out.Data)

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":"/wBrfw=="}`, string(encoded))
}

func TestTools_Contract(t *testing.T) {
	ctx := context.Background()
	tools, app := newTools(t)

	addr, err := app.ExampleContract(defaultLabel)
	require.NoError(t, err)
	_, err = app.Executor.Instantiate(ctx, addr, sdk.MessageInfo{Sender: "bbn1creator"}, json.RawMessage(`{}`))
	require.NoError(t, err)

	owner, err := tools.ContractOwner(ctx, contractInput{})
	require.NoError(t, err)
	assert.Equal(t, "bbn1creator", owner.Owner)

	epoch, err := tools.ContractEpoch(ctx, contractInput{Address: addr})
	require.NoError(t, err)
	assert.Equal(t, uint64(12), epoch.Epoch)

	chain, err := tools.ContractChain(ctx, contractChainInput{Request: hostapi.NewAllBalancesQuery(chaintest.FundedAddress)})
	require.NoError(t, err)
	balances, err := hostapi.FromBinary[hostapi.AllBalanceResponse](chain.Data)
	require.NoError(t, err)
	assert.Equal(t, hostapi.Coins(123, "ucosm"), balances.Amount)

	_, err = tools.ContractChain(ctx, contractChainInput{})
	assert.ErrorContains(t, err, "request:")

	_, err = tools.ContractOwner(ctx, contractInput{Label: "never-instantiated"})
	assert.Equal(t, "contract", hostapi.ErrorKind(err))
}

func TestTools_Health(t *testing.T) {
	tools, _ := newTools(t)

	report, err := tools.Health(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, observability.HealthStatusHealthy, report.Status)
}
