package grpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/chaintest"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/store"
	"github.com/felixgeelhaar/babylon-bindings/internal/host"
	hostgrpc "github.com/felixgeelhaar/babylon-bindings/internal/host/grpc"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

const bufTarget = "passthrough:///bufnet"

func newRouter(t *testing.T) *host.Router {
	t.Helper()
	var g chain.Genesis
	require.NoError(t, json.Unmarshal(chaintest.GenesisJSON(), &g))
	module := chain.NewModule(store.NewMemory(), nil)
	require.NoError(t, module.InitGenesis(context.Background(), &g))
	return host.NewNode(host.NodeConfig{Chain: module, Bank: host.NewBankFromGenesis(&g)}).Router
}

func TestClient_RoundTrip(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	defer goleak.VerifyNone(t, opt)

	lis := bufconn.Listen(1 << 20)
	gs := hostgrpc.NewServer(newRouter(t), nil).NewGRPCServer()
	go func() { _ = gs.Serve(lis) }()
	defer gs.Stop()

	client, err := hostgrpc.Dial(bufTarget, hostgrpc.ClientConfig{CallTimeout: 5 * time.Second},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	defer client.Close()

	ctx := observability.WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, client.Ping(ctx))

	q := bindings.NewBabylonQuerier(hostapi.NewQuerierWrapper(client))
	epoch, err := q.CurrentEpoch(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), epoch)

	header, err := q.BtcHeaderByHeight(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, chaintest.Block1(), *header)

	_, err = q.BtcHeaderByHash(ctx, "zz")
	assert.Equal(t, "contract", hostapi.ErrorKind(err))

	res := client.RawQuery(ctx, []byte(`{"wasm":{"smart":{"contract_addr":"bbn1x","msg":"e30="}}}`))
	require.NotNil(t, res.Err)
	assert.Equal(t, "No such contract: bbn1x", res.Err.Error())

	coins, err := hostapi.NewQuerierWrapper(client).QueryAllBalances(ctx, chaintest.FundedAddress)
	require.NoError(t, err)
	assert.Equal(t, hostapi.Coins(123, "ucosm"), coins)
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestClient_BreakerOpensOnTransportFailures(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	client, err := hostgrpc.Dial(bufTarget, hostgrpc.ClientConfig{
		MaxFailures:    2,
		BreakerTimeout: time.Minute,
		CallTimeout:    2 * time.Second,
		Metrics:        metrics,
	}, grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}))
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	for i := range 3 {
		res := client.RawQuery(ctx, []byte(`{"custom":{"epoch":{}}}`))
		require.NotNil(t, res.Err)
		require.NotNil(t, res.Err.InvalidResponse)
		assert.Equal(t, "system", hostapi.ErrorKind(res.Err))
		if i < 2 {
			assert.Contains(t, res.Err.InvalidResponse.Error, "connection refused")
		} else {
			assert.Contains(t, res.Err.InvalidResponse.Error, gobreaker.ErrOpenState.Error())
		}
	}

	_, err = hostapi.NewQuerierWrapper(client).QueryAllBalances(ctx, chaintest.FundedAddress)
	assert.ErrorContains(t, err, "circuit breaker is open")

	assert.Equal(t, gobreaker.StateOpen, client.State())
	assert.Equal(t, float64(gobreaker.StateOpen),
		metrics.GetGauge(observability.MetricBreakerState, observability.T("target", bufTarget)))
}

func TestJSONCodec(t *testing.T) {
	codec := hostgrpc.JSONCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&hostgrpc.QueryEnvelope{Request: []byte(`{"custom":{}}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"request":"eyJjdXN0b20iOnt9fQ=="}`, string(data))

	var env hostgrpc.QueryEnvelope
	assert.Error(t, codec.Unmarshal([]byte("{"), &env))
}
