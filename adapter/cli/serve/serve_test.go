package serve

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli/clitest"
	hostgrpc "github.com/felixgeelhaar/babylon-bindings/internal/host/grpc"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
	"github.com/felixgeelhaar/babylon-bindings/pkg/config"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

func TestServeGRPC_AnswersUntilCanceled(t *testing.T) {
	app := clitest.NewApp(t, clitest.Config(t))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveListener(ctx, app, lis) }()

	cfg := hostgrpc.DefaultClientConfig()
	cfg.Logger = clitest.Logger()
	client, err := hostgrpc.Dial(lis.Addr().String(), cfg)
	require.NoError(t, err)
	defer client.Close()

	q := bindings.NewBabylonQuerier(hostapi.NewQuerierWrapper(client))
	epoch, err := q.CurrentEpoch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), epoch)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeGRPC_BadAddress(t *testing.T) {
	app := clitest.NewApp(t, clitest.Config(t))

	err := ServeGRPC(context.Background(), app, "not-an-address")
	assert.ErrorContains(t, err, "listening on not-an-address")
}

func TestListenAddr(t *testing.T) {
	cfg := &config.Config{GRPCAddr: "0.0.0.0:1", MCPAddr: "0.0.0.0:2"}

	assert.Equal(t, "flag:3", listenAddr("flag:3", cfg, grpcAddr))
	assert.Equal(t, "0.0.0.0:1", listenAddr("", cfg, grpcAddr))
	assert.Equal(t, "0.0.0.0:2", listenAddr("", cfg, mcpAddr))
	assert.Equal(t, "127.0.0.1:9090", listenAddr("", nil, grpcAddr))
	assert.Equal(t, "127.0.0.1:8082", listenAddr("", &config.Config{}, mcpAddr))
}
