package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/storage"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi/hostapitest"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

var counter = sdk.NewItem[uint64]("count")

// counterContract stores its instantiate message and answers a few queries.
type counterContract struct {
	caps     []sdk.Capability
	failInit bool
}

func (c *counterContract) Name() string { return "counter" }

func (c *counterContract) Capabilities() []sdk.Capability { return c.caps }

func (c *counterContract) Instantiate(ctx context.Context, deps sdk.DepsMut, _ sdk.Env, _ sdk.MessageInfo, msg json.RawMessage) (*sdk.Response, error) {
	var init struct {
		Start uint64 `json:"start"`
	}
	if err := json.Unmarshal(msg, &init); err != nil {
		return nil, err
	}
	if err := counter.Save(ctx, deps.Storage, init.Start); err != nil {
		return nil, err
	}
	if c.failInit {
		return nil, errors.New("refusing to start")
	}
	return sdk.NewResponse().AddAttribute("method", "instantiate"), nil
}

func (c *counterContract) Query(ctx context.Context, deps sdk.Deps, env sdk.Env, msg json.RawMessage) (hostapi.Binary, error) {
	var q struct {
		Count *struct{}       `json:"count"`
		Chain json.RawMessage `json:"chain"`
		Self  *struct{}       `json:"self"`
	}
	if err := json.Unmarshal(msg, &q); err != nil {
		return nil, err
	}
	switch {
	case q.Count != nil:
		n, err := counter.Load(ctx, deps.Storage)
		if err != nil {
			return nil, err
		}
		return hostapi.ToBinary(n)
	case q.Chain != nil:
		return deps.Querier.RawQueryBytes(ctx, q.Chain)
	case q.Self != nil:
		req, err := hostapi.NewSmartQuery(env.Contract.Address, map[string]any{"self": struct{}{}})
		if err != nil {
			return nil, err
		}
		return deps.Querier.RawQuery(ctx, req)
	}
	return nil, sdk.ErrUnknownMessage
}

type fixture struct {
	store    *storage.Memory
	sandbox  *Sandbox
	registry *Registry
	exec     *Executor
	metrics  *observability.InMemoryMetrics
}

func newFixture(t *testing.T, hostCaps sdk.CapabilitySet, querier hostapi.Querier) *fixture {
	t.Helper()
	f := &fixture{
		store:    storage.NewMemory(),
		registry: NewRegistry(nil),
		metrics:  observability.NewInMemoryMetrics(),
	}
	f.sandbox = NewSandbox(SandboxConfig{
		Storage: f.store,
		Querier: querier,
		Height:  100,
		Now:     func() time.Time { return time.Unix(1_700_000_000, 0) },
	})
	f.exec = NewExecutor(f.registry, f.sandbox, ExecutorConfig{Capabilities: hostCaps, Metrics: f.metrics})
	return f
}

func TestContractAddress(t *testing.T) {
	a, err := ContractAddress("counter", "one")
	require.NoError(t, err)
	again, err := ContractAddress("counter", "one")
	require.NoError(t, err)
	b, err := ContractAddress("counter", "two")
	require.NoError(t, err)

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, AddressPrefix+"1"))
	assert.NoError(t, ValidateAddress(a))

	assert.Error(t, ValidateAddress("not-an-address"))
	assert.Error(t, ValidateAddress(strings.Replace(a, "bbn1", "bbm1", 1)))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(nil)
	addr, err := ContractAddress("counter", "r")
	require.NoError(t, err)

	require.NoError(t, reg.Register(addr, "r", &counterContract{}))
	assert.ErrorIs(t, reg.Register(addr, "r", &counterContract{}), sdk.ErrContractAlreadyExists)
	assert.Error(t, reg.Register("cosmos2contract", "x", &counterContract{}))
	assert.Error(t, reg.Register(addr, "r", nil))

	entry, err := reg.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, "counter", entry.Contract.Name())
	assert.False(t, entry.Instantiated)

	_, err = reg.Get("bbn1missing")
	assert.ErrorIs(t, err, sdk.ErrContractNotFound)

	assert.Len(t, reg.List(), 1)
	reg.Unregister(addr)
	assert.Empty(t, reg.List())
}

func TestExecutor_DeployAndQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, hostapitest.NewMockQuerier(nil))

	addr, resp, err := f.exec.Deploy(ctx, &counterContract{}, "main", sdk.MessageInfo{Sender: "creator"}, json.RawMessage(`{"start":7}`))
	require.NoError(t, err)
	assert.Equal(t, []sdk.Attribute{{Key: "method", Value: "instantiate"}}, resp.Attributes)

	entry, err := f.registry.Get(addr)
	require.NoError(t, err)
	assert.True(t, entry.Instantiated)
	assert.Equal(t, "creator", entry.Creator)
	assert.Equal(t, uint64(101), f.sandbox.Env(addr).Block.Height)

	data, err := f.exec.Query(ctx, addr, json.RawMessage(`{"count":{}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `7`, string(data))

	raw, err := f.exec.ReadRaw(ctx, addr, []byte("count"))
	require.NoError(t, err)
	assert.Equal(t, "7", string(raw))
	raw, err = f.exec.ReadRaw(ctx, addr, []byte("absent"))
	require.NoError(t, err)
	assert.Nil(t, raw)

	_, err = f.exec.Instantiate(ctx, addr, sdk.MessageInfo{Sender: "again"}, json.RawMessage(`{"start":1}`))
	assert.ErrorIs(t, err, sdk.ErrContractAlreadyExists)

	entryTag := func(e string) observability.Tag { return observability.T("entry", e) }
	ok := observability.T("outcome", observability.OutcomeOK)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricContractCalls, entryTag("instantiate"), ok))
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricContractCalls, entryTag("query"), ok))
}

func TestExecutor_FailedInstantiateLeavesNoState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, hostapitest.NewMockQuerier(nil))

	_, _, err := f.exec.Deploy(ctx, &counterContract{failInit: true}, "broken", sdk.MessageInfo{Sender: "creator"}, json.RawMessage(`{"start":3}`))
	var contractErr *sdk.ContractError
	require.ErrorAs(t, err, &contractErr)
	assert.Equal(t, "instantiate", contractErr.Op)
	assert.EqualError(t, contractErr.Err, "refusing to start")

	addr, err := ContractAddress("counter", "broken")
	require.NoError(t, err)
	assert.Zero(t, f.store.Len(addr))
	_, err = f.registry.Get(addr)
	assert.ErrorIs(t, err, sdk.ErrContractNotFound)
}

func TestExecutor_RejectsMissingCapabilities(t *testing.T) {
	f := newFixture(t, sdk.NewCapabilitySet([]sdk.Capability{sdk.CapIterator}), nil)

	_, _, err := f.exec.Deploy(context.Background(), &counterContract{caps: []sdk.Capability{sdk.CapBabylon, sdk.CapIterator}}, "x", sdk.MessageInfo{}, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, sdk.ErrCapabilityNotSupported)

	var capErr *sdk.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, []sdk.Capability{sdk.CapBabylon}, capErr.Missing)
	assert.Empty(t, f.registry.List())
}

func TestSandbox_GatesCustomQueries(t *testing.T) {
	ctx := context.Background()
	chain := hostapitest.NewMockQuerier(nil).WithCustomHandler(func(context.Context, json.RawMessage) hostapi.SystemResult {
		return hostapi.SystemOk(hostapi.Binary(`{"epoch":3}`))
	})
	f := newFixture(t, nil, chain)

	plain, _, err := f.exec.Deploy(ctx, &counterContract{}, "plain", sdk.MessageInfo{}, json.RawMessage(`{}`))
	require.NoError(t, err)
	bbn, _, err := f.exec.Deploy(ctx, &counterContract{caps: []sdk.Capability{sdk.CapBabylon}}, "bbn", sdk.MessageInfo{}, json.RawMessage(`{}`))
	require.NoError(t, err)

	msg := json.RawMessage(`{"chain":{"custom":{"epoch":{}}}}`)

	_, err = f.exec.Query(ctx, plain, msg)
	sysErr, ok := hostapi.IsSystemError(err)
	require.True(t, ok)
	require.NotNil(t, sysErr.UnsupportedRequest)
	assert.Equal(t, "custom", sysErr.UnsupportedRequest.Kind)

	data, err := f.exec.Query(ctx, bbn, msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"epoch":3}`, string(data))

	// Bank queries need no capability.
	data, err = f.exec.Query(ctx, plain, json.RawMessage(`{"chain":{"bank":{"all_balances":{"address":"nobody"}}}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":[]}`, string(data))
}

func TestExecutor_QueryDepthIsBounded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	// Route smart queries straight back into the executor.
	f.sandbox.SetQuerier(hostapi.QuerierFunc(func(ctx context.Context, request []byte) hostapi.SystemResult {
		var req hostapi.QueryRequest
		if err := json.Unmarshal(request, &req); err != nil || req.Wasm == nil || req.Wasm.Smart == nil {
			return hostapi.SystemErr(hostapi.NewUnsupportedRequest("test"))
		}
		data, err := f.exec.Query(ctx, req.Wasm.Smart.ContractAddr, json.RawMessage(req.Wasm.Smart.Msg))
		if err != nil {
			return hostapi.SystemContractErr(err.Error())
		}
		return hostapi.SystemOk(data)
	}))

	addr, _, err := f.exec.Deploy(ctx, &counterContract{}, "loop", sdk.MessageInfo{}, json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = f.exec.Query(ctx, addr, json.RawMessage(`{"self":{}}`))
	assert.ErrorContains(t, err, ErrQueryDepthExceeded.Error())
}

func TestExecutor_UnknownContract(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.exec.Query(context.Background(), "bbn1nobody", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, sdk.ErrContractNotFound)

	_, err = f.exec.ReadRaw(context.Background(), "bbn1nobody", []byte("k"))
	assert.ErrorIs(t, err, sdk.ErrContractNotFound)

	sys := observability.T("outcome", observability.OutcomeSystem)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricContractCalls, observability.T("entry", "query"), sys))
}
