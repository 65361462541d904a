package sdk_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/storage"
)

func TestParseCapabilities(t *testing.T) {
	set, err := sdk.ParseCapabilities([]string{"iterator", " babylon ", ""})
	require.NoError(t, err)
	assert.Equal(t, []sdk.Capability{sdk.CapBabylon, sdk.CapIterator}, set.ToSlice())

	_, err = sdk.ParseCapabilities([]string{"babylon", "teleport"})
	assert.ErrorIs(t, err, sdk.ErrInvalidCapability)
	assert.Contains(t, err.Error(), "teleport")
}

func TestCapabilitySet_Missing(t *testing.T) {
	host := sdk.NewCapabilitySet([]sdk.Capability{sdk.CapIterator, sdk.CapStaking})
	required := sdk.NewCapabilitySet([]sdk.Capability{sdk.CapBabylon, sdk.CapIterator, sdk.CapStargate})

	assert.Equal(t, []sdk.Capability{sdk.CapBabylon, sdk.CapStargate}, host.Missing(required))
	assert.Empty(t, sdk.DefaultHostCapabilities().Missing(sdk.NewCapabilitySet([]sdk.Capability{sdk.CapBabylon})))
}

func TestCapabilityError(t *testing.T) {
	err := &sdk.CapabilityError{ContractAddr: "bbn1c", Missing: []sdk.Capability{sdk.CapBabylon}}
	assert.ErrorIs(t, err, sdk.ErrCapabilityNotSupported)
	assert.Equal(t, "contract bbn1c requires unsupported capabilities: babylon", err.Error())
}

func TestContractError_Unwrap(t *testing.T) {
	err := sdk.NewContractError("bbn1c", "query", sdk.ErrUnknownMessage)
	assert.ErrorIs(t, err, sdk.ErrUnknownMessage)
	assert.Equal(t, "contract bbn1c: query: unknown message variant", err.Error())
}

type state struct {
	Owner string `json:"owner"`
}

func TestItem_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory().ForContract("bbn1c")
	item := sdk.NewItem[state]("config")

	got, err := item.MayLoad(ctx, store)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = item.Load(ctx, store)
	assert.ErrorIs(t, err, sdk.ErrNotFound)

	require.NoError(t, item.Save(ctx, store, state{Owner: "creator"}))
	loaded, err := item.Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, state{Owner: "creator"}, loaded)

	raw, err := store.Get(ctx, item.Key())
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"creator"}`, string(raw))

	require.NoError(t, store.Set(ctx, item.Key(), []byte("not json")))
	_, err = item.Load(ctx, store)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, sdk.ErrNotFound)
}
