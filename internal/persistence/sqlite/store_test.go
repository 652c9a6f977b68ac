package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_LoadMissing(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "fund.db"))
	_, err := s.Load(context.Background(), "fund")
	require.ErrorIs(t, err, host.ErrStateNotFound)
}

func TestStore_RoundTripSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fund.db")
	controller := registry.Identity("curator.near")
	big := uint256.MustFromDecimal("340282366920938463463374607431768211455")
	want := registry.State{
		Controller:        &controller,
		RebalanceInterval: 3600,
		Holdings: []registry.HoldingEntry{
			{AssetID: "zeta", AssetHolding: registry.AssetHolding{Weight: 6000, Balance: *big, LastUpdated: 7}},
			{AssetID: "alpha", AssetHolding: registry.AssetHolding{Weight: 4000, LastPrice: *uint256.NewInt(9), LastUpdated: 8}},
		},
	}

	s := openStore(t, path)
	require.NoError(t, s.Save(ctx, "fund", want))
	require.NoError(t, s.Close())

	reopened := openStore(t, path)
	got, err := reopened.Load(ctx, "fund")
	require.NoError(t, err)
	assert.Equal(t, want, *got)
	assert.Equal(t, path, reopened.Path())
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "fund.db"))
	require.NoError(t, s.Save(ctx, "fund", registry.State{RebalanceInterval: 1}))
	require.NoError(t, s.Save(ctx, "fund", registry.State{
		RebalanceInterval: 1,
		Holdings:          []registry.HoldingEntry{{AssetID: "a", AssetHolding: registry.AssetHolding{Weight: 10000}}},
	}))
	require.NoError(t, s.Save(ctx, "other", registry.State{RebalanceInterval: 2}))

	got, err := s.Load(ctx, "fund")
	require.NoError(t, err)
	require.Len(t, got.Holdings, 1)
	assert.Nil(t, got.Controller)

	var rows int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM registry_state`).Scan(&rows))
	assert.Equal(t, 2, rows)
}

func TestStore_HostRuntime(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "fund.db"))
	cfg := &host.Config{RegistryID: "fund", StorageByteCost: uint256.NewInt(1)}
	rt, err := host.NewRuntime(cfg, s)
	require.NoError(t, err)

	require.NoError(t, rt.Deploy(ctx, 60))
	require.NoError(t, rt.Execute(ctx, host.Call{
		Action:  host.Action{Method: host.MethodRegisterController, Controller: "curator.near"},
		Caller:  "curator.near",
		Deposit: uint256.NewInt(100),
	}))
	require.NoError(t, rt.Execute(ctx, host.Call{
		Action: host.Action{Method: host.MethodUpdateWeights, Updates: []registry.AssetWeight{
			{AssetID: "b", Weight: 2500}, {AssetID: "a", Weight: 7500},
		}},
		Caller: "curator.near",
	}))

	assets, err := rt.Assets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.AssetID{"b", "a"}, assets)
}

func TestStore_SignedReplayRejectedAfterReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fund.db")
	cfg := &host.Config{RegistryID: "fund", StorageByteCost: uint256.NewInt(1)}
	signer, err := host.GenerateSigner()
	require.NoError(t, err)

	first := openStore(t, path)
	rt, err := host.NewRuntime(cfg, first)
	require.NoError(t, err)
	require.NoError(t, rt.Deploy(ctx, 60))
	register, err := host.SignCall(signer, "fund",
		host.Action{Method: host.MethodRegisterController, Controller: signer.Identity()},
		cfg.RegistrationDeposit(), 1)
	require.NoError(t, err)
	_, err = rt.ExecuteSigned(ctx, *register)
	require.NoError(t, err)
	update, err := host.SignCall(signer, "fund",
		host.Action{Method: host.MethodUpdateWeights, Updates: []registry.AssetWeight{{AssetID: "a", Weight: 10000}}},
		nil, 2)
	require.NoError(t, err)
	_, err = rt.ExecuteSigned(ctx, *update)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	reopened := openStore(t, path)
	restarted, err := host.NewRuntime(cfg, reopened)
	require.NoError(t, err)
	_, err = restarted.ExecuteSigned(ctx, *update)
	require.ErrorIs(t, err, host.ErrStaleNonce)

	st, err := reopened.Load(ctx, "fund")
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Nonces[signer.Identity()])
}
