package client

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indexfund-api/internal/config"
	"indexfund-api/internal/handler"
	"indexfund-api/internal/svc"
	"indexfund-api/pkg/confkit"
	"indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

func newRegistryServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler.InstallErrorHandler()
	svcCtx, err := svc.NewServiceContext(config.Config{
		Storage: config.StorageConf{Backend: config.BackendMemory},
		Registry: confkit.Section[host.Config]{Value: &host.Config{
			RegistryID:      "fund.client",
			StorageByteCost: uint256.NewInt(10),
		}},
	})
	require.NoError(t, err)
	t.Cleanup(svcCtx.Close)

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/deploy", handler.DeployHandler(svcCtx))
	mux.HandleFunc(apiPrefix+"/call", handler.CallHandler(svcCtx))
	mux.HandleFunc(apiPrefix+"/weights", handler.WeightsHandler(svcCtx))
	mux.HandleFunc(apiPrefix+"/assets", handler.AssetsHandler(svcCtx))
	mux.HandleFunc(apiPrefix+"/info", handler.InfoHandler(svcCtx))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestClient_RegistryLifecycle(t *testing.T) {
	server := newRegistryServer(t)
	curator, err := host.GenerateSigner()
	require.NoError(t, err)
	intruder, err := host.GenerateSigner()
	require.NoError(t, err)
	ctx := context.Background()

	c := New(server.URL, WithSigner(curator), WithLogger(quietLogger()))

	deployed, err := c.Deploy(ctx, 3600)
	require.NoError(t, err)
	assert.Equal(t, "fund.client", deployed.RegistryId)

	_, err = c.Deploy(ctx, 3600)
	require.ErrorIs(t, err, host.ErrAlreadyInitialized)

	resp, err := c.RegisterController(ctx, curator.Identity(), nil)
	require.NoError(t, err)
	assert.Equal(t, string(curator.Identity()), resp.Caller)

	_, err = c.UpdateWeights(ctx, []registry.AssetWeight{{AssetID: "BTC", Weight: 6000}, {AssetID: "ETH", Weight: 4000}})
	require.NoError(t, err)

	weights, err := c.Weights(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.AssetWeight{{AssetID: "BTC", Weight: 6000}, {AssetID: "ETH", Weight: 4000}}, weights)

	assets, err := c.Assets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.AssetID{"BTC", "ETH"}, assets)

	_, err = c.UpdateWeights(ctx, []registry.AssetWeight{{AssetID: "BTC", Weight: 5000}})
	require.ErrorIs(t, err, registry.ErrInvalidWeightSum)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	other := New(server.URL, WithSigner(intruder), WithLogger(quietLogger()))
	_, err = other.UpdateWeights(ctx, []registry.AssetWeight{{AssetID: "BTC", Weight: 10000}})
	require.ErrorIs(t, err, registry.ErrUnauthorized)

	info, err := c.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Deployed)
	assert.Equal(t, string(curator.Identity()), info.Controller)
	assert.Equal(t, uint64(3600), info.RebalanceInterval)
	assert.Equal(t, 2, info.AssetCount)
}

func TestClient_RegisterInsufficientDeposit(t *testing.T) {
	server := newRegistryServer(t)
	curator, err := host.GenerateSigner()
	require.NoError(t, err)
	ctx := context.Background()

	c := New(server.URL, WithSigner(curator), WithRegistryID("fund.client"), WithLogger(quietLogger()))
	_, err = c.Deploy(ctx, 60)
	require.NoError(t, err)

	_, err = c.RegisterController(ctx, curator.Identity(), uint256.NewInt(999))
	require.ErrorIs(t, err, registry.ErrInsufficientPayment)

	_, err = c.UpdateWeights(ctx, []registry.AssetWeight{{AssetID: "BTC", Weight: 10000}})
	require.ErrorIs(t, err, registry.ErrNotRegistered)
}

func TestClient_WrongRegistryIDIsRejected(t *testing.T) {
	server := newRegistryServer(t)
	curator, err := host.GenerateSigner()
	require.NoError(t, err)
	ctx := context.Background()

	c := New(server.URL, WithSigner(curator), WithLogger(quietLogger()))
	_, err = c.Deploy(ctx, 60)
	require.NoError(t, err)
	_, err = c.RegisterController(ctx, curator.Identity(), nil)
	require.NoError(t, err)

	// A signature bound to another registry recovers a different caller.
	misbound := New(server.URL, WithSigner(curator), WithRegistryID("fund.other"), WithLogger(quietLogger()))
	_, err = misbound.UpdateWeights(ctx, []registry.AssetWeight{{AssetID: "BTC", Weight: 10000}})
	require.ErrorIs(t, err, registry.ErrUnauthorized)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestClient_CallRequiresSigner(t *testing.T) {
	c := New("http://127.0.0.1:0")
	_, err := c.UpdateWeights(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer required")
}

func TestClient_NonceStrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	c := New("http://unused", WithClock(func() time.Time { return fixed }))
	first := c.nextNonce()
	second := c.nextNonce()
	assert.Equal(t, fixed.UnixMilli(), first)
	assert.Equal(t, first+1, second)
}

func TestClient_GetRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 2 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"assets":["BTC"]}`))
	}))
	defer server.Close()

	c := New(server.URL, WithLogger(quietLogger()))
	assets, err := c.Assets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []registry.AssetID{"BTC"}, assets)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_GetDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"kind":"bad_request","message":"nope"}`))
	}))
	defer server.Close()

	c := New(server.URL, WithLogger(quietLogger()))
	_, err := c.Weights(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad_request", apiErr.Kind)
	assert.Equal(t, "nope", apiErr.Message)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_ConcurrentResolveSharesRegistryID(t *testing.T) {
	server := newRegistryServer(t)
	curator, err := host.GenerateSigner()
	require.NoError(t, err)
	ctx := context.Background()

	c := New(server.URL, WithSigner(curator), WithLogger(quietLogger()))
	assert.Empty(t, c.RegistryID())

	var wg sync.WaitGroup
	ids := make([]string, 16)
	errs := make([]error, len(ids))
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = c.resolveRegistryID(ctx)
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, "fund.client", ids[i])
	}
	assert.Equal(t, "fund.client", c.RegistryID())

	_, err = c.Deploy(ctx, 60)
	require.NoError(t, err)
	_, err = c.RegisterController(ctx, curator.Identity(), nil)
	require.NoError(t, err)
}

func TestClient_PinnedRegistryIDSurvivesDeploy(t *testing.T) {
	server := newRegistryServer(t)
	c := New(server.URL, WithRegistryID("fund.pinned"), WithLogger(quietLogger()))

	deployed, err := c.Deploy(context.Background(), 60)
	require.NoError(t, err)
	assert.Equal(t, "fund.client", deployed.RegistryId)
	assert.Equal(t, "fund.pinned", c.RegistryID())
}
