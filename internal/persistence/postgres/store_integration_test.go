//go:build integration
// +build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"indexfund-api/internal/model"
	"indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("INDEXFUND_TEST_POSTGRES_DSN")
	redisAddr := os.Getenv("INDEXFUND_TEST_REDIS_ADDR")
	if dsn == "" || redisAddr == "" {
		t.Skip("INDEXFUND_TEST_POSTGRES_DSN and INDEXFUND_TEST_REDIS_ADDR are required")
	}
	conn := sqlx.NewSqlConn("pgx", dsn)
	schema, err := os.ReadFile("../../model/sql/registry.sql")
	require.NoError(t, err)
	_, err = conn.Exec(string(schema))
	require.NoError(t, err)

	cacheConf := cache.CacheConf{{RedisConf: redis.RedisConf{Host: redisAddr, Type: redis.NodeType}, Weight: 100}}
	store, err := NewStore(Config{
		SQLConn:       conn,
		StateModel:    model.NewRegistryStateModel(conn, cacheConf),
		HoldingsModel: model.NewAssetHoldingsModel(conn),
		NoncesModel:   model.NewCallerNoncesModel(conn),
	})
	require.NoError(t, err)
	return store
}

func TestStore_Integration(t *testing.T) {
	store := newIntegrationStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	id := "integration-" + time.Now().Format("150405.000000")
	_, err := store.Load(ctx, id)
	require.ErrorIs(t, err, host.ErrStateNotFound)

	controller := registry.Identity("curator.near")
	st := registry.State{
		Controller:        &controller,
		RebalanceInterval: 86400,
		Holdings: []registry.HoldingEntry{
			{AssetID: "b", AssetHolding: registry.AssetHolding{Weight: 6000, LastUpdated: 1}},
			{AssetID: "a", AssetHolding: registry.AssetHolding{Weight: 4000, LastUpdated: 1}},
		},
	}
	require.NoError(t, store.Save(ctx, id, st))

	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, st, *got)

	st.Nonces = map[registry.Identity]int64{controller: 4}
	require.NoError(t, store.Save(ctx, id, st))
	got, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Nonces[controller])

	st.Holdings = st.Holdings[:1]
	st.Holdings[0].Weight = 10000
	require.NoError(t, store.Save(ctx, id, st))
	got, err = store.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Holdings, 1)
	assert.Equal(t, uint64(10000), got.Holdings[0].Weight)
}
