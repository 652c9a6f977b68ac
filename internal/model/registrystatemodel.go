package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ RegistryStateModel = (*customRegistryStateModel)(nil)

type (
	// RegistryStateModel is an interface to be customized, add more methods here,
	// and implement the added methods in customRegistryStateModel.
	RegistryStateModel interface {
		registryStateModel
		UpsertWithSession(ctx context.Context, session sqlx.Session, data *RegistryState) error
		InvalidateCache(ctx context.Context, id string) error
	}

	customRegistryStateModel struct {
		*defaultRegistryStateModel
	}
)

// NewRegistryStateModel returns a model for the database table.
func NewRegistryStateModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) RegistryStateModel {
	return &customRegistryStateModel{
		defaultRegistryStateModel: newRegistryStateModel(conn, c, opts...),
	}
}

// UpsertWithSession writes the row inside an open transaction. The row cache
// is left untouched; callers invalidate it after commit.
func (m *customRegistryStateModel) UpsertWithSession(ctx context.Context, session sqlx.Session, data *RegistryState) error {
	query := fmt.Sprintf(`
INSERT INTO %s (%s) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
    controller = EXCLUDED.controller,
    rebalance_interval = EXCLUDED.rebalance_interval,
    last_rebalance = EXCLUDED.last_rebalance,
    updated_at = NOW()`, m.tableName(), registryStateRowsExpectAutoSet)
	if _, err := session.ExecCtx(ctx, query, data.Id, data.Controller, data.RebalanceInterval, data.LastRebalance); err != nil {
		return fmt.Errorf("registry_state.Upsert: %w", err)
	}
	return nil
}

// InvalidateCache drops the cached row for id.
func (m *customRegistryStateModel) InvalidateCache(ctx context.Context, id string) error {
	return m.DelCacheCtx(ctx, m.formatPrimary(id))
}
