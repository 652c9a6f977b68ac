package model

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ AssetHoldingsModel = (*customAssetHoldingsModel)(nil)

type (
	// AssetHoldingsModel is an interface to be customized, add more methods here,
	// and implement the added methods in customAssetHoldingsModel.
	AssetHoldingsModel interface {
		assetHoldingsModel
		WithSession(session sqlx.Session) AssetHoldingsModel
		ListByRegistry(ctx context.Context, registryID string) ([]AssetHoldings, error)
		Upsert(ctx context.Context, data *AssetHoldings) error
		DeleteExcept(ctx context.Context, registryID string, keep []string) error
	}

	customAssetHoldingsModel struct {
		*defaultAssetHoldingsModel
	}
)

// NewAssetHoldingsModel returns a model for the database table.
func NewAssetHoldingsModel(conn sqlx.SqlConn) AssetHoldingsModel {
	return &customAssetHoldingsModel{
		defaultAssetHoldingsModel: newAssetHoldingsModel(conn),
	}
}

// WithSession binds the model to an open transaction.
func (m *customAssetHoldingsModel) WithSession(session sqlx.Session) AssetHoldingsModel {
	return NewAssetHoldingsModel(sqlx.NewSqlConnFromSession(session))
}

// ListByRegistry returns a registry's holdings in insertion order.
func (m *customAssetHoldingsModel) ListByRegistry(ctx context.Context, registryID string) ([]AssetHoldings, error) {
	query := fmt.Sprintf("select %s from %s where registry_id = $1 order by ordinal", assetHoldingsRows, m.tableName())
	var rows []AssetHoldings
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, registryID); err != nil {
		return nil, fmt.Errorf("asset_holdings.ListByRegistry query: %w", err)
	}
	return rows, nil
}

// Upsert writes a holding keyed by (registry_id, asset_id).
func (m *customAssetHoldingsModel) Upsert(ctx context.Context, data *AssetHoldings) error {
	query := fmt.Sprintf(`
INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (registry_id, asset_id) DO UPDATE SET
    ordinal = EXCLUDED.ordinal,
    balance = EXCLUDED.balance,
    weight = EXCLUDED.weight,
    last_price = EXCLUDED.last_price,
    last_updated = EXCLUDED.last_updated`, m.tableName(), assetHoldingsRowsExpectAutoSet)
	if _, err := m.conn.ExecCtx(ctx, query,
		data.RegistryId, data.AssetId, data.Ordinal, data.Balance, data.Weight, data.LastPrice, data.LastUpdated,
	); err != nil {
		return fmt.Errorf("asset_holdings.Upsert %s: %w", data.AssetId, err)
	}
	return nil
}

// DeleteExcept removes the registry's holdings whose asset is not in keep.
func (m *customAssetHoldingsModel) DeleteExcept(ctx context.Context, registryID string, keep []string) error {
	query := fmt.Sprintf("delete from %s where registry_id = $1 and not (asset_id = ANY($2))", m.tableName())
	if _, err := m.conn.ExecCtx(ctx, query, registryID, pq.Array(keep)); err != nil {
		return fmt.Errorf("asset_holdings.DeleteExcept: %w", err)
	}
	return nil
}
