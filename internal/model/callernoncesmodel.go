package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ CallerNoncesModel = (*customCallerNoncesModel)(nil)

type (
	// CallerNoncesModel is an interface to be customized, add more methods here,
	// and implement the added methods in customCallerNoncesModel.
	CallerNoncesModel interface {
		callerNoncesModel
		WithSession(session sqlx.Session) CallerNoncesModel
		ListByRegistry(ctx context.Context, registryID string) ([]CallerNonces, error)
		Upsert(ctx context.Context, data *CallerNonces) error
	}

	customCallerNoncesModel struct {
		*defaultCallerNoncesModel
	}
)

// NewCallerNoncesModel returns a model for the database table.
func NewCallerNoncesModel(conn sqlx.SqlConn) CallerNoncesModel {
	return &customCallerNoncesModel{
		defaultCallerNoncesModel: newCallerNoncesModel(conn),
	}
}

// WithSession binds the model to an open transaction.
func (m *customCallerNoncesModel) WithSession(session sqlx.Session) CallerNoncesModel {
	return NewCallerNoncesModel(sqlx.NewSqlConnFromSession(session))
}

func (m *customCallerNoncesModel) ListByRegistry(ctx context.Context, registryID string) ([]CallerNonces, error) {
	query := fmt.Sprintf("select %s from %s where registry_id = $1 order by caller", callerNoncesRows, m.tableName())
	var rows []CallerNonces
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, registryID); err != nil {
		return nil, fmt.Errorf("caller_nonces.ListByRegistry query: %w", err)
	}
	return rows, nil
}

// Upsert records a caller's nonce. A stored nonce never moves backwards.
func (m *customCallerNoncesModel) Upsert(ctx context.Context, data *CallerNonces) error {
	query := fmt.Sprintf(`
INSERT INTO %s AS cur (%s) VALUES ($1, $2, $3)
ON CONFLICT (registry_id, caller) DO UPDATE SET
    nonce = GREATEST(cur.nonce, EXCLUDED.nonce)`, m.tableName(), callerNoncesRowsExpectAutoSet)
	if _, err := m.conn.ExecCtx(ctx, query, data.RegistryId, data.Caller, data.Nonce); err != nil {
		return fmt.Errorf("caller_nonces.Upsert %s: %w", data.Caller, err)
	}
	return nil
}
