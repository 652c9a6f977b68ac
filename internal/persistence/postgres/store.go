// Package postgres persists registry state to Postgres through the goctl
// models, with a Redis snapshot cache in front of reads.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "indexfund-api/internal/cache"
	"indexfund-api/internal/model"
	"indexfund-api/internal/persistence/codec"
	"indexfund-api/pkg/host"
	"indexfund-api/pkg/registry"
)

var _ host.Store = (*Store)(nil)

const (
	maxSaveAttempts = 3
	retryBackoff    = 50 * time.Millisecond
)

// Store is a host.Store backed by Postgres with an optional Redis cache.
type Store struct {
	sqlConn       sqlx.SqlConn
	stateModel    model.RegistryStateModel
	holdingsModel model.AssetHoldingsModel
	noncesModel   model.CallerNoncesModel
	cache         gocache.Cache
	ttl           cachekeys.TTLSet
}

// Config enumerates dependencies needed to persist registry state.
type Config struct {
	SQLConn       sqlx.SqlConn
	StateModel    model.RegistryStateModel
	HoldingsModel model.AssetHoldingsModel
	NoncesModel   model.CallerNoncesModel
	Cache         gocache.Cache
	TTL           cachekeys.TTLSet
}

// NewStore wires a Postgres store. The cache is optional.
func NewStore(cfg Config) (*Store, error) {
	if cfg.SQLConn == nil || cfg.StateModel == nil || cfg.HoldingsModel == nil || cfg.NoncesModel == nil {
		return nil, errors.New("postgres store: sql conn and models are required")
	}
	return &Store{
		sqlConn:       cfg.SQLConn,
		stateModel:    cfg.StateModel,
		holdingsModel: cfg.HoldingsModel,
		noncesModel:   cfg.NoncesModel,
		cache:         cfg.Cache,
		ttl:           cfg.TTL,
	}, nil
}

// Load returns the registry state, preferring the snapshot cache.
func (s *Store) Load(ctx context.Context, registryID string) (*registry.State, error) {
	if st, ok := s.cachedSnapshot(ctx, registryID); ok {
		return st, nil
	}
	row, err := s.stateModel.FindOne(ctx, registryID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, host.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load registry_state %s: %w", registryID, err)
	}
	holdings, err := s.holdingsModel.ListByRegistry(ctx, registryID)
	if err != nil {
		return nil, err
	}
	nonces, err := s.noncesModel.ListByRegistry(ctx, registryID)
	if err != nil {
		return nil, err
	}
	st, err := stateFromRows(row, holdings, nonces)
	if err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", registryID, err)
	}
	if err := s.cacheSnapshot(ctx, registryID, *st); err != nil {
		logx.WithContext(ctx).Errorf("postgres store: %v", err)
	}
	return st, nil
}

// Save writes the state, its holdings and its caller nonces in one
// transaction, retrying on serialization failures. The snapshot is dropped
// before the write and only rewritten after commit, so a cache failure can
// leave the snapshot missing but never stale.
func (s *Store) Save(ctx context.Context, registryID string, state registry.State) error {
	if err := s.dropSnapshot(ctx, registryID); err != nil {
		return fmt.Errorf("save registry %s: %w", registryID, err)
	}
	row, holdings, nonces := rowsFromState(registryID, state)
	keep := make([]string, 0, len(holdings))
	for _, h := range holdings {
		keep = append(keep, h.AssetId)
	}

	var err error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		err = s.sqlConn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
			if err := s.stateModel.UpsertWithSession(ctx, session, row); err != nil {
				return err
			}
			hm := s.holdingsModel.WithSession(session)
			if err := hm.DeleteExcept(ctx, registryID, keep); err != nil {
				return err
			}
			for i := range holdings {
				if err := hm.Upsert(ctx, &holdings[i]); err != nil {
					return err
				}
			}
			nm := s.noncesModel.WithSession(session)
			for i := range nonces {
				if err := nm.Upsert(ctx, &nonces[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil || !isRetryable(err) || attempt == maxSaveAttempts {
			break
		}
		logx.WithContext(ctx).Infof("postgres store: retrying save of %s after %v (attempt %d)", registryID, err, attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	// the row cache may hold the pre-transaction value either way
	if cerr := s.stateModel.InvalidateCache(ctx, registryID); cerr != nil {
		logx.WithContext(ctx).Errorf("postgres store: invalidate registry_state cache id=%s err=%v", registryID, cerr)
	}
	if err != nil {
		// a concurrent Load may have cached the old state meanwhile
		if derr := s.dropSnapshot(ctx, registryID); derr != nil {
			logx.WithContext(ctx).Errorf("postgres store: %v", derr)
		}
		return fmt.Errorf("save registry %s: %w", registryID, err)
	}
	if err := s.cacheSnapshot(ctx, registryID, state); err != nil {
		logx.WithContext(ctx).Errorf("postgres store: %v", err)
		if derr := s.dropSnapshot(ctx, registryID); derr != nil {
			logx.WithContext(ctx).Errorf("postgres store: %v", derr)
		}
	}
	return nil
}

// isRetryable reports serialization failures and deadlocks.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01":
		return true
	default:
		return false
	}
}

func (s *Store) cachedSnapshot(ctx context.Context, registryID string) (*registry.State, bool) {
	if s.cache == nil {
		return nil, false
	}
	key := cachekeys.RegistrySnapshotKey(registryID)
	var doc codec.Document
	if err := s.cache.GetCtx(ctx, key, &doc); err != nil {
		if !s.cache.IsNotFound(err) {
			logx.WithContext(ctx).Errorf("postgres store: load snapshot cache key=%s err=%v", key, err)
		}
		return nil, false
	}
	st, err := doc.State()
	if err != nil {
		logx.WithContext(ctx).Errorf("postgres store: decode snapshot cache key=%s err=%v", key, err)
		return nil, false
	}
	return st, true
}

func (s *Store) cacheSnapshot(ctx context.Context, registryID string, st registry.State) error {
	if s.cache == nil {
		return nil
	}
	ttl := cachekeys.RegistrySnapshotTTL(s.ttl)
	if ttl <= 0 {
		return nil
	}
	key := cachekeys.RegistrySnapshotKey(registryID)
	if err := s.cache.SetWithExpireCtx(ctx, key, codec.Encode(st), ttl); err != nil {
		return fmt.Errorf("set snapshot cache key=%s: %w", key, err)
	}
	return nil
}

func (s *Store) dropSnapshot(ctx context.Context, registryID string) error {
	if s.cache == nil {
		return nil
	}
	key := cachekeys.RegistrySnapshotKey(registryID)
	if err := s.cache.DelCtx(ctx, key); err != nil && !s.cache.IsNotFound(err) {
		return fmt.Errorf("drop snapshot cache key=%s: %w", key, err)
	}
	return nil
}

func rowsFromState(registryID string, st registry.State) (*model.RegistryState, []model.AssetHoldings, []model.CallerNonces) {
	row := &model.RegistryState{
		Id:                registryID,
		RebalanceInterval: strconv.FormatUint(st.RebalanceInterval, 10),
		LastRebalance:     strconv.FormatUint(st.LastRebalance, 10),
	}
	if st.Controller != nil {
		row.Controller = sql.NullString{String: string(*st.Controller), Valid: true}
	}
	holdings := make([]model.AssetHoldings, 0, len(st.Holdings))
	for i, e := range st.Holdings {
		holdings = append(holdings, model.AssetHoldings{
			RegistryId:  registryID,
			AssetId:     string(e.AssetID),
			Ordinal:     int64(i),
			Balance:     e.Balance.Dec(),
			Weight:      int64(e.Weight),
			LastPrice:   e.LastPrice.Dec(),
			LastUpdated: strconv.FormatUint(e.LastUpdated, 10),
		})
	}
	nonces := make([]model.CallerNonces, 0, len(st.Nonces))
	for caller, nonce := range st.Nonces {
		nonces = append(nonces, model.CallerNonces{RegistryId: registryID, Caller: string(caller), Nonce: nonce})
	}
	// fixed order keeps row locks consistent across concurrent writers
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Caller < nonces[j].Caller })
	return row, holdings, nonces
}

func stateFromRows(row *model.RegistryState, holdings []model.AssetHoldings, nonces []model.CallerNonces) (*registry.State, error) {
	interval, err := strconv.ParseUint(row.RebalanceInterval, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("rebalance_interval: %w", err)
	}
	last, err := strconv.ParseUint(row.LastRebalance, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("last_rebalance: %w", err)
	}
	st := &registry.State{
		RebalanceInterval: interval,
		LastRebalance:     last,
		Holdings:          make([]registry.HoldingEntry, 0, len(holdings)),
	}
	if row.Controller.Valid {
		c := registry.Identity(row.Controller.String)
		st.Controller = &c
	}
	for _, h := range holdings {
		if h.Weight < 0 {
			return nil, fmt.Errorf("asset %s: negative weight %d", h.AssetId, h.Weight)
		}
		balance, err := codec.ParseAmount(h.Balance)
		if err != nil {
			return nil, fmt.Errorf("asset %s balance: %w", h.AssetId, err)
		}
		price, err := codec.ParseAmount(h.LastPrice)
		if err != nil {
			return nil, fmt.Errorf("asset %s last_price: %w", h.AssetId, err)
		}
		updated, err := strconv.ParseUint(h.LastUpdated, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("asset %s last_updated: %w", h.AssetId, err)
		}
		st.Holdings = append(st.Holdings, registry.HoldingEntry{
			AssetID: registry.AssetID(h.AssetId),
			AssetHolding: registry.AssetHolding{
				Balance:     *balance,
				Weight:      uint64(h.Weight),
				LastPrice:   *price,
				LastUpdated: updated,
			},
		})
	}
	if len(nonces) > 0 {
		st.Nonces = make(map[registry.Identity]int64, len(nonces))
		for _, n := range nonces {
			st.Nonces[registry.Identity(n.Caller)] = n.Nonce
		}
	}
	return st, nil
}
