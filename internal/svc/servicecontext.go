package svc

import (
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	cachekeys "indexfund-api/internal/cache"
	"indexfund-api/internal/config"
	"indexfund-api/internal/lock"
	"indexfund-api/internal/model"
	"indexfund-api/internal/persistence/memory"
	"indexfund-api/internal/persistence/postgres"
	"indexfund-api/internal/persistence/sqlite"
	hostpkg "indexfund-api/pkg/host"
	"indexfund-api/pkg/journal"
)

type ServiceContext struct {
	Config config.Config

	RegistryConfig *hostpkg.Config
	Store          hostpkg.Store
	Journal        *journal.Writer
	Runtime        *hostpkg.Runtime

	// Populated only for the postgres backend.
	DBConn             sqlx.SqlConn
	Redis              *redis.Redis
	Cache              gocache.Cache
	RegistryStateModel model.RegistryStateModel
	AssetHoldingsModel model.AssetHoldingsModel
	CallerNoncesModel  model.CallerNoncesModel

	closers []func() error
}

func MustNewServiceContext(c config.Config) *ServiceContext {
	svc, err := NewServiceContext(c)
	logx.Must(err)
	return svc
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	if c.Registry.Value == nil {
		return nil, errors.New("svc: registry config not loaded")
	}
	svc := &ServiceContext{
		Config:         c,
		RegistryConfig: c.Registry.Value,
	}

	if err := svc.initStore(); err != nil {
		svc.Close()
		return nil, err
	}

	var opts []hostpkg.Option
	if dir := svc.RegistryConfig.JournalDir; dir != "" {
		w, err := journal.NewWriter(dir)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.Journal = w
		opts = append(opts, hostpkg.WithJournal(w))
	}
	if svc.Redis != nil {
		ttl := cachekeys.NewTTLSet(c.TTL)
		locker, err := lock.NewRedisLocker(svc.Redis, cachekeys.RegistryLockTTL(ttl))
		if err != nil {
			svc.Close()
			return nil, err
		}
		opts = append(opts, hostpkg.WithLocker(locker))
	}

	rt, err := hostpkg.NewRuntime(svc.RegistryConfig, svc.Store, opts...)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Runtime = rt
	return svc, nil
}

func (s *ServiceContext) initStore() error {
	switch s.Config.Storage.Backend {
	case config.BackendMemory, "":
		s.Store = memory.NewStore()
	case config.BackendSQLite:
		store, err := sqlite.NewStore(s.Config.StoragePath())
		if err != nil {
			return fmt.Errorf("svc: open sqlite store: %w", err)
		}
		s.Store = store
		s.closers = append(s.closers, store.Close)
	case config.BackendPostgres:
		return s.initPostgres()
	default:
		return fmt.Errorf("svc: unknown storage backend %q", s.Config.Storage.Backend)
	}
	return nil
}

func (s *ServiceContext) initPostgres() error {
	c := s.Config
	conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
	if db, err := conn.RawDB(); err == nil {
		db.SetMaxOpenConns(c.Postgres.MaxOpen)
		db.SetMaxIdleConns(c.Postgres.MaxIdle)
		s.closers = append(s.closers, db.Close)
	}

	cacheConf := gocache.CacheConf{{RedisConf: c.Redis, Weight: 100}}
	s.DBConn = conn
	s.Redis = redis.MustNewRedis(c.Redis)
	s.Cache = gocache.New(cacheConf, syncx.NewSingleFlight(), gocache.NewStat("indexfund"), model.ErrNotFound)
	s.RegistryStateModel = model.NewRegistryStateModel(conn, cacheConf)
	s.AssetHoldingsModel = model.NewAssetHoldingsModel(conn)
	s.CallerNoncesModel = model.NewCallerNoncesModel(conn)

	store, err := postgres.NewStore(postgres.Config{
		SQLConn:       conn,
		StateModel:    s.RegistryStateModel,
		HoldingsModel: s.AssetHoldingsModel,
		NoncesModel:   s.CallerNoncesModel,
		Cache:         s.Cache,
		TTL:           cachekeys.NewTTLSet(c.TTL),
	})
	if err != nil {
		return err
	}
	s.Store = store
	return nil
}

// Close releases store handles. It is safe to call more than once.
func (s *ServiceContext) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logx.Errorf("svc: close: %v", err)
		}
	}
	s.closers = nil
}
