package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/config"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/kv"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/logging"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

var errAuditUnavailable = errors.New("audit log requires the sqlite backend")

// #region app
// app is everything one command invocation needs, wired from Config.
type app struct {
	cfg     config.Config
	log     *logging.Logger
	kv      kv.Store
	redis   *kv.Redis // stream connection when storage is not redis
	catalog *scenario.Catalog
	adapter *persist.Adapter
	audit   *logging.TransitionLog
	events  *analytics.Log
	store   *state.Store
}

// wireApp opens storage, loads every entity and attaches the analytics log.
func wireApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	a := &app{cfg: cfg, log: logger}

	a.catalog = scenario.DefaultCatalog()
	if cfg.CatalogPath != "" {
		if a.catalog, err = scenario.LoadCatalog(cfg.CatalogPath); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	var streamClient *redis.Client
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := kv.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.kv = db
		if a.audit, err = logging.NewTransitionLog(db.DB()); err != nil {
			db.Close()
			return nil, fmt.Errorf("open transition log: %w", err)
		}
	case config.BackendRedis:
		r, err := kv.ConnectRedis(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis store: %w", err)
		}
		a.kv = r
		streamClient = r.Client()
	default:
		a.kv = kv.NewMemory()
	}

	var forwarder analytics.Forwarder
	if cfg.Analytics.Stream != "" {
		if streamClient == nil {
			r, err := kv.ConnectRedis(ctx, cfg.Storage.RedisURL)
			if err != nil {
				a.kv.Close()
				return nil, fmt.Errorf("connect analytics stream: %w", err)
			}
			a.redis = r
			streamClient = r.Client()
		}
		forwarder = analytics.NewStreamForwarder(streamClient, cfg.Analytics.Stream)
	}

	a.adapter = persist.NewAdapter(a.kv, persist.Options{
		Namespace: cfg.Storage.Namespace,
		Account:   cfg.AccountID,
		Catalog:   a.catalog,
		Logger:    logger,
	})

	var auditor state.Auditor
	if a.audit != nil {
		auditor = a.audit
	}
	a.store = state.New(state.Options{
		Adapter:     a.adapter,
		Catalog:     a.catalog,
		Audit:       auditor,
		Logger:      logger,
		BannerDelay: cfg.BannerDismiss,
	})
	a.store.Load(ctx)

	a.events = analytics.NewLog(a.store.AnalyticsBacklog(), analytics.Options{
		Persister: a.adapter,
		Forwarder: forwarder,
		Debounce:  cfg.Analytics.Debounce,
		Logger:    logger,
	})
	a.store.SetSink(a.events)

	logger.Debug("engine wired",
		"backend", string(cfg.Storage.Backend),
		"account", cfg.AccountID,
		"scenario", string(a.store.Scenario()),
		"config", cfg.ConfigFileUsed,
	)
	return a, nil
}

// close flushes pending analytics and releases storage.
func (a *app) close(ctx context.Context) error {
	a.events.Flush(ctx)
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if err := a.kv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	a.log.Sync()
	return errors.Join(errs...)
}

// #endregion app
