package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/seed"
	"github.com/premsagarmanikyala/mantrix-ai/internal/http"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Store    repos.Store
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	shutdownOTel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	shutdownOTel := observability.InitOTel(ctx, log, cfg.Otel)

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics("mantrix")
	}

	store, theDB, err := wireRepos(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, err
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		closeDB(theDB)
		log.Sync()
		return nil, err
	}

	if cfg.SeedPath != "" {
		if err := applySeed(ctx, log, store, cfg); err != nil {
			clients.Close(ctx)
			closeDB(theDB)
			log.Sync()
			return nil, err
		}
	}

	serviceset := wireServices(log, cfg, store, clients, metrics)
	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)

	server, err := http.NewServer(routerConfig(log, cfg, handlerset, middleware, metrics), ":"+cfg.Port)
	if err != nil {
		clients.Close(ctx)
		closeDB(theDB)
		log.Sync()
		return nil, fmt.Errorf("init http server: %w", err)
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Store:        store,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		shutdownOTel: shutdownOTel,
	}, nil
}

func applySeed(ctx context.Context, log *logger.Logger, store repos.Store, cfg Config) error {
	f, err := seed.LoadFile(cfg.SeedPath)
	if err != nil {
		return fmt.Errorf("load seed file: %w", err)
	}
	res, err := seed.Apply(dbctx.Context{Ctx: ctx}, log, store, f, cfg.SeedOwnerEmail)
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	log.Info("Seed applied", "path", cfg.SeedPath, "owner_id", res.OwnerID, "created", res.Created, "skipped", res.Skipped)
	return nil
}

// Run serves HTTP until ctx is canceled. Domain events seen on the bus are logged at debug level.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	if a.Clients.EventBus != nil {
		eventLog := a.Log.With("component", "EventAudit")
		if err := a.Clients.EventBus.StartForwarder(ctx, func(evt redis.Event) {
			eventLog.Debug("domain event", "type", evt.Type, "owner_id", evt.OwnerID, "entity_id", evt.EntityID)
		}); err != nil {
			a.Log.Warn("event audit subscription failed", "error", err)
		}
	}
	return a.Server.Run(ctx, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	a.Clients.Close(ctx)
	closeDB(a.DB)
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

func closeDB(theDB *gorm.DB) {
	if theDB == nil {
		return
	}
	if sqlDB, err := theDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
