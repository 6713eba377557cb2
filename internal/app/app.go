package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/data/db"
	"github.com/yungbote/pathforge-backend/internal/data/repos"
	"github.com/yungbote/pathforge-backend/internal/observability"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    repos.Repos
	Clients  Clients
	Services Services

	store        *db.Service
	otelShutdown func(context.Context) error
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, cfg.Tracing)
	metrics := observability.NewMetrics()

	store, err := db.Open(log)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := store.DB()

	reposet := repos.New(theDB, log)

	clientset, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = store.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	serviceset, err := wireServices(ctx, theDB, log, cfg, reposet, clientset, metrics)
	if err != nil {
		clientset.Close()
		_ = store.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

// Start serves /metrics until ctx is done.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.Cfg.MetricsAddr == "" {
		return
	}
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
