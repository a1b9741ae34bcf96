package app

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/db"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/observability"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime/bus"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
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
	LoadDotEnv(log)
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	contentBus := newContentBus(log, cfg)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, reposet, serviceOptions{
		JWTSecretKey:      cfg.JWTSecretKey,
		Bus:               contentBus,
		Hooks:             aggregates.MultiHooks(aggregates.NewLogHooks(log), metricsHooks(metrics)),
		Sink:              metrics.DispatchSink(),
		AuditQueueSize:    cfg.AuditQueueSize,
		NotifyQueueSize:   cfg.NotifyQueueSize,
		NotifyTimeout:     cfg.NotifyTimeout,
		SchedulerInterval: cfg.SchedulerInterval,
	})

	if err := seedCategories(ctx, log, cfg.CategorySeedFile, serviceset.Categories); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, handlerset, middleware, serviceset, routerOptions{
		ServiceName: cfg.Otel.ServiceName,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     metrics,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// metricsHooks keeps a nil registry out of the hook chain.
func metricsHooks(m *observability.Metrics) aggregates.Hooks {
	if m == nil {
		return nil
	}
	return m
}

func newContentBus(log *logger.Logger, cfg Config) bus.Bus {
	if cfg.RedisAddr == "" {
		return bus.NewLogBus(log)
	}
	b, err := bus.NewRedisBus(log, bus.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.ContentEventsChannel,
	})
	if err != nil {
		log.Warn("Redis content bus unavailable; falling back to log bus", "error", err, "addr", cfg.RedisAddr)
		return bus.NewLogBus(log)
	}
	return b
}

func seedCategories(ctx context.Context, log *logger.Logger, path string, categories services.CategoryService) error {
	if path == "" {
		return nil
	}
	seeds, err := services.LoadCategorySeeds(path)
	if err != nil {
		return fmt.Errorf("load category seeds: %w", err)
	}
	n, err := categories.Seed(ctx, seeds)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	log.Info("Category seed applied", "file", path, "created", n)
	return nil
}

// Run serves HTTP and runs the scheduled publisher until ctx ends or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartPostgresCollector(gctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(gctx, a.Log, a.Cfg.RedisAddr, a.Cfg.RedisPassword)

	g.Go(func() error {
		a.Log.Info("Server listening", "port", a.Cfg.Port)
		return a.Server.Run(gctx, ":"+a.Cfg.Port)
	})
	if a.Services.Publisher != nil {
		g.Go(func() error {
			return a.Services.Publisher.Run(gctx)
		})
	}
	return g.Wait()
}

// Close drains the side-effect queues, then releases the database and tracer.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	if a.Services.Notifier != nil {
		if err := a.Services.Notifier.Close(ctx); err != nil {
			a.Log.Warn("Content notifier did not drain", "error", err)
		}
	}
	if a.Services.AuditDispatcher != nil {
		if err := a.Services.AuditDispatcher.Close(ctx); err != nil {
			a.Log.Warn("Audit dispatcher did not drain", "error", err)
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("Postgres close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
