// Package bootstrap assembles the console from configuration: database,
// key-value store, services, handlers and the HTTP server.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	crmapp "github.com/bizconsole/backend/internal/application/crm"
	"github.com/bizconsole/backend/internal/application/export"
	logisticsapp "github.com/bizconsole/backend/internal/application/logistics"
	"github.com/bizconsole/backend/internal/infrastructure/auth"
	"github.com/bizconsole/backend/internal/infrastructure/config"
	"github.com/bizconsole/backend/internal/infrastructure/event"
	"github.com/bizconsole/backend/internal/infrastructure/kvstore"
	"github.com/bizconsole/backend/internal/infrastructure/logger"
	"github.com/bizconsole/backend/internal/infrastructure/migration"
	"github.com/bizconsole/backend/internal/infrastructure/mockdata"
	"github.com/bizconsole/backend/internal/infrastructure/persistence"
	"github.com/bizconsole/backend/internal/infrastructure/persistence/crmstore"
	"github.com/bizconsole/backend/internal/infrastructure/storage"
	"github.com/bizconsole/backend/internal/infrastructure/telemetry"
	"github.com/bizconsole/backend/internal/interfaces/http/handler"
	"github.com/bizconsole/backend/internal/interfaces/http/middleware"
	"github.com/bizconsole/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Version is reported by /api/v1/system/info; set with -ldflags
var Version = "dev"

// App owns every long-lived resource of a running console
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *persistence.Database
	Redis   redis.UniversalClient
	KV      kvstore.Store
	Metrics *telemetry.Metrics
	Engine  *gin.Engine

	bus         *event.InMemoryEventBus
	tracer      *telemetry.TracerProvider
	logs        *telemetry.LoggerProvider
	rateLimiter *middleware.RateLimiter
	closers     []func() error
}

// NewLogger builds the zap logger described by cfg.Log
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// OpenDatabase connects with a zap-backed gorm logger and brings the schema
// up to date: SQL migrations on postgres, AutoMigrate on sqlite.
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewSQLLogger(log, logger.ParseSQLLevel(cfg.Log.Level), cfg.Database.SlowQuery)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == "postgres" {
		sqlDB, err := db.DB.DB()
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		m, err := migration.New(sqlDB, log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		// the migrator shares sqlDB, so it is not closed here
		if err := m.Up(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		return db, nil
	}

	if err := db.AutoMigrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// NewRedis returns a client when any component needs one: the redis kv
// backend or cross-instance cache invalidation
func NewRedis(cfg *config.Config) redis.UniversalClient {
	if cfg.KV.Backend != "redis" && !cfg.Cache.PubSubEnabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// New wires the console. Close releases what it opened, also after an error.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (app *App, err error) {
	app = &App{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	app.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to start tracing: %w", err)
	}

	app.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to start log export: %w", err)
	}
	log = app.logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	app.Logger = log

	app.DB, err = OpenDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, app.DB.Close)
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled
	if cfg.Database.Driver == "sqlite" {
		dbTracing.DBSystem = "sqlite"
	}
	if err = telemetry.NewDBTracingPlugin(dbTracing, log).Register(app.DB.DB); err != nil {
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	if cfg.Telemetry.MetricsEnabled {
		app.Metrics = telemetry.NewMetrics()
		if sqlDB, dbErr := app.DB.DB.DB(); dbErr == nil {
			if err = app.Metrics.RegisterDB(sqlDB, cfg.Database.DBName); err != nil {
				return nil, fmt.Errorf("failed to register database metrics: %w", err)
			}
		}
	}

	if app.Redis = NewRedis(cfg); app.Redis != nil {
		app.closers = append(app.closers, app.Redis.Close)
	}

	app.KV, err = kvstore.New(cfg.KV, kvstore.Deps{DB: app.DB.DB, Redis: app.Redis, Logger: log})
	if err != nil {
		return nil, err
	}
	if cfg.Mock.SeedOnStart {
		res, seedErr := mockdata.Seed(ctx, app.KV, SeedOptions(cfg, false), log)
		if seedErr != nil {
			return nil, fmt.Errorf("failed to seed crm data: %w", seedErr)
		}
		log.Info("CRM data seeded", zap.Any("written", res.Written), zap.Strings("skipped", res.Skipped))
	}

	objects, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open export storage: %w", err)
	}
	exporter := export.NewExporter(objects)

	app.bus = event.NewInMemoryEventBus(log)
	crmRepos := crmapp.Repositories{
		Customers:     crmstore.NewCustomerRepository(app.KV),
		Leads:         crmstore.NewLeadRepository(app.KV),
		Opportunities: crmstore.NewOpportunityRepository(app.KV),
		Activities:    crmstore.NewActivityRepository(app.KV),
	}
	crmapp.RegisterAutomations(app.bus, crmRepos, log)
	crmServices := crmapp.NewServices(crmRepos, NewSimulator(cfg, app.Metrics), app.bus)

	lr := persistence.NewLogisticsRepositories(app.DB.DB)
	logisticsServices := logisticsapp.NewServices(logisticsapp.Repositories{
		Products:             lr.Products,
		Categories:           lr.Categories,
		Facilities:           lr.Facilities,
		Suppliers:            lr.Suppliers,
		Customers:            lr.Customers,
		Addresses:            lr.Addresses,
		Orders:               lr.Orders,
		Shipments:            lr.Shipments,
		InventoryItems:       lr.InventoryItems,
		InventoryItemDetails: lr.InventoryItemDetails,
	})

	checks := map[string]handler.Pinger{
		"database": handler.PingFunc(func(context.Context) error { return app.DB.Ping() }),
	}
	if app.Redis != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return app.Redis.Ping(ctx).Err() })
	}

	opts := router.Options{
		Config:  cfg,
		Logger:  log,
		Metrics: app.Metrics,
		Handlers: router.Handlers{
			CRM:       handler.NewCRMHandler(crmServices, exporter),
			Logistics: handler.NewLogisticsHandler(logisticsServices, exporter),
			System:    handler.NewSystemHandler(cfg.App.Name, Version, checks),
		},
	}
	if cfg.Auth.Enabled {
		opts.JWT = auth.NewJWTService(cfg.Auth.JWT)
		if app.Redis != nil {
			opts.Blacklist = auth.NewRedisTokenBlacklist(app.Redis)
		} else {
			opts.Blacklist = auth.NewInMemoryTokenBlacklist()
		}
		opts.Handlers.Auth = handler.NewAuthHandler(auth.NewUserStore(cfg.Auth.Users), opts.JWT, opts.Blacklist)
	}
	if cfg.HTTP.RateLimitEnabled {
		app.rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		opts.RateLimiter = app.rateLimiter
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.Engine = router.NewEngine(opts)
	return app, nil
}

// SeedOptions maps the mock settings onto mockdata options
func SeedOptions(cfg *config.Config, force bool) mockdata.SeedOptions {
	return mockdata.SeedOptions{
		Seed: cfg.Mock.Seed,
		Counts: mockdata.Counts{
			Customers:     cfg.Mock.Customers,
			Leads:         cfg.Mock.Leads,
			Opportunities: cfg.Mock.Opportunities,
			Activities:    cfg.Mock.Activities,
		},
		Force: force,
	}
}

// NewSimulator builds the CRM latency and failure simulator; injected
// failures are counted when metrics are on
func NewSimulator(cfg *config.Config, metrics *telemetry.Metrics) *crmapp.Simulator {
	sc := crmapp.SimulatorConfig{
		FailureRate: cfg.Mock.FailureRate,
		MinLatency:  cfg.Mock.MinLatency,
		MaxLatency:  cfg.Mock.MaxLatency,
	}
	if metrics != nil {
		sc.OnFailure = metrics.SimulatedFailure
	}
	return crmapp.NewSimulator(sc)
}

// Run serves HTTP until ctx is cancelled, then shuts the server down within
// HTTP.ShutdownTimeout
func (a *App) Run(ctx context.Context) error {
	cfg := a.Config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        a.Engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.bus.Start(gctx)
	})
	g.Go(func() error {
		a.Logger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down server...")

		timeout := cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return a.bus.Stop(shutdownCtx)
	})
	return g.Wait()
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.logs != nil {
		if err := a.logs.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
