package router

import (
	"github.com/bizconsole/backend/internal/infrastructure/auth"
	"github.com/bizconsole/backend/internal/infrastructure/config"
	"github.com/bizconsole/backend/internal/infrastructure/logger"
	"github.com/bizconsole/backend/internal/infrastructure/telemetry"
	"github.com/bizconsole/backend/internal/interfaces/http/handler"
	"github.com/bizconsole/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LogisticsBasePath is where the logistics API is mounted
const LogisticsBasePath = "/logistics/api"

// Handlers bundles the HTTP handlers the engine mounts
type Handlers struct {
	Auth      *handler.AuthHandler
	CRM       *handler.CRMHandler
	Logistics *handler.LogisticsHandler
	System    *handler.SystemHandler
}

// Options configures NewEngine
type Options struct {
	Config   *config.Config
	Logger   *zap.Logger
	Handlers Handlers

	// JWT and Blacklist are used when Config.Auth.Enabled
	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist

	// RateLimiter is used when Config.HTTP.RateLimitEnabled; the caller owns Stop
	RateLimiter *middleware.RateLimiter

	// Metrics enables request metrics and /metrics when set
	Metrics *telemetry.Metrics
}

// NewEngine builds the gin engine with the middleware stack and every route.
//
// Order: RequestID, Logger, Recovery, Secure, CORS, BodyLimit, RateLimit,
// Tracing, HTTPMetrics, JWT, TraceAttributes.
func NewEngine(opts Options) *gin.Engine {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(cors))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimitEnabled && opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	if opts.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(opts.Metrics))
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if cfg.Auth.Enabled {
		engine.Use(middleware.JWTAuth(middleware.JWTConfig{
			JWTService: opts.JWT,
			Blacklist:  opts.Blacklist,
			SkipPaths:  middleware.DefaultSkipPaths,
			Logger:     log,
		}))
	}
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TraceAttributes())
	}

	engine.NoRoute(middleware.NotFound())

	h := opts.Handlers
	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	public := NewRouter(engine)
	if h.Auth != nil {
		public.Register(AuthRoutes(h.Auth))
	}
	if h.System != nil {
		public.Register(SystemRoutes(h.System))
	}
	public.Setup()

	readOnly := middleware.ReadOnlyFor(middleware.RoleViewer)
	if h.CRM != nil {
		NewRouter(engine).Use(readOnly).Register(CRMRoutes(h.CRM)).Setup()
	}
	if h.Logistics != nil {
		logistics := NewRouter(engine, WithBasePath(LogisticsBasePath)).Use(readOnly)
		for _, g := range LogisticsRoutes(h.Logistics) {
			logistics.Register(g)
		}
		logistics.Setup()
	}
	return engine
}
