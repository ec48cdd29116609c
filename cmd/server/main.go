package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tables-pro/api/swagger"
	"github.com/noah-isme/tables-pro/internal/handler"
	"github.com/noah-isme/tables-pro/internal/middleware"
	"github.com/noah-isme/tables-pro/internal/repository"
	"github.com/noah-isme/tables-pro/internal/service"
	"github.com/noah-isme/tables-pro/internal/tables"
	"github.com/noah-isme/tables-pro/internal/web"
	"github.com/noah-isme/tables-pro/pkg/cache"
	"github.com/noah-isme/tables-pro/pkg/config"
	"github.com/noah-isme/tables-pro/pkg/database"
	"github.com/noah-isme/tables-pro/pkg/logger"
	corsmiddleware "github.com/noah-isme/tables-pro/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tables-pro/pkg/middleware/requestid"
	"github.com/noah-isme/tables-pro/pkg/session"
)

// @title Tables Pro
// @version 0.1.0
// @description Server-rendered movie tables with htmx partial updates, selection actions and exports.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(context.Background(), db); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	deps := map[string]handler.Pinger{"database": handler.PingFunc(db.PingContext)}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var redisClient *redis.Client
	if cfg.Session.Backend == config.SessionBackendRedis || cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	var store session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		store = session.NewMemoryStore()
	default:
		store = repository.NewSessionRepository(redisClient, logr)
	}
	manager := session.NewManager(store, session.NewSigner(cfg.Session.Secret, cfg.Session.TTL), session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}, logr)

	movies := service.NewMovieService(repository.NewMovieRepository(db), validator.New(), logr)
	if cfg.Cache.Enabled {
		movies.WithCache(service.NewCacheService(repository.NewCacheRepository(redisClient, "tablespro:"), metrics, cfg.Cache.TTL, logr))
	}
	opts := tables.Options{
		PerPage:    cfg.Tables.DefaultPerPage,
		ExportName: cfg.Tables.ExportName,
		Logger:     logr,
	}
	if metrics != nil {
		opts.Observer = metrics
	}
	registry := tables.Build(movies, opts)

	tmpl, err := web.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	}
	r.StaticFS("/static", web.Static())

	metricsHandler := handler.NewMetricsHandler(metrics, deps, logr)
	if metrics != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.Handlers{Metrics: metricsHandler})

	app := r.Group("/")
	app.Use(manager.Middleware())
	handler.RegisterRoutes(app, handler.Handlers{
		Tables: handler.NewTableHandler(registry, logr),
		Movies: handler.NewMovieHandler(movies, logr),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "session_backend", cfg.Session.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
