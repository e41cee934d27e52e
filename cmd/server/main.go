package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"planner-service/internal/app"
	"planner-service/internal/config"
	"planner-service/internal/server"
	"planner-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		_ = logger.Init("info")
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		_ = logger.Init("info")
		logger.Get().Warn(ctx, "bad log level, using info", logger.Error(err))
	}
	log := logger.Named("planner")

	if cfg.DatabaseURL == "" {
		log.Error(ctx, "database_url required (PLANNER_DATABASE_URL)")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error(ctx, "failed to connect to db", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	store := &app.PgStore{DB: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Error(ctx, "failed to prepare schema", logger.Error(err))
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var cache app.PatternCache
	if cfg.PatternCacheSize > 0 {
		cache = app.NewPatternCache(cfg.PatternCacheSize, cfg.PatternCacheTTL)
	}

	appInstance, err := app.New(cfg, store, cache, app.NewMetrics(reg), log.Named("http"))
	if err != nil {
		log.Error(ctx, "invalid configuration", logger.Error(err))
		os.Exit(1)
	}

	if cfg.JWTSecret == "" && len(cfg.StaticTokens) == 0 {
		log.Warn(ctx, "no jwt_secret or static_tokens configured; every API request will be rejected")
	}
	gin.SetMode(gin.ReleaseMode)
	router := appInstance.Router(app.RouterOptions{
		Auth:           app.AuthMiddleware(cfg.JWTSecret, cfg.StaticTokens),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if err := server.Run(ctx, cfg.Addr, router, log); err != nil {
		log.Error(ctx, "http server failed", logger.Error(err))
		os.Exit(1)
	}
}
