package main // Entry point package

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wqam/backend/internal/auth"
	"github.com/wqam/backend/internal/config"
	"github.com/wqam/backend/internal/database"
	"github.com/wqam/backend/internal/handler"
	"github.com/wqam/backend/internal/middleware"
	"github.com/wqam/backend/internal/notify"
	"github.com/wqam/backend/internal/queue"
	"github.com/wqam/backend/internal/repository"
	"github.com/wqam/backend/internal/router"
	"github.com/wqam/backend/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("schema setup failed", zap.Error(err))
	}

	store := repository.NewAccountRepo(db)
	codec := auth.NewTokenCodec(cfg.JWTSecret)

	// Redis is optional; without it the pending list is served uncached.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	if rdb == nil {
		logger.Warn("redis unavailable, response cache disabled")
	}

	notifier := notify.NewQueuePublisher(logger)
	accounts := service.NewAccountService(store, notifier, middleware.NewInvalidator(cacheCfg, rdb), cfg.BcryptCost, logger)
	authSvc := service.NewAuthService(store, codec, time.Duration(cfg.TokenTTLMin)*time.Minute)

	// The bootstrap admin must exist before the first request is served.
	if err := accounts.EnsureBootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal("bootstrap admin setup failed", zap.Error(err))
	}

	// Deliver queued notifications in the background; broker outages only
	// delay mail, they never take the API down.
	go queue.StartNotificationConsumer(logger)

	e := echo.New()
	router.Register(e, handler.NewAuthHandler(accounts, authSvc), handler.NewAdminHandler(accounts, authSvc), authSvc, cacheCfg, rdb)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
