package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"asset-custody/internal/adapter/directory"
	"asset-custody/internal/adapter/eventsink"
	httpadp "asset-custody/internal/adapter/http"
	"asset-custody/internal/adapter/metrics"
	"asset-custody/internal/adapter/middleware"
	"asset-custody/internal/adapter/repository/mysql"
	"asset-custody/internal/config"
	"asset-custody/internal/infrastructure/cache"
	"asset-custody/internal/infrastructure/db"
	"asset-custody/internal/infrastructure/logging"
	"asset-custody/internal/usecase/custody"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if cfg.DBAutoMigrate {
		if err := mysql.Migrate(context.Background(), gdb); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	recorder := metrics.NewRecorder()
	uc := custody.NewUsecase(
		mysql.NewAssignmentRepository(gdb),
		mysql.NewEventRepository(gdb),
		mysql.NewGormUoW(gdb),
		custody.WithSink(eventsink.Multi{
			eventsink.NewLogSink(logger.Named("events")),
			eventsink.NewRedisPublisher(rdb, cfg.EventChannel),
		}),
		custody.WithDirectory(directory.NewRedisDirectory(rdb)),
		custody.WithObserver(recorder),
		custody.WithLogger(logger.Named("custody")),
	)

	health := httpadp.NewHandler(map[string]httpadp.Probe{
		"db":    db.Probe(gdb),
		"redis": cache.Probe(rdb),
	})
	custodyHandler := httpadp.NewCustodyHandler(uc, logger.Named("http"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), middleware.Logger(logger.Named("access")), middleware.RequestID())

	// routes
	e.GET("/health", health.Health)
	e.GET("/metrics", echo.WrapHandler(recorder.Handler()))
	custodyHandler.Register(e.Group(""),
		middleware.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL(), logger.Named("idempotency")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
