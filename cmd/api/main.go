package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agiledatalabs/booking-management-system/internal/adapter/cache"
	"github.com/agiledatalabs/booking-management-system/internal/adapter/events"
	"github.com/agiledatalabs/booking-management-system/internal/adapter/handler"
	"github.com/agiledatalabs/booking-management-system/internal/adapter/repository/sqlstore"
	"github.com/agiledatalabs/booking-management-system/internal/core/holds"
	"github.com/agiledatalabs/booking-management-system/internal/core/ports"
	"github.com/agiledatalabs/booking-management-system/internal/core/services"
	"github.com/agiledatalabs/booking-management-system/internal/platform/clock"
	"github.com/agiledatalabs/booking-management-system/internal/platform/config"
	"github.com/agiledatalabs/booking-management-system/internal/platform/database"
	"github.com/agiledatalabs/booking-management-system/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(database.Config{
		Driver:          cfg.DBDriver,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		MaxConns:        cfg.DBMaxConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to db after retries", zap.Error(err))
	}
	defer db.Close()

	dialect := sqlstore.Dialect(cfg.DBDriver)
	if cfg.DBAutoMigrate {
		if err := migrate(db, dialect); err != nil {
			zlog.Fatal("failed to migrate schema", zap.Error(err))
		}
	}

	var resourceRepo ports.ResourceRepository = sqlstore.NewResourceRepository(db, dialect)
	orderRepo := sqlstore.NewOrderRepository(db, dialect)

	if cfg.RedisEnabled {
		redisClient, err := connectRedis(cfg, zlog)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		resourceRepo = cache.NewResourceCache(resourceRepo, redisClient, cfg.CatalogCacheTTL, zlog)
	}

	producer, err := newProducer(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to create event producer", zap.Error(err))
	}
	defer producer.Close()

	bookingService := services.NewBookingService(resourceRepo, orderRepo, holds.NewTable(clock.NewSystem()),
		services.WithHoldDuration(cfg.HoldDuration),
		services.WithMaxHoldsPerUser(cfg.MaxHoldsPerUser),
		services.WithLogger(zlog),
		services.WithEventPublisher(producer),
	)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go bookingService.RunBackgroundCleanup(workerCtx)

	router := handler.NewRouter(handler.NewBookingHandler(bookingService, zlog), handler.RouterConfig{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, zlog)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server startup failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	stopWorker()

	zlog.Info("server exiting")
}

func migrate(db *sql.DB, dialect sqlstore.Dialect) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sqlstore.Migrate(ctx, db, dialect)
}

func connectRedis(cfg *config.Config, zlog *zap.Logger) (*redis.Client, error) {
	zlog.Info("connecting to redis", zap.String("addr", cfg.RedisAddr()))

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	zlog.Info("redis connected")
	return client, nil
}

func newProducer(cfg *config.Config, zlog *zap.Logger) (*events.Producer, error) {
	topics := events.Topics{
		OrderConfirmed: cfg.KafkaOrderTopic,
		BlockExpired:   cfg.KafkaExpiryTopic,
	}
	if !cfg.KafkaEnabled {
		zlog.Info("kafka disabled, events will only be logged")
		return events.NewProducer(nil, topics, zlog), nil
	}
	return events.NewKafkaProducer(cfg.Brokers(), topics, zlog)
}
