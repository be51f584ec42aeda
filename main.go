package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"capsule-hotel/cmd"
	"capsule-hotel/internal/cache"
	"capsule-hotel/internal/data/memory"
	"capsule-hotel/internal/data/repository"
	"capsule-hotel/internal/event"
	"capsule-hotel/internal/usecase"
	"capsule-hotel/internal/wire"
	"capsule-hotel/pkg/database"
	"capsule-hotel/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	loc, err := config.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("storage", config.App.StorageDriver),
		zap.String("timezone", loc.String()),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repos *repository.Repository
	switch config.App.StorageDriver {
	case "memory":
		store := memory.NewStore()
		offering := store.SeedDemo()
		repos = store.Repository()
		logger.Warn("Using in-memory storage; data is lost on restart",
			zap.String("offering_id", offering.ID.String()))
	default:
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Database connected successfully")
		repos = repository.NewRepository(db, logger)
	}

	opts := []usecase.Option{usecase.WithLocation(loc)}

	if config.Redis.Addr != "" {
		rc := cache.NewRedisCache(config.Redis, logger)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			logger.Warn("Redis unreachable; room cache and sweep lock may fail", zap.Error(err))
		}
		cancel()
		defer rc.Close()
		opts = append(opts, usecase.WithRoomCache(rc), usecase.WithLocker(rc))
		logger.Info("Redis enabled", zap.String("addr", config.Redis.Addr))
	}

	if len(config.Kafka.Brokers) > 0 {
		producer := event.NewProducer(config.Kafka.Brokers, config.Kafka.Topic, logger)
		defer producer.Close()
		opts = append(opts, usecase.WithEventPublisher(producer))
		logger.Info("Kafka events enabled",
			zap.Strings("brokers", config.Kafka.Brokers),
			zap.String("topic", config.Kafka.Topic))
	}

	service := usecase.NewService(repos, config, logger, opts...)
	service.Sweeper.Start(ctx)
	defer service.Sweeper.Stop()

	app := wire.Wiring(service, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
	logger.Info("Shutdown complete")
}
