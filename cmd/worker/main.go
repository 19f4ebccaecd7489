package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/config"
	"github.com/leozw/launchpad/internal/deploy"
	"github.com/leozw/launchpad/internal/metrics"
	"github.com/leozw/launchpad/internal/queue"
	"github.com/leozw/launchpad/internal/storage/postgres"
	"github.com/leozw/launchpad/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cache := redis.NewClient(cfg.Redis.URL)
	defer cache.Close()

	jobQueue := queue.NewRedisQueue(cache.Client)
	collector := metrics.NewCollector()

	builder := &deploy.SimulatedBuilder{Duration: cfg.Builder.Duration}
	deploySvc := deploy.NewService(db, db, jobQueue, builder, collector, logger, cfg.Platform.Domain)

	pool := deploy.NewWorkerPool(jobQueue, deploySvc, logger, cfg.Builder.WorkerCount, cfg.Builder.PopTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	go pool.Start(ctx)

	// Queue depth tells operators whether workers are keeping up.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depth, err := jobQueue.Length(ctx)
				if err != nil {
					logger.Warn("Failed to read queue depth", zap.Error(err))
					continue
				}
				logger.Info("Build queue depth", zap.Int64("depth", depth))
			}
		}
	}()

	logger.Info("Build worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	logger.Info("Worker exited")
}
