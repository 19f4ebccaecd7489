package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/config"
	"github.com/leozw/launchpad/internal/metrics"
	"github.com/leozw/launchpad/internal/reconciler"
	"github.com/leozw/launchpad/internal/storage/postgres"
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

	collector := metrics.NewCollector()
	sweeper := reconciler.NewSweeper(db, collector, logger, cfg.Reconciler.Interval, cfg.Reconciler.Deadline)

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Start(ctx)

	logger.Info("Reconciler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down reconciler...")
	cancel()
	logger.Info("Reconciler exited")
}
