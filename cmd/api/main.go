package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/api"
	"github.com/leozw/launchpad/internal/api/handlers"
	"github.com/leozw/launchpad/internal/config"
	"github.com/leozw/launchpad/internal/customers"
	"github.com/leozw/launchpad/internal/deploy"
	"github.com/leozw/launchpad/internal/dispatch"
	"github.com/leozw/launchpad/internal/domains"
	"github.com/leozw/launchpad/internal/metrics"
	"github.com/leozw/launchpad/internal/projects"
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

	// Database
	db, err := postgres.NewConnection(cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis
	cache := redis.NewClient(cfg.Redis.URL)
	defer cache.Close()

	// Queue
	jobQueue := queue.NewRedisQueue(cache.Client)

	collector := metrics.NewCollector()

	// Services
	customerSvc := customers.NewService(db, logger)
	projectSvc := projects.NewService(db, logger)
	dispatchSvc := dispatch.NewService(db, cache, logger)
	deploySvc := deploy.NewService(db, db, jobQueue, nil, collector, logger, cfg.Platform.Domain)
	verifier := domains.NewVerifier(cfg.Platform.DNSResolver, cfg.Platform.EdgeHost)

	h := handlers.NewHandler(customerSvc, projectSvc, deploySvc, dispatchSvc, verifier, logger)
	server := api.NewServer(cfg, h, customerSvc, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
