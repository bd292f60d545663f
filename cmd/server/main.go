package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/minsukang/accounts/internal/api"
	"github.com/minsukang/accounts/internal/events"
	"github.com/minsukang/accounts/internal/migrations"
	"github.com/minsukang/accounts/pkg/config"
	"github.com/minsukang/accounts/pkg/mongox"
)

func main() {
	cfg, log, err := config.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting accounts server",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.Server.Environment),
	)

	// Bring the store to a consistent, migrated state before serving
	if err := migrations.Run(cfg.Mongo.URI, cfg.Mongo.Database, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	mongoClient, err := mongox.NewClient(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout, log)
	if err != nil {
		log.Fatal("Failed to initialize Mongo client", zap.Error(err))
	}
	defer mongoClient.Close()

	bus := events.NewBus(log)

	apiServer, err := api.NewServer(cfg, log, mongoClient, bus)
	if err != nil {
		log.Fatal("Failed to create API server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		cancel()
	}()

	if err := apiServer.Start(ctx); err != nil {
		log.Error("Server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server gracefully stopped")
}
