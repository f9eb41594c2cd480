package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soltixdb/diskhealth/internal/config"
	"github.com/soltixdb/diskhealth/internal/grpc"
	"github.com/soltixdb/diskhealth/internal/ingest"
	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/queue"
	"github.com/soltixdb/diskhealth/internal/router"
	"github.com/soltixdb/diskhealth/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Disk health service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Control-plane records
	logger.Info("Opening control store", "type", cfg.ControlStore.Type)
	store, err := metadata.NewControlStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open control store", "error", err)
	}
	defer func() { _ = store.Close() }()

	// Snapshot ingestion is optional
	var worker *ingest.Worker
	if cfg.Ingest.Enabled {
		logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
		queueClient, err := queue.NewQueue(cfg.Queue)
		if err != nil {
			logger.Fatal("Failed to connect to Queue", "error", err)
		}
		defer func() { _ = queueClient.Close() }()

		worker, err = ingest.NewWorker(logger, queueClient, store, cfg.Ingest)
		if err != nil {
			logger.Fatal("Failed to create ingest worker", "error", err)
		}
		if err := worker.Start(); err != nil {
			logger.Fatal("Failed to start ingest worker", "error", err)
		}
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, store, *cfg, Version)

	// gRPC health service runs until serverCtx is cancelled
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()
	grpcDone := make(chan struct{})
	if cfg.Server.GRPCPort != 0 {
		healthServer := grpc.NewHealthServer(cfg.Server.GRPCAddress(), store, logger)
		go func() {
			defer close(grpcDone)
			if err := healthServer.Start(serverCtx); err != nil {
				logger.Error("gRPC server failed", "error", err)
			}
		}()
	} else {
		close(grpcDone)
	}

	go func() {
		addr := cfg.Server.Address()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	serverCancel()
	<-grpcDone

	if worker != nil {
		if err := worker.Stop(); err != nil {
			logger.Warn("Failed to stop ingest worker", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
