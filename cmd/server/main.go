package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Miandari/dailygrit/internal/app"
	"github.com/Miandari/dailygrit/pkg/config"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "./configs/development.yaml", "path to the YAML config file")
	migrate := flag.Bool("migrate", false, "apply pending migrations before serving")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Logging)
	logger.Info("Starting dailygrit server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrate {
		applied, err := app.Migrate(ctx, cfg)
		if err != nil {
			logger.Fatalf("Failed to migrate: %v", err)
		}
		logger.Infof("Applied %d migration(s)", len(applied))
	}

	a, err := app.New(ctx, cfg, metrics.Default())
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	logger.Info("Press Ctrl+C to shutdown")
	if err := a.Run(ctx); err != nil {
		logger.Errorf("Server error: %v", err)
		return
	}
	logger.Info("Shutdown complete")
}
