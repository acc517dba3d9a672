package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hamed0406/servicepoller/internal/app"
	"github.com/hamed0406/servicepoller/internal/config"
	"github.com/hamed0406/servicepoller/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if cfg.File != "" {
		logger.Info("config_file_loaded", zap.String("file", cfg.File))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup_failed", zap.Error(err))
		_ = logger.Sync()
		log.Fatal(err)
	}
	if err := a.Run(ctx); err != nil {
		logger.Error("exit_with_error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
