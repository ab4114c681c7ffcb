package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/corgadogabriel/portfolio-api/internal/config"
	"github.com/corgadogabriel/portfolio-api/internal/logging"
	"github.com/corgadogabriel/portfolio-api/internal/server"
	"github.com/corgadogabriel/portfolio-api/internal/version"
)

func main() {
	if os.Getenv("ENV") != "production" {
		os.Setenv("ENV", "development")
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logging.InitLogger(&logging.Config{
		File:       cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
	}); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := logging.GetGlobalLogger()
	defer logger.Close()

	logger.Info("portfolio-api %s starting in %s mode", version.String(), cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server exited with error: %v", err)
		os.Exit(1)
	}
}
