package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mousaahmad63636/spotlymobile/internal/app"
	"github.com/Mousaahmad63636/spotlymobile/internal/config"
	"github.com/Mousaahmad63636/spotlymobile/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("spotly-admin", cfg.LogLevel)
	log.Info("starting admin console",
		slog.String("environment", cfg.Environment),
		slog.String("panel_addr", cfg.PanelAddr),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("admin console stopped")
}
