package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/legalarch/docai/internal/bootstrap"
	"github.com/legalarch/docai/internal/config"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewExtractionService(config.Load())
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		app.Logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
