package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"campkit/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create application instance
	application, err := app.NewApplication(os.Getenv("CAMPKIT_CONFIG"))
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start application
	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
