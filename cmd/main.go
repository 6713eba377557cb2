package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yungbote/pathforge-backend/internal/app"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("app init failed", "error", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	a.Start(ctx)
	log.Info("pathforge ready", "formats", a.Services.Extractor.Formats())

	<-ctx.Done()
	log.Info("shutting down")
}
