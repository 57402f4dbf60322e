package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/server"
	"github.com/dmitrijs2005/secanalytics/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "app stopped with error", "error", err)
		os.Exit(1)
	}
}
