package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"medvis/internal/config"
	"medvis/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := appContainer.Pipeline(ctx)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", appConfig.Input.Path, err)
	}

	result, err := pipeline.Run(ctx)
	if err != nil {
		log.Fatalf("Report run failed: %v", err)
	}

	log.Printf("Wrote %s and %s in %s", result.CatPlot.Path, result.HeatMap.Path, result.Duration)
}
