package main

import (
	"log"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/auth"
	"github.com/afterlife-dev/afterlife/internal/config"
	"github.com/afterlife-dev/afterlife/internal/handlers"
	"github.com/afterlife-dev/afterlife/internal/notifier"
	"github.com/afterlife-dev/afterlife/internal/router"
	"github.com/afterlife-dev/afterlife/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := auth.InitJWTSecret(cfg.JWTSecret); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	handlers.Domain = cfg.Domain
	services.EmailWebhookURL = cfg.EmailWebhookURL
	services.EmailFrom = cfg.EmailFrom
	services.ClientURL = cfg.ClientURL

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	notifier.Initialize()
	defer notifier.Shutdown()

	r := router.NewRouter()

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
