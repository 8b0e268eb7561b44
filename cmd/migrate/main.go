package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"quizhub/internal/config"
	"quizhub/internal/database"
	"quizhub/internal/logger"

	"go.uber.org/zap"
)

func parseDirection(raw string) (database.Direction, error) {
	switch database.Direction(raw) {
	case database.Up, database.Down:
		return database.Direction(raw), nil
	default:
		return "", fmt.Errorf("unknown direction %q (want up or down)", raw)
	}
}

func main() {
	directionFlag := flag.String("direction", string(database.Up), "migration direction: up or down")
	flag.Parse()

	direction, err := parseDirection(*directionFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.DB, cfg.DB.Driver, direction); err != nil {
		l.Fatal("Failed to run migrations", zap.String("direction", string(direction)), zap.Error(err))
	}
	l.Info("Migrations finished", zap.String("driver", cfg.DB.Driver), zap.String("direction", string(direction)))
}
