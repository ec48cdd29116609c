package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tables-pro/pkg/config"
	"github.com/noah-isme/tables-pro/pkg/database"
	"github.com/noah-isme/tables-pro/pkg/logger"
)

func main() {
	seed := flag.String("seed", "", "SQL data file to load after migrating (defaults to SEED_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("migration failed", zap.Error(err))
	}
	logr.Info("migrations applied")

	file := *seed
	if file == "" {
		file = cfg.Seed.File
	}
	if file == "" {
		return
	}
	if err := database.Seed(ctx, db, file); err != nil {
		logr.Fatal("seed failed", zap.String("file", file), zap.Error(err))
	}
	logr.Info("seed loaded", zap.String("file", file))
}
