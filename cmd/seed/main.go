package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-disaster-ops/internal/config"
	"github.com/mr1hm/go-disaster-ops/internal/logging"
	"github.com/mr1hm/go-disaster-ops/internal/repository"
	"github.com/mr1hm/go-disaster-ops/internal/seed"
)

func main() {
	path := flag.String("file", "fixtures/demo.yaml", "YAML fixture with predictions and resources")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fx, err := seed.LoadFile(*path)
	if err != nil {
		logging.Fatalf("Failed to load fixture: %v", err)
	}

	db, err := repository.Open(ctx, cfg.DB)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	res, err := seed.Apply(ctx, db, fx)
	if err != nil {
		logging.Fatalf("Seeding failed: %v", err)
	}

	slog.Info("seed complete", "file", *path, "db", cfg.DB.Driver,
		"predictions", res.Predictions, "resources", res.Resources, "skipped", res.Skipped)
}
