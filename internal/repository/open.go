package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mr1hm/go-disaster-ops/internal/config"
)

// Open connects to the store selected by DB_DRIVER and applies its migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create db directory: %w", err)
			}
		}
		return NewSQLiteDB(cfg.Path)
	case config.DriverPostgres:
		return NewPostgresDB(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.Driver)
	}
}
