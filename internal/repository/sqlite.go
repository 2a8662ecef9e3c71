package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteDB)(nil)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// One writer; also keeps ":memory:" a single shared database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS risk_predictions (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			location TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			probability REAL NOT NULL DEFAULT 0,
			severity TEXT NOT NULL,
			predicted_time DATETIME NOT NULL,
			affected_population INTEGER NOT NULL DEFAULT 0,
			risk_score REAL NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			source TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			quantity INTEGER NOT NULL,
			available INTEGER NOT NULL,
			road_status TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL,
			CHECK (available >= 0 AND available <= quantity)
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			is_read BOOLEAN NOT NULL DEFAULT 0,
			report_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS citizen_reports (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			location TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			status TEXT NOT NULL DEFAULT 'reported',
			reporter_name TEXT NOT NULL DEFAULT '',
			reporter_contact TEXT NOT NULL DEFAULT '',
			evidence_urls TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_predictions_active_risk ON risk_predictions(is_active, risk_score);
		CREATE INDEX IF NOT EXISTS idx_predictions_type ON risk_predictions(type);
		CREATE INDEX IF NOT EXISTS idx_resources_type ON resources(type);
		CREATE INDEX IF NOT EXISTS idx_alerts_unread ON alerts(is_read, created_at);
		CREATE INDEX IF NOT EXISTS idx_reports_created ON citizen_reports(created_at);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
