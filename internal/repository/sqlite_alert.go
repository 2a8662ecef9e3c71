package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

func (s *SQLiteDB) AddAlert(ctx context.Context, a *models.Alert) error {
	return insertAlertSQLite(ctx, s.db, a)
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAlertSQLite(ctx context.Context, db sqlExecer, a *models.Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = models.AlertStatusActive
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Type, string(a.Severity), a.Title, a.Message, a.Location,
		a.Status, a.IsRead, a.ReportID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting alert %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteDB) ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1 = 1`
	var args []any

	if opts.UnreadOnly {
		query += ` AND is_read = 0`
	}
	if opts.Severity != "" {
		query += ` AND severity = ?`
		args = append(args, string(opts.Severity))
	}

	query += ` ORDER BY created_at DESC, id`

	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteDB) MarkAlertRead(ctx context.Context, id string) (*models.Alert, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("error marking alert %s read: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error marking alert %s read: %w", id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting alert %s: %w", id, err)
	}
	return a, nil
}

func (s *SQLiteDB) MarkAllAlertsRead(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE is_read = 0`)
	if err != nil {
		return 0, fmt.Errorf("error marking alerts read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error marking alerts read: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteDB) CountUnreadAlerts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts WHERE is_read = 0`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread alerts: %w", err)
	}
	return count, nil
}
