package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *PostgresDB) AddAlert(ctx context.Context, a *models.Alert) error {
	return insertAlertPostgres(ctx, s.pool, a)
}

func insertAlertPostgres(ctx context.Context, db pgExecer, a *models.Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = models.AlertStatusActive
	}

	_, err := db.Exec(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.Type, string(a.Severity), a.Title, a.Message, a.Location,
		a.Status, a.IsRead, a.ReportID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting alert %s: %w", a.ID, err)
	}
	return nil
}

func (s *PostgresDB) ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE TRUE`
	var args []any

	if opts.UnreadOnly {
		query += ` AND NOT is_read`
	}
	if opts.Severity != "" {
		args = append(args, string(opts.Severity))
		query += fmt.Sprintf(` AND severity = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC, id`

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
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

func (s *PostgresDB) MarkAlertRead(ctx context.Context, id string) (*models.Alert, error) {
	row := s.pool.QueryRow(ctx, `UPDATE alerts SET is_read = TRUE WHERE id = $1 RETURNING `+alertColumns, id)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error marking alert %s read: %w", id, err)
	}
	return a, nil
}

func (s *PostgresDB) MarkAllAlertsRead(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE alerts SET is_read = TRUE WHERE NOT is_read`)
	if err != nil {
		return 0, fmt.Errorf("error marking alerts read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresDB) CountUnreadAlerts(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alerts WHERE NOT is_read`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread alerts: %w", err)
	}
	return count, nil
}

func (s *PostgresDB) AddReport(ctx context.Context, r *models.Report, alert *models.Alert) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	if r.Status == "" {
		r.Status = models.ReportStatusReported
	}
	evidence, err := encodeEvidence(r.EvidenceURLs)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO citizen_reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.Type, string(r.Severity), r.Title, r.Description, r.Location,
		r.Coordinates.Lat, r.Coordinates.Lng, string(r.Status), r.ReporterName,
		r.ReporterContact, evidence, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting report %s: %w", r.ID, err)
	}

	if alert != nil {
		if err := insertAlertPostgres(ctx, tx, alert); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing report %s: %w", r.ID, err)
	}
	return nil
}

func (s *PostgresDB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM citizen_reports WHERE id = $1`, id)
	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting report %s: %w", id, err)
	}
	return r, nil
}

func (s *PostgresDB) ListReports(ctx context.Context, limit int) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM citizen_reports ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $1`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *PostgresDB) UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE citizen_reports SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+reportColumns,
		string(status), id,
	)
	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating report %s: %w", id, err)
	}
	return r, nil
}
