package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

func (s *SQLiteDB) AddReport(ctx context.Context, r *models.Report, alert *models.Alert) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO citizen_reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Type, string(r.Severity), r.Title, r.Description, r.Location,
		r.Coordinates.Lat, r.Coordinates.Lng, string(r.Status), r.ReporterName,
		r.ReporterContact, evidence, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting report %s: %w", r.ID, err)
	}

	if alert != nil {
		if err := insertAlertSQLite(ctx, tx, alert); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing report %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM citizen_reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting report %s: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteDB) ListReports(ctx context.Context, limit int) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM citizen_reports ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *SQLiteDB) UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE citizen_reports SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("error updating report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error updating report %s: %w", id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetReport(ctx, id)
}
