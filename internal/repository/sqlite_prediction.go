package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

func (s *SQLiteDB) AddPrediction(ctx context.Context, p *models.RiskPrediction) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_predictions (`+predictionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Type, p.Location, p.Coordinates.Lat, p.Coordinates.Lng, p.Probability,
		string(p.Severity), p.PredictedTime, p.AffectedPopulation, p.RiskScore,
		p.Active(), p.Source, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting prediction %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetPrediction(ctx context.Context, id string) (*models.RiskPrediction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+predictionColumns+` FROM risk_predictions WHERE id = ?`, id)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting prediction %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteDB) PredictionExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM risk_predictions WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking prediction %s: %w", id, err)
	}
	return exists, nil
}

func (s *SQLiteDB) ListActivePredictions(ctx context.Context) ([]models.RiskPrediction, error) {
	return s.ListPredictions(ctx, PredictionFilter{})
}

func (s *SQLiteDB) ListPredictions(ctx context.Context, opts PredictionFilter) ([]models.RiskPrediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM risk_predictions WHERE is_active = 1`
	var args []any

	if opts.Type != "" {
		query += ` AND LOWER(type) = ?`
		args = append(args, strings.ToLower(opts.Type))
	}
	if opts.Severity != "" {
		query += ` AND severity = ?`
		args = append(args, string(opts.Severity))
	}

	query += ` ORDER BY risk_score DESC, created_at ASC`

	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing predictions: %w", err)
	}
	defer rows.Close()

	predictions := []models.RiskPrediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning prediction: %w", err)
		}
		predictions = append(predictions, *p)
	}
	return predictions, rows.Err()
}

func (s *SQLiteDB) UpdatePrediction(ctx context.Context, p *models.RiskPrediction) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE risk_predictions SET type = ?, location = ?, latitude = ?, longitude = ?,
			probability = ?, severity = ?, predicted_time = ?, affected_population = ?,
			risk_score = ?, is_active = ?, source = ?
		WHERE id = ?`,
		p.Type, p.Location, p.Coordinates.Lat, p.Coordinates.Lng, p.Probability,
		string(p.Severity), p.PredictedTime, p.AffectedPopulation, p.RiskScore,
		p.Active(), p.Source, p.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating prediction %s: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating prediction %s: %w", p.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) DeletePrediction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM risk_predictions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting prediction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting prediction %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
