package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

func (s *SQLiteDB) AddResource(ctx context.Context, r *models.Resource) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (`+resourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Type, r.Name, r.Location, r.Coordinates.Lat, r.Coordinates.Lng,
		r.Quantity, r.Available, string(r.RoadStatus), r.Status, r.Description, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting resource %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	r, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting resource %s: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteDB) ResourceExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM resources WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking resource %s: %w", id, err)
	}
	return exists, nil
}

func (s *SQLiteDB) ListResources(ctx context.Context) ([]models.Resource, error) {
	return s.queryResources(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY type, name`)
}

func (s *SQLiteDB) ListResourcesByType(ctx context.Context, resourceType string) ([]models.Resource, error) {
	return s.queryResources(ctx, `SELECT `+resourceColumns+` FROM resources WHERE type = ? ORDER BY name`, resourceType)
}

func (s *SQLiteDB) queryResources(ctx context.Context, query string, args ...any) ([]models.Resource, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		resources = append(resources, *r)
	}
	return resources, rows.Err()
}

func (s *SQLiteDB) UpdateAvailability(ctx context.Context, id string, available int) (*models.Resource, error) {
	if available < 0 {
		return nil, ErrAvailabilityOutOfRange
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE resources SET available = ?, updated_at = ? WHERE id = ? AND quantity >= ?`,
		available, time.Now().UTC(), id, available,
	)
	if err != nil {
		return nil, fmt.Errorf("error updating resource %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error updating resource %s: %w", id, err)
	}
	if n == 0 {
		exists, err := s.ResourceExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrAvailabilityOutOfRange
	}

	return s.GetResource(ctx, id)
}

func (s *SQLiteDB) UpdateResource(ctx context.Context, r *models.Resource) error {
	if r.Available < 0 || r.Available > r.Quantity {
		return ErrAvailabilityOutOfRange
	}
	r.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE resources SET type = ?, name = ?, location = ?, latitude = ?, longitude = ?,
			quantity = ?, available = ?, road_status = ?, status = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		r.Type, r.Name, r.Location, r.Coordinates.Lat, r.Coordinates.Lng, r.Quantity,
		r.Available, string(r.RoadStatus), r.Status, r.Description, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating resource %s: %w", r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating resource %s: %w", r.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) DeleteResource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting resource %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting resource %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
