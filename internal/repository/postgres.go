package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

//go:embed sql/*.sql
var migrationFS embed.FS

var _ Store = (*PostgresDB)(nil)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &PostgresDB{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *PostgresDB) migrate(ctx context.Context) error {
	entries, err := migrationFS.ReadDir("sql")
	if err != nil {
		return fmt.Errorf("error reading migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFS.ReadFile("sql/" + name)
		if err != nil {
			return fmt.Errorf("error reading migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("error executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *PostgresDB) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresDB) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresDB) AddPrediction(ctx context.Context, p *models.RiskPrediction) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO risk_predictions (`+predictionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Type, p.Location, p.Coordinates.Lat, p.Coordinates.Lng, p.Probability,
		string(p.Severity), p.PredictedTime, p.AffectedPopulation, p.RiskScore,
		p.Active(), p.Source, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting prediction %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresDB) GetPrediction(ctx context.Context, id string) (*models.RiskPrediction, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+predictionColumns+` FROM risk_predictions WHERE id = $1`, id)
	p, err := scanPrediction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting prediction %s: %w", id, err)
	}
	return p, nil
}

func (s *PostgresDB) PredictionExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM risk_predictions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking prediction %s: %w", id, err)
	}
	return exists, nil
}

func (s *PostgresDB) ListActivePredictions(ctx context.Context) ([]models.RiskPrediction, error) {
	return s.ListPredictions(ctx, PredictionFilter{})
}

func (s *PostgresDB) ListPredictions(ctx context.Context, opts PredictionFilter) ([]models.RiskPrediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM risk_predictions WHERE is_active`
	var args []any

	if opts.Type != "" {
		args = append(args, strings.ToLower(opts.Type))
		query += fmt.Sprintf(` AND LOWER(type) = $%d`, len(args))
	}
	if opts.Severity != "" {
		args = append(args, string(opts.Severity))
		query += fmt.Sprintf(` AND severity = $%d`, len(args))
	}

	query += ` ORDER BY risk_score DESC, created_at ASC`

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
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

func (s *PostgresDB) UpdatePrediction(ctx context.Context, p *models.RiskPrediction) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE risk_predictions SET type = $1, location = $2, latitude = $3, longitude = $4,
			probability = $5, severity = $6, predicted_time = $7, affected_population = $8,
			risk_score = $9, is_active = $10, source = $11
		WHERE id = $12`,
		p.Type, p.Location, p.Coordinates.Lat, p.Coordinates.Lng, p.Probability,
		string(p.Severity), p.PredictedTime, p.AffectedPopulation, p.RiskScore,
		p.Active(), p.Source, p.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating prediction %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresDB) DeletePrediction(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM risk_predictions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting prediction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresDB) AddResource(ctx context.Context, r *models.Resource) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO resources (`+resourceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.Type, r.Name, r.Location, r.Coordinates.Lat, r.Coordinates.Lng,
		r.Quantity, r.Available, string(r.RoadStatus), r.Status, r.Description, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting resource %s: %w", r.ID, err)
	}
	return nil
}

func (s *PostgresDB) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)
	r, err := scanResource(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting resource %s: %w", id, err)
	}
	return r, nil
}

func (s *PostgresDB) ResourceExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM resources WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking resource %s: %w", id, err)
	}
	return exists, nil
}

func (s *PostgresDB) ListResources(ctx context.Context) ([]models.Resource, error) {
	return s.queryResources(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY type, name`)
}

func (s *PostgresDB) ListResourcesByType(ctx context.Context, resourceType string) ([]models.Resource, error) {
	return s.queryResources(ctx, `SELECT `+resourceColumns+` FROM resources WHERE type = $1 ORDER BY name`, resourceType)
}

func (s *PostgresDB) queryResources(ctx context.Context, query string, args ...any) ([]models.Resource, error) {
	rows, err := s.pool.Query(ctx, query, args...)
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

func (s *PostgresDB) UpdateAvailability(ctx context.Context, id string, available int) (*models.Resource, error) {
	if available < 0 {
		return nil, ErrAvailabilityOutOfRange
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE resources SET available = $1, updated_at = NOW()
		WHERE id = $2 AND quantity >= $1
		RETURNING `+resourceColumns,
		available, id,
	)
	r, err := scanResource(row)
	if errors.Is(err, pgx.ErrNoRows) {
		exists, existsErr := s.ResourceExists(ctx, id)
		if existsErr != nil {
			return nil, existsErr
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrAvailabilityOutOfRange
	}
	if err != nil {
		return nil, fmt.Errorf("error updating resource %s: %w", id, err)
	}
	return r, nil
}

func (s *PostgresDB) UpdateResource(ctx context.Context, r *models.Resource) error {
	if r.Available < 0 || r.Available > r.Quantity {
		return ErrAvailabilityOutOfRange
	}
	r.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, `
		UPDATE resources SET type = $1, name = $2, location = $3, latitude = $4, longitude = $5,
			quantity = $6, available = $7, road_status = $8, status = $9, description = $10, updated_at = $11
		WHERE id = $12`,
		r.Type, r.Name, r.Location, r.Coordinates.Lat, r.Coordinates.Lng, r.Quantity,
		r.Available, string(r.RoadStatus), r.Status, r.Description, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating resource %s: %w", r.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresDB) DeleteResource(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting resource %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
