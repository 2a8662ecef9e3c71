package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrAvailabilityOutOfRange is returned when available would leave [0, quantity].
	ErrAvailabilityOutOfRange = errors.New("available must be between 0 and quantity")
)

type PredictionFilter struct {
	Type     string
	Severity models.Severity
	Limit    int
}

type PredictionRepository interface {
	AddPrediction(ctx context.Context, p *models.RiskPrediction) error
	GetPrediction(ctx context.Context, id string) (*models.RiskPrediction, error)
	PredictionExists(ctx context.Context, id string) (bool, error)
	// ListActivePredictions returns active predictions, highest risk first.
	ListActivePredictions(ctx context.Context) ([]models.RiskPrediction, error)
	ListPredictions(ctx context.Context, opts PredictionFilter) ([]models.RiskPrediction, error)
	// UpdatePrediction overwrites every stored field except id and created_at.
	UpdatePrediction(ctx context.Context, p *models.RiskPrediction) error
	DeletePrediction(ctx context.Context, id string) error
}

type ResourceRepository interface {
	AddResource(ctx context.Context, r *models.Resource) error
	GetResource(ctx context.Context, id string) (*models.Resource, error)
	ResourceExists(ctx context.Context, id string) (bool, error)
	// ListResources returns every resource ordered by type, then name.
	ListResources(ctx context.Context) ([]models.Resource, error)
	ListResourcesByType(ctx context.Context, resourceType string) ([]models.Resource, error)
	UpdateAvailability(ctx context.Context, id string, available int) (*models.Resource, error)
	UpdateResource(ctx context.Context, r *models.Resource) error
	DeleteResource(ctx context.Context, id string) error
}

type AlertFilter struct {
	UnreadOnly bool
	Severity   models.Severity
	Limit      int
}

type AlertRepository interface {
	AddAlert(ctx context.Context, a *models.Alert) error
	// ListAlerts returns the newest alerts first.
	ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error)
	MarkAlertRead(ctx context.Context, id string) (*models.Alert, error)
	MarkAllAlertsRead(ctx context.Context) (int, error)
	CountUnreadAlerts(ctx context.Context) (int, error)
}

type ReportRepository interface {
	// AddReport stores the report and, when alert is non-nil, the alert it raises, in one transaction.
	AddReport(ctx context.Context, r *models.Report, alert *models.Alert) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	// ListReports returns the newest reports first.
	ListReports(ctx context.Context, limit int) ([]models.Report, error)
	UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)
}

// Store is everything the service needs from persistence.
type Store interface {
	PredictionRepository
	ResourceRepository
	AlertRepository
	ReportRepository
	Ping(ctx context.Context) error
	Close() error
}

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

const predictionColumns = `id, type, location, latitude, longitude, probability, severity,
	predicted_time, affected_population, risk_score, is_active, source, created_at`

const resourceColumns = `id, type, name, location, latitude, longitude, quantity, available,
	road_status, status, description, updated_at`

const alertColumns = `id, type, severity, title, message, location, status, is_read, report_id, created_at`

const reportColumns = `id, type, severity, title, description, location, latitude, longitude, status,
	reporter_name, reporter_contact, evidence_urls, created_at, updated_at`

func scanPrediction(row rowScanner) (*models.RiskPrediction, error) {
	var (
		p      models.RiskPrediction
		active bool
	)
	err := row.Scan(
		&p.ID, &p.Type, &p.Location, &p.Coordinates.Lat, &p.Coordinates.Lng,
		&p.Probability, &p.Severity, &p.PredictedTime, &p.AffectedPopulation,
		&p.RiskScore, &active, &p.Source, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.IsActive = &active
	return &p, nil
}

func scanResource(row rowScanner) (*models.Resource, error) {
	var r models.Resource
	err := row.Scan(
		&r.ID, &r.Type, &r.Name, &r.Location, &r.Coordinates.Lat, &r.Coordinates.Lng,
		&r.Quantity, &r.Available, &r.RoadStatus, &r.Status, &r.Description, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(
		&a.ID, &a.Type, &a.Severity, &a.Title, &a.Message, &a.Location,
		&a.Status, &a.IsRead, &a.ReportID, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		r        models.Report
		evidence string
	)
	err := row.Scan(
		&r.ID, &r.Type, &r.Severity, &r.Title, &r.Description, &r.Location,
		&r.Coordinates.Lat, &r.Coordinates.Lng, &r.Status, &r.ReporterName,
		&r.ReporterContact, &evidence, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if evidence != "" {
		if err := json.Unmarshal([]byte(evidence), &r.EvidenceURLs); err != nil {
			return nil, fmt.Errorf("error decoding evidence urls: %w", err)
		}
	}
	return &r, nil
}

// encodeEvidence stores evidence URLs as a JSON array; empty lists store as "".
func encodeEvidence(urls []string) (string, error) {
	if len(urls) == 0 {
		return "", nil
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", fmt.Errorf("error encoding evidence urls: %w", err)
	}
	return string(b), nil
}
