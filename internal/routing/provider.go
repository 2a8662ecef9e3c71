package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/mr1hm/go-disaster-ops/internal/config"
	"github.com/mr1hm/go-disaster-ops/internal/metrics"
	"github.com/mr1hm/go-disaster-ops/internal/models"
)

var (
	ErrMissingCredential = errors.New("provider credential not configured")
	ErrNoRoute           = errors.New("provider returned no route")
)

// StatusError is a non-2xx answer from a directions endpoint.
type StatusError struct {
	Provider   string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code: %d - status: %s", e.Provider, e.StatusCode, e.Status)
}

// Provider is one external directions service. Implementations make exactly one
// outbound call per Directions and never retry.
type Provider interface {
	Name() string
	Directions(ctx context.Context, start, end models.Point) (*models.RouteResult, error)
}

// Adapter fronts the single provider selected at startup. Every failure is absorbed
// here and reported to callers as a nil result.
type Adapter struct {
	provider Provider
}

func NewAdapter(p Provider) *Adapter {
	return &Adapter{provider: p}
}

// New builds the adapter for cfg.Provider.
func New(cfg config.RoutingConfig) (*Adapter, error) {
	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	var p Provider
	switch cfg.Provider {
	case config.ProviderORS:
		p = NewORS(cfg.ORSAPIKey, cfg.ORSURL, client)
	case config.ProviderGoogle:
		p = NewGoogle(cfg.GoogleMapsAPIKey, cfg.GoogleURL, client)
	case config.ProviderMapbox:
		p = NewMapbox(cfg.MapboxAccessToken, cfg.MapboxURL, client)
	default:
		return nil, fmt.Errorf("unknown routing provider: %q", cfg.Provider)
	}

	if cfg.APIKey() == "" {
		slog.Warn("routing provider has no credential, evacuation routes will use straight-line fallbacks", "provider", p.Name())
	}
	return NewAdapter(p), nil
}

func (a *Adapter) ProviderName() string {
	return a.provider.Name()
}

// Route asks the provider for a path from start to end. It returns nil when either
// point lacks lat/lng (no network call is made) or when the provider call fails.
func (a *Adapter) Route(ctx context.Context, start, end models.Coordinates) *models.RouteResult {
	name := a.provider.Name()
	if !start.Known() || !end.Known() {
		metrics.RoutingRequests.WithLabelValues(name, "invalid_coordinates").Inc()
		return nil
	}

	began := time.Now()
	result, err := a.provider.Directions(ctx, start.Point(), end.Point())
	metrics.RoutingLatency.WithLabelValues(name).Observe(time.Since(began).Seconds())

	if err != nil {
		outcome := classify(err)
		metrics.RoutingRequests.WithLabelValues(name, outcome).Inc()
		if outcome == "missing_credential" {
			slog.Debug("routing skipped", "provider", name, "reason", outcome)
		} else {
			slog.Warn("routing provider call failed", "provider", name, "outcome", outcome, "error", err)
		}
		return nil
	}

	metrics.RoutingRequests.WithLabelValues(name, "ok").Inc()
	return result
}

func classify(err error) string {
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrNoRoute):
		return "no_route"
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}

// doJSON sends req and decodes a 2xx JSON body into out.
func doJSON(client *http.Client, provider string, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: error doing request: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Provider: provider, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: error decoding resp.Body: %w", provider, err)
	}
	return nil
}

// normalize converts provider units (meters, seconds) and [lng,lat] geometry into a RouteResult.
// Geometry with fewer than two usable points degrades to the straight segment.
func normalize(meters, seconds float64, lngLat [][]float64, start, end models.Point) *models.RouteResult {
	path := make([]models.Point, 0, len(lngLat))
	for _, c := range lngLat {
		if len(c) < 2 {
			continue
		}
		path = append(path, models.Point{Lat: c[1], Lng: c[0]})
	}
	if len(path) < 2 {
		path = []models.Point{start, end}
	}

	return &models.RouteResult{
		DistanceKm:       meters / 1000,
		EstimatedTimeMin: int(math.Round(seconds / 60)),
		Path:             path,
	}
}
