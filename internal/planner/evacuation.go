package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mr1hm/go-disaster-ops/internal/metrics"
	"github.com/mr1hm/go-disaster-ops/internal/models"
	"github.com/mr1hm/go-disaster-ops/internal/worker"
)

const (
	MaxRoutePredictions    = 3
	SafeZonesPerPrediction = 2
)

// RouteFinder returns nil when no route could be obtained.
type RouteFinder interface {
	Route(ctx context.Context, start, end models.Coordinates) *models.RouteResult
}

// GenerateResult is the evacuation response body.
type GenerateResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    models.EvacuationPlan `json:"data"`
}

type Generator struct {
	router      RouteFinder
	concurrency int
}

func NewGenerator(router RouteFinder, concurrency int) *Generator {
	return &Generator{
		router:      router,
		concurrency: max(concurrency, 1),
	}
}

type routePair struct {
	prediction models.RiskPrediction
	resource   models.Resource
}

// Generate pairs the first predictions (input order) with the first safe resources and
// asks the router for a path between each pair. A failed lookup yields a straight-line
// placeholder, so every route has at least two points. Lookups run concurrently but
// routes come back in (prediction, resource) order.
func (g *Generator) Generate(ctx context.Context, predictions []models.RiskPrediction, resources []models.Resource, origin, disasterType string) GenerateResult {
	var targets []models.RiskPrediction
	for _, p := range predictions {
		if !p.Active() {
			continue
		}
		if disasterType != "" && !strings.EqualFold(p.Type, disasterType) {
			continue
		}
		targets = append(targets, p)
	}

	var safe []models.Resource
	for _, r := range resources {
		if !strings.EqualFold(r.Status, models.ResourceStatusDepleted) {
			safe = append(safe, r)
		}
	}

	if len(targets) == 0 || len(safe) == 0 {
		return GenerateResult{
			Success: false,
			Message: MessageNotEnoughData,
			Data:    models.EvacuationPlan{Origin: origin, Routes: []models.Route{}},
		}
	}

	var pairs []routePair
	for _, p := range targets[:min(len(targets), MaxRoutePredictions)] {
		for _, r := range safe[:min(len(safe), SafeZonesPerPrediction)] {
			pairs = append(pairs, routePair{prediction: p, resource: r})
		}
	}

	routes := make([]models.Route, len(pairs))
	for i, pair := range pairs {
		routes[i] = degradedRoute(pair)
	}

	pool := worker.NewPool("evacuation-routes", min(g.concurrency, len(pairs)), len(pairs), func(ctx context.Context, i int) error {
		pair := pairs[i]
		res := g.lookup(ctx, pair.prediction.Coordinates, pair.resource.Coordinates)
		if res == nil || len(res.Path) < 2 {
			return fmt.Errorf("no route from %s to %s", pair.prediction.Location, pair.resource.Location)
		}
		routes[i].DistanceKm = res.DistanceKm
		routes[i].EstimatedTimeMin = res.EstimatedTimeMin
		routes[i].Path = res.Path
		routes[i].Degraded = false
		return nil
	})
	pool.Start(ctx)
	for i := range pairs {
		if !pool.Submit(ctx, i) {
			break
		}
	}
	pool.Stop()

	for _, r := range routes {
		if r.Degraded {
			metrics.DegradedRoutes.Inc()
		}
	}

	return GenerateResult{
		Success: true,
		Data:    models.EvacuationPlan{Origin: origin, Routes: routes},
	}
}

// lookup shields callers from a misbehaving router.
func (g *Generator) lookup(ctx context.Context, start, end models.Coordinates) (res *models.RouteResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("route lookup panicked", "panic", r)
			res = nil
		}
	}()
	return g.router.Route(ctx, start, end)
}

func degradedRoute(pair routePair) models.Route {
	return models.Route{
		ID:               uuid.NewString(),
		Name:             fmt.Sprintf("%s to %s", pair.prediction.Location, pair.resource.Location),
		FromLocation:     pair.prediction.Location,
		ToLocation:       pair.resource.Location,
		RiskLevel:        RiskLevelFor(pair.prediction.Severity),
		DistanceKm:       0,
		EstimatedTimeMin: 0,
		Path:             []models.Point{pair.prediction.Coordinates.Point(), pair.resource.Coordinates.Point()},
		Degraded:         true,
	}
}

func RiskLevelFor(s models.Severity) models.RiskLevel {
	switch s {
	case models.SeverityCritical:
		return models.RiskLevelHigh
	case models.SeverityHigh:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}
