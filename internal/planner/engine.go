package planner

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/go-disaster-ops/internal/metrics"
	"github.com/mr1hm/go-disaster-ops/internal/models"
)

// Snapshotter is the read side of the data-access layer the engine needs.
type Snapshotter interface {
	ListActivePredictions(ctx context.Context) ([]models.RiskPrediction, error)
	ListResources(ctx context.Context) ([]models.Resource, error)
}

// Engine runs allocation and evacuation planning against fresh snapshots.
// It holds no state between calls.
type Engine struct {
	store     Snapshotter
	generator *Generator
}

func NewEngine(store Snapshotter, router RouteFinder, routeConcurrency int) *Engine {
	return &Engine{
		store:     store,
		generator: NewGenerator(router, routeConcurrency),
	}
}

func (e *Engine) snapshot(ctx context.Context) ([]models.RiskPrediction, []models.Resource, error) {
	var (
		predictions []models.RiskPrediction
		resources   []models.Resource
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		predictions, err = e.store.ListActivePredictions(gctx)
		if err != nil {
			return fmt.Errorf("error listing predictions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		resources, err = e.store.ListResources(gctx)
		if err != nil {
			return fmt.Errorf("error listing resources: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return predictions, resources, nil
}

func (e *Engine) Optimize(ctx context.Context) (OptimizeResult, error) {
	predictions, resources, err := e.snapshot(ctx)
	if err != nil {
		metrics.PlanRuns.WithLabelValues("optimize", "error").Inc()
		return OptimizeResult{}, err
	}

	result := Optimize(predictions, resources)
	if !result.Success {
		metrics.PlanRuns.WithLabelValues("optimize", "not_enough_data").Inc()
		return result, nil
	}

	metrics.PlanRuns.WithLabelValues("optimize", "ok").Inc()
	metrics.SuggestedTransfers.Set(float64(result.Data.Summary.SuggestedTransfers))
	slog.Info("allocation planned",
		"predictions", result.Data.Summary.TotalPredictions,
		"resources", result.Data.Summary.TotalResources,
		"suggestions", result.Data.Summary.SuggestedTransfers,
	)
	return result, nil
}

func (e *Engine) Generate(ctx context.Context, origin, disasterType string) (GenerateResult, error) {
	predictions, resources, err := e.snapshot(ctx)
	if err != nil {
		metrics.PlanRuns.WithLabelValues("generate", "error").Inc()
		return GenerateResult{}, err
	}

	result := e.generator.Generate(ctx, predictions, resources, origin, disasterType)
	if !result.Success {
		metrics.PlanRuns.WithLabelValues("generate", "not_enough_data").Inc()
		return result, nil
	}

	metrics.PlanRuns.WithLabelValues("generate", "ok").Inc()
	slog.Info("evacuation routes generated", "routes", len(result.Data.Routes), "disaster_type", disasterType)
	return result, nil
}
