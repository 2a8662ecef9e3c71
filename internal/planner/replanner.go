package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/mr1hm/go-disaster-ops/internal/models"
	"github.com/mr1hm/go-disaster-ops/internal/stream"
)

// Replanner reruns allocation on a timer and whenever it is triggered, pushing
// each successful plan to live subscribers. Triggers arriving while a run is
// pending collapse into one.
type Replanner struct {
	engine    *Engine
	publisher stream.Publisher
	interval  time.Duration
	trigger   chan struct{}
}

// NewReplanner builds a replanner. An interval of 0 disables the timer; Trigger still works.
func NewReplanner(engine *Engine, publisher stream.Publisher, interval time.Duration) *Replanner {
	return &Replanner{
		engine:    engine,
		publisher: publisher,
		interval:  interval,
		trigger:   make(chan struct{}, 1),
	}
}

func (r *Replanner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled.
func (r *Replanner) Run(ctx context.Context) {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	slog.Info("replanner started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("replanner shutting down")
			return
		case <-tick:
			r.replan(ctx)
		case <-r.trigger:
			r.replan(ctx)
		}
	}
}

func (r *Replanner) replan(ctx context.Context) {
	result, err := r.engine.Optimize(ctx)
	if err != nil {
		slog.Error("replan failed", "error", err)
		return
	}
	if !result.Success {
		slog.Debug("replan skipped", "reason", result.Message)
		return
	}
	r.publisher.Publish(models.NewEvent(models.EventPlanUpdated, result.Data))
}
