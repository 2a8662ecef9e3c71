package ingestion

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mr1hm/go-disaster-ops/internal/config"
	"github.com/mr1hm/go-disaster-ops/internal/metrics"
	"github.com/mr1hm/go-disaster-ops/internal/models"
	"github.com/mr1hm/go-disaster-ops/internal/repository"
	"github.com/mr1hm/go-disaster-ops/internal/stream"
	"github.com/mr1hm/go-disaster-ops/internal/worker"
)

// Trigger is notified whenever a new prediction lands.
type Trigger interface {
	Trigger()
}

type Manager struct {
	cfg       *config.Config
	repo      repository.PredictionRepository
	publisher stream.Publisher
	replan    Trigger
	client    *http.Client
	pool      *worker.Pool[*models.RiskPrediction]
	wg        sync.WaitGroup
}

// NewManager wires the feed pollers. publisher and replan may be nil.
func NewManager(cfg *config.Config, repo repository.PredictionRepository, publisher stream.Publisher, replan Trigger) *Manager {
	return &Manager{
		cfg:       cfg,
		repo:      repo,
		publisher: publisher,
		replan:    replan,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.pool = worker.NewPool("ingestion", m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.process)
	m.pool.Start(ctx)

	if m.cfg.Sources.GDACSEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, SourceGDACS, m.cfg.Sources.GDACSURL, m.cfg.Sources.GDACSPollInterval)
	}
}

func (m *Manager) process(ctx context.Context, p *models.RiskPrediction) error {
	exists, err := m.repo.PredictionExists(ctx, p.ID)
	if err != nil {
		slog.Error("error checking existence", "id", p.ID, "error", err)
		return err
	}
	if exists {
		return nil
	}

	if err := m.repo.AddPrediction(ctx, p); err != nil {
		slog.Error("error adding prediction", "id", p.ID, "error", err)
		return err
	}
	metrics.IngestedPredictions.WithLabelValues(p.Source).Inc()

	if m.publisher != nil {
		m.publisher.Publish(models.NewEvent(models.EventPredictionCreated, p))
	}
	if m.replan != nil && p.Active() {
		m.replan.Trigger()
	}

	slog.Info("added prediction", "id", p.ID, "type", p.Type, "severity", p.Severity, "source", p.Source)
	return nil
}

func (m *Manager) runPoller(ctx context.Context, source, url string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", source, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, source, url)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", source)
			return
		case <-ticker.C:
			m.poll(ctx, source, url)
		}
	}
}

func (m *Manager) poll(ctx context.Context, source, url string) {
	slog.Debug("polling", "source", source)

	var (
		predictions []*models.RiskPrediction
		err         error
	)

	switch source {
	case SourceGDACS:
		predictions, err = m.pollGDACS(ctx, url)
	}
	if err != nil {
		slog.Error("poll failed", "source", source, "error", err)
		return
	}

	queued := m.enqueue(ctx, predictions)
	slog.Debug("poll complete", "source", source, "count", len(predictions), "queued", queued)
}

// enqueue hands predictions to the pool and stops early once ctx is cancelled.
func (m *Manager) enqueue(ctx context.Context, predictions []*models.RiskPrediction) int {
	for i, p := range predictions {
		if !m.pool.Submit(ctx, p) {
			slog.Info("ingestion interrupted, dropping remaining predictions", "dropped", len(predictions)-i)
			return i
		}
	}
	return len(predictions)
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	m.client.CloseIdleConnections()
	slog.Info("ingestion manager stopped")
}
