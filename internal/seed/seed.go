// Package seed loads demo predictions and resources from a YAML fixture.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-disaster-ops/internal/models"
	"github.com/mr1hm/go-disaster-ops/internal/repository"
)

type Fixture struct {
	Predictions []models.RiskPrediction `yaml:"predictions"`
	Resources   []models.Resource       `yaml:"resources"`
}

// Result counts what Apply wrote and what it left alone because the id was taken.
type Result struct {
	Predictions int
	Resources   int
	Skipped     int
}

func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate() error {
	for i, p := range fx.Predictions {
		if p.ID == "" || p.Type == "" {
			return fmt.Errorf("prediction %d: id and type are required", i)
		}
	}
	for i, r := range fx.Resources {
		if r.ID == "" || r.Type == "" {
			return fmt.Errorf("resource %d: id and type are required", i)
		}
		if r.Available < 0 || r.Available > r.Quantity {
			return fmt.Errorf("resource %s: available %d outside 0..%d", r.ID, r.Available, r.Quantity)
		}
	}
	return nil
}

// Apply inserts fixture rows whose ids are not in the store yet, so it can be rerun.
func Apply(ctx context.Context, store repository.Store, fx *Fixture) (Result, error) {
	var res Result
	now := time.Now().UTC()

	for _, p := range fx.Predictions {
		exists, err := store.PredictionExists(ctx, p.ID)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}

		p.Type = strings.ToLower(p.Type)
		p.Severity = models.ParseSeverity(string(p.Severity))
		if p.Source == "" {
			p.Source = "seed"
		}
		p.CreatedAt = now
		if p.PredictedTime.IsZero() {
			p.PredictedTime = now
		}
		if err := store.AddPrediction(ctx, &p); err != nil {
			return res, fmt.Errorf("prediction %s: %w", p.ID, err)
		}
		res.Predictions++
	}

	for _, r := range fx.Resources {
		exists, err := store.ResourceExists(ctx, r.ID)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}

		r.Type = strings.ToLower(r.Type)
		if r.Status == "" {
			r.Status = "available"
		}
		r.UpdatedAt = now
		if err := store.AddResource(ctx, &r); err != nil {
			return res, fmt.Errorf("resource %s: %w", r.ID, err)
		}
		res.Resources++
	}

	slog.Info("seed applied", "predictions", res.Predictions, "resources", res.Resources, "skipped", res.Skipped)
	return res, nil
}
