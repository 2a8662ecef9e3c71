package seed

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr1hm/go-disaster-ops/internal/models"
	"github.com/mr1hm/go-disaster-ops/internal/repository"
)

const fixture = `
predictions:
  - id: pred-flood-1
    type: Flood
    location: Riverside
    coordinates: {lat: 19.0, lng: 73.0}
    probability: 0.8
    severity: CRITICAL
    affectedPopulation: 500000
    riskScore: 8.5
resources:
  - id: res-med-1
    type: medical
    name: Field Kit
    location: Hilltop
    coordinates: {lat: 18.5, lng: 73.8}
    quantity: 100
    available: 40
  - id: res-shelter-1
    type: shelter
    name: School Gym
    location: Hilltop
    quantity: 30
    available: 30
    roadStatus: flooded
`

func newStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoad(t *testing.T) {
	fx, err := Load(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(fx.Predictions) != 1 || len(fx.Resources) != 2 {
		t.Fatalf("expected 1 prediction and 2 resources, got %d and %d", len(fx.Predictions), len(fx.Resources))
	}
	if !fx.Predictions[0].Coordinates.Known() {
		t.Error("expected prediction coordinates to be decoded")
	}
	if fx.Resources[1].Coordinates.Known() {
		t.Error("expected missing resource coordinates to stay unknown")
	}
	if fx.Resources[1].RoadStatus != models.RoadStatusFlooded {
		t.Errorf("expected flooded road, got %q", fx.Resources[1].RoadStatus)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "predictions:\n  - id: p\n    type: flood\n    magnitude: 7\n"},
		{"missing id", "resources:\n  - type: food\n    quantity: 1\n"},
		{"available above quantity", "resources:\n  - id: r\n    type: food\n    quantity: 1\n    available: 2\n"},
		{"not yaml", "predictions: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_Empty(t *testing.T) {
	fx, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("expected empty fixture to load, got %v", err)
	}
	if len(fx.Predictions) != 0 || len(fx.Resources) != 0 {
		t.Errorf("expected empty fixture, got %+v", fx)
	}
}

func TestApply_IsRerunnable(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	fx, err := Load(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	res, err := Apply(ctx, store, fx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.Predictions != 1 || res.Resources != 2 || res.Skipped != 0 {
		t.Errorf("unexpected first result: %+v", res)
	}

	res, err = Apply(ctx, store, fx)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if res.Predictions != 0 || res.Resources != 0 || res.Skipped != 3 {
		t.Errorf("expected everything skipped, got %+v", res)
	}

	p, err := store.GetPrediction(ctx, "pred-flood-1")
	if err != nil {
		t.Fatalf("GetPrediction failed: %v", err)
	}
	if p.Type != "flood" || p.Severity != models.SeverityCritical || p.Source != "seed" {
		t.Errorf("expected normalized prediction, got %+v", p)
	}

	r, err := store.GetResource(ctx, "res-shelter-1")
	if err != nil {
		t.Fatalf("GetResource failed: %v", err)
	}
	if r.Status != "available" {
		t.Errorf("expected default status, got %q", r.Status)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
