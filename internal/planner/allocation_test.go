package planner

import (
	"encoding/json"
	"testing"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

func TestOptimize_SingleDonorScenario(t *testing.T) {
	predictions := []models.RiskPrediction{
		{ID: "p1", Severity: models.SeverityCritical, AffectedPopulation: 500000, Type: "flood", Location: "X", RiskScore: 8},
	}
	resources := []models.Resource{
		{ID: "r1", Type: "medical", Quantity: 100, Available: 40, Location: "Y"},
	}

	result := Optimize(predictions, resources)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}

	if len(result.Data.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(result.Data.Suggestions))
	}
	s := result.Data.Suggestions[0]
	if s.ResourceID != "r1" || s.ResourceType != "medical" || s.FromLocation != "Y" || s.ToLocation != "X" || s.QuantityToMove != 10 {
		t.Errorf("unexpected suggestion: %+v", s)
	}
	if s.Reason != "Support critical flood risk at X" {
		t.Errorf("unexpected reason: %q", s.Reason)
	}

	summary := result.Data.Summary
	if summary == nil {
		t.Fatal("expected summary")
	}
	if summary.TotalPredictions != 1 || summary.TotalResources != 1 || summary.TotalDeployedBefore != 60 || summary.SuggestedTransfers != 1 {
		t.Errorf("unexpected summary: %+v", *summary)
	}
}

func TestOptimize_NotEnoughData(t *testing.T) {
	predictions := []models.RiskPrediction{{ID: "p1", Severity: models.SeverityHigh, AffectedPopulation: 1000}}
	resources := []models.Resource{{ID: "r1", Type: "food", Quantity: 5, Available: 2}}

	tests := []struct {
		name        string
		predictions []models.RiskPrediction
		resources   []models.Resource
	}{
		{"no resources", predictions, nil},
		{"no predictions", nil, resources},
		{"neither", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Optimize(tt.predictions, tt.resources)
			if result.Success {
				t.Error("expected success=false")
			}

			body, err := json.Marshal(result)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			want := `{"success":false,"message":"not enough data","data":{"suggestions":[],"summary":null}}`
			if string(body) != want {
				t.Errorf("expected %s, got %s", want, body)
			}
		})
	}
}

func TestOptimize_NeverExceedsAvailableMinusReserve(t *testing.T) {
	predictions := []models.RiskPrediction{
		{ID: "p1", Severity: models.SeverityCritical, AffectedPopulation: 1000000, Location: "A", RiskScore: 9},
		{ID: "p2", Severity: models.SeverityCritical, AffectedPopulation: 1000000, Location: "B", RiskScore: 8},
		{ID: "p3", Severity: models.SeverityHigh, AffectedPopulation: 800000, Location: "C", RiskScore: 7},
	}
	resources := []models.Resource{
		{ID: "m1", Type: "medical", Quantity: 10, Available: 5, Location: "Z"},
		{ID: "m2", Type: "medical", Quantity: 10, Available: 1, Location: "Y"},
		{ID: "m3", Type: "medical", Quantity: 10, Available: 0, Location: "W"},
		{ID: "s1", Type: "shelter", Quantity: 30, Available: 12, Location: "A"},
		{ID: "s2", Type: "shelter", Quantity: 30, Available: 3, Location: "Q"},
	}

	result := Optimize(predictions, resources)

	moved := map[string]int{}
	for _, s := range result.Data.Suggestions {
		if s.QuantityToMove <= 0 {
			t.Errorf("suggestion with non-positive quantity: %+v", s)
		}
		if s.FromLocation == s.ToLocation {
			t.Errorf("self transfer proposed: %+v", s)
		}
		moved[s.ResourceID] += s.QuantityToMove
	}
	for _, r := range resources {
		if limit := max(0, r.Available-1); moved[r.ID] > limit {
			t.Errorf("resource %s: moved %d, limit %d", r.ID, moved[r.ID], limit)
		}
	}
	if moved["m1"] != 4 {
		t.Errorf("expected m1 to give all 4 spare units, got %d", moved["m1"])
	}
}

func TestOptimize_BlockedDonorRankedLast(t *testing.T) {
	predictions := []models.RiskPrediction{
		{ID: "p1", Severity: models.SeverityCritical, AffectedPopulation: 100000, Location: "Target", Coordinates: models.NewCoordinates(10, 10)},
	}
	resources := []models.Resource{
		// Closer and richer, but cut off
		{ID: "near", Type: "rescue", Quantity: 60, Available: 50, Location: "Near", Coordinates: models.NewCoordinates(10.01, 10.01), RoadStatus: models.RoadStatusBlocked},
		{ID: "far", Type: "rescue", Quantity: 10, Available: 5, Location: "Far", Coordinates: models.NewCoordinates(12, 12), RoadStatus: models.RoadStatusClear},
	}

	result := Optimize(predictions, resources)
	if len(result.Data.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d: %+v", len(result.Data.Suggestions), result.Data.Suggestions)
	}
	if got := result.Data.Suggestions[0]; got.ResourceID != "far" || got.QuantityToMove != 2 {
		t.Errorf("expected 2 units from the clear-road donor, got %+v", got)
	}
}

func TestOptimize_NearestDonorFirst(t *testing.T) {
	predictions := []models.RiskPrediction{
		{ID: "p1", Severity: models.SeverityCritical, AffectedPopulation: 150000, Location: "Target", Coordinates: models.NewCoordinates(0, 0)},
	}
	resources := []models.Resource{
		{ID: "far", Type: "medical", Quantity: 20, Available: 10, Location: "Far", Coordinates: models.NewCoordinates(5, 5)},
		{ID: "near", Type: "medical", Quantity: 5, Available: 3, Location: "Near", Coordinates: models.NewCoordinates(0.1, 0.1)},
	}

	result := Optimize(predictions, resources)
	got := result.Data.Suggestions
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %+v", len(got), got)
	}
	if got[0].ResourceID != "near" || got[0].QuantityToMove != 2 {
		t.Errorf("expected near donor to give 2 first, got %+v", got[0])
	}
	if got[1].ResourceID != "far" || got[1].QuantityToMove != 1 {
		t.Errorf("expected far donor to cover the remaining 1, got %+v", got[1])
	}
}

func TestOptimize_ResourceAtTargetIsNotDonor(t *testing.T) {
	predictions := []models.RiskPrediction{
		{ID: "p1", Severity: models.SeverityCritical, AffectedPopulation: 500000, Location: "X"},
	}
	resources := []models.Resource{
		{ID: "local", Type: "food", Quantity: 100, Available: 90, Location: "X"},
	}

	result := Optimize(predictions, resources)
	if !result.Success {
		t.Fatal("expected success")
	}
	if len(result.Data.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %+v", result.Data.Suggestions)
	}
}

func TestOptimize_NothingDeployedMeansNoNeed(t *testing.T) {
	predictions := []models.RiskPrediction{
		{ID: "p1", Severity: models.SeverityCritical, AffectedPopulation: 500000, Location: "X"},
	}
	resources := []models.Resource{
		{ID: "r1", Type: "food", Quantity: 100, Available: 100, Location: "Y"},
	}

	result := Optimize(predictions, resources)
	if !result.Success {
		t.Fatal("expected success")
	}
	if len(result.Data.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %+v", result.Data.Suggestions)
	}
	if result.Data.Summary.TotalDeployedBefore != 0 {
		t.Errorf("expected 0 deployed, got %d", result.Data.Summary.TotalDeployedBefore)
	}
}

func TestOptimize_ApportionsByDeploymentShare(t *testing.T) {
	predictions := []models.RiskPrediction{
		{ID: "p1", Severity: models.SeverityCritical, AffectedPopulation: 500000, Location: "X"},
	}
	resources := []models.Resource{
		{ID: "med", Type: "medical", Quantity: 100, Available: 40, Location: "Y"}, // 60 deployed
		{ID: "food", Type: "food", Quantity: 100, Available: 60, Location: "Y"},   // 40 deployed
	}

	result := Optimize(predictions, resources)
	byType := map[string]int{}
	for _, s := range result.Data.Suggestions {
		byType[s.ResourceType] += s.QuantityToMove
	}
	if byType["medical"] != 6 || byType["food"] != 4 {
		t.Errorf("expected medical=6 food=4, got %v", byType)
	}
}

func TestOptimize_DoesNotMutateInput(t *testing.T) {
	predictions := []models.RiskPrediction{
		{ID: "p1", Severity: models.SeverityCritical, AffectedPopulation: 500000, Location: "X"},
	}
	resources := []models.Resource{
		{ID: "r1", Type: "medical", Quantity: 100, Available: 40, Location: "Y"},
	}

	Optimize(predictions, resources)
	if resources[0].Available != 40 || resources[0].Quantity != 100 {
		t.Errorf("resource mutated: %+v", resources[0])
	}
}

func TestSeverityMultiplier(t *testing.T) {
	tests := []struct {
		severity models.Severity
		want     float64
	}{
		{models.SeverityCritical, 1.0},
		{models.SeverityHigh, 0.7},
		{models.SeverityMedium, 0.4},
		{models.SeverityLow, 0.2},
		{"catastrophic", 0.2},
		{"", 0.2},
	}

	for _, tt := range tests {
		if got := SeverityMultiplier(tt.severity); got != tt.want {
			t.Errorf("SeverityMultiplier(%q) = %f, want %f", tt.severity, got, tt.want)
		}
	}
}

func TestDesiredUnits(t *testing.T) {
	tests := []struct {
		pop      int64
		severity models.Severity
		want     int
	}{
		{500000, models.SeverityCritical, 10},
		{500000, models.SeverityHigh, 7},
		{60000, models.SeverityMedium, 1}, // ceil(0.48)
		{0, models.SeverityCritical, 0},
		{50001, models.SeverityCritical, 2},
	}

	for _, tt := range tests {
		if got := DesiredUnits(tt.pop, tt.severity); got != tt.want {
			t.Errorf("DesiredUnits(%d, %s) = %d, want %d", tt.pop, tt.severity, got, tt.want)
		}
	}
}

func TestRankDonors_UnknownDistanceFallsThroughToAvailability(t *testing.T) {
	target := models.NewCoordinates(0, 0)
	candidates := []models.Resource{
		{ID: "located", Available: 5, Coordinates: models.NewCoordinates(0.5, 0.5)},
		{ID: "unlocated", Available: 20},
		{ID: "flooded", Available: 99, RoadStatus: models.RoadStatusFlooded},
	}

	got := rankDonors(candidates, target)
	want := []string{"unlocated", "located", "flooded"}
	for i, id := range want {
		if got[i].resource.ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].resource.ID)
		}
	}
}
