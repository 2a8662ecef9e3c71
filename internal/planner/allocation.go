package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/mr1hm/go-disaster-ops/internal/geo"
	"github.com/mr1hm/go-disaster-ops/internal/models"
)

const (
	// PeoplePerUnit is the planning granularity: one unit per this many affected people at full severity.
	PeoplePerUnit = 50000

	// ReservedUnits stay with every donor.
	ReservedUnits = 1

	MessageNotEnoughData = "not enough data"
)

// OptimizeResult is the allocation response body.
type OptimizeResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    models.Plan `json:"data"`
}

// SeverityMultiplier converts a severity label into a planning weight. Unknown labels plan as low.
func SeverityMultiplier(s models.Severity) float64 {
	switch s {
	case models.SeverityCritical:
		return 1.0
	case models.SeverityHigh:
		return 0.7
	case models.SeverityMedium:
		return 0.4
	default:
		return 0.2
	}
}

// DesiredUnits is ceil(population / PeoplePerUnit × severity multiplier).
func DesiredUnits(affectedPopulation int64, s models.Severity) int {
	return int(math.Ceil(float64(affectedPopulation) / PeoplePerUnit * SeverityMultiplier(s)))
}

// resourcePool is the per-type view of the resource snapshot, built in one pass.
type resourcePool struct {
	types    []string // first-seen order
	byType   map[string][]models.Resource
	deployed map[string]int
	total    int
}

func groupByType(resources []models.Resource) resourcePool {
	pool := resourcePool{
		byType:   make(map[string][]models.Resource),
		deployed: make(map[string]int),
	}
	for _, r := range resources {
		if _, seen := pool.byType[r.Type]; !seen {
			pool.types = append(pool.types, r.Type)
		}
		pool.byType[r.Type] = append(pool.byType[r.Type], r)
		pool.deployed[r.Type] += r.Deployed()
		pool.total += r.Deployed()
	}
	return pool
}

// neededFromType apportions desired units by the type's share of system-wide deployment.
// Rounding happens per type, so the sum across types may drift from desired.
func (p resourcePool) neededFromType(desired int, resourceType string) int {
	total := p.total
	if total == 0 {
		total = 1
	}
	return int(math.Round(float64(desired) * float64(p.deployed[resourceType]) / float64(total)))
}

type donor struct {
	resource   models.Resource
	distanceKm float64
	distanceOK bool
}

// rankDonors orders candidates: passable roads first, then nearer (when both distances
// are known), then more available units.
func rankDonors(candidates []models.Resource, target models.Coordinates) []donor {
	donors := make([]donor, 0, len(candidates))
	for _, r := range candidates {
		d, ok := geo.DistanceKm(r.Coordinates, target)
		donors = append(donors, donor{resource: r, distanceKm: d, distanceOK: ok})
	}

	sort.SliceStable(donors, func(i, j int) bool {
		a, b := donors[i], donors[j]
		if ai, bi := a.resource.RoadImpassable(), b.resource.RoadImpassable(); ai != bi {
			return !ai
		}
		if a.distanceOK && b.distanceOK && a.distanceKm != b.distanceKm {
			return a.distanceKm < b.distanceKm
		}
		return a.resource.Available > b.resource.Available
	})
	return donors
}

// Optimize proposes transfers that move spare units toward the highest-demand predictions.
// It never mutates the input; the remaining spare per donor is tracked in a local ledger
// so no donor is asked for more than available − ReservedUnits across the whole run.
func Optimize(predictions []models.RiskPrediction, resources []models.Resource) OptimizeResult {
	if len(predictions) == 0 || len(resources) == 0 {
		return OptimizeResult{
			Success: false,
			Message: MessageNotEnoughData,
			Data:    models.Plan{Suggestions: []models.TransferSuggestion{}},
		}
	}

	pool := groupByType(resources)

	spare := make(map[string]int, len(resources))
	for _, r := range resources {
		spare[r.ID] = max(0, r.Available-ReservedUnits)
	}

	suggestions := []models.TransferSuggestion{}
	for _, demand := range Rank(predictions) {
		desired := DesiredUnits(demand.AffectedPopulation, demand.Severity)
		if desired <= 0 {
			continue
		}

		for _, resourceType := range pool.types {
			remaining := pool.neededFromType(desired, resourceType)
			if remaining <= 0 {
				continue
			}

			var candidates []models.Resource
			for _, r := range pool.byType[resourceType] {
				if r.Location != demand.Location {
					candidates = append(candidates, r)
				}
			}

			for _, d := range rankDonors(candidates, demand.Coordinates) {
				if remaining <= 0 {
					break
				}
				give := min(spare[d.resource.ID], remaining)
				if give <= 0 {
					continue
				}

				spare[d.resource.ID] -= give
				remaining -= give
				suggestions = append(suggestions, models.TransferSuggestion{
					ResourceID:     d.resource.ID,
					ResourceType:   resourceType,
					FromLocation:   d.resource.Location,
					ToLocation:     demand.Location,
					QuantityToMove: give,
					Reason:         transferReason(demand),
				})
			}
		}
	}

	return OptimizeResult{
		Success: true,
		Data: models.Plan{
			Suggestions: suggestions,
			Summary: &models.PlanSummary{
				TotalPredictions:    len(predictions),
				TotalResources:      len(resources),
				TotalDeployedBefore: pool.total,
				SuggestedTransfers:  len(suggestions),
			},
		},
	}
}

func transferReason(d models.DemandEntry) string {
	return fmt.Sprintf("Support %s %s risk at %s", d.Severity, d.Type, d.Location)
}
