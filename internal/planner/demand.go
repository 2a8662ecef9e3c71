package planner

import (
	"sort"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

// Rank turns active predictions into demand entries ordered by descending demand score.
// Equal scores keep their input order.
func Rank(predictions []models.RiskPrediction) []models.DemandEntry {
	entries := make([]models.DemandEntry, 0, len(predictions))
	for _, p := range predictions {
		if !p.Active() {
			continue
		}
		entries = append(entries, models.DemandEntry{
			PredictionID:       p.ID,
			Location:           p.Location,
			Coordinates:        p.Coordinates,
			Severity:           p.Severity,
			Type:               p.Type,
			RiskScore:          p.RiskScore,
			AffectedPopulation: p.AffectedPopulation,
			DemandScore:        DemandScore(p.RiskScore, p.AffectedPopulation),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DemandScore > entries[j].DemandScore
	})
	return entries
}

// DemandScore weights risk by population. Population is floored at 1 so
// infrastructure-only risk still registers.
func DemandScore(riskScore float64, affectedPopulation int64) float64 {
	return riskScore * float64(max(affectedPopulation, 1))
}
