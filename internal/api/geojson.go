package api

import (
	"github.com/mr1hm/go-disaster-ops/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry coordinates are [lng, lat] for a Point and a list of those for a LineString.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func featureCollection(features []Feature) FeatureCollection {
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// predictionsToGeoJSON skips predictions without a full position.
func predictionsToGeoJSON(predictions []models.RiskPrediction) FeatureCollection {
	features := make([]Feature, 0, len(predictions))

	for _, p := range predictions {
		if !p.Coordinates.Known() {
			continue
		}
		pt := p.Coordinates.Point()
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{pt.Lng, pt.Lat},
			},
			Properties: map[string]any{
				"id":                 p.ID,
				"type":               p.Type,
				"location":           p.Location,
				"severity":           p.Severity,
				"probability":        p.Probability,
				"riskScore":          p.RiskScore,
				"affectedPopulation": p.AffectedPopulation,
				"predictedTime":      p.PredictedTime,
				"source":             p.Source,
			},
		}
		features = append(features, f)
	}

	return featureCollection(features)
}

func routesToGeoJSON(routes []models.Route) FeatureCollection {
	features := make([]Feature, 0, len(routes))

	for _, r := range routes {
		line := make([][]float64, 0, len(r.Path))
		for _, pt := range r.Path {
			line = append(line, []float64{pt.Lng, pt.Lat})
		}
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "LineString",
				Coordinates: line,
			},
			Properties: map[string]any{
				"id":               r.ID,
				"name":             r.Name,
				"fromLocation":     r.FromLocation,
				"toLocation":       r.ToLocation,
				"riskLevel":        r.RiskLevel,
				"distanceKm":       r.DistanceKm,
				"estimatedTimeMin": r.EstimatedTimeMin,
				"degraded":         r.Degraded,
			},
		}
		features = append(features, f)
	}

	return featureCollection(features)
}
