package models

// DemandEntry is a ranked view of one prediction's resource need. Computed per run.
type DemandEntry struct {
	PredictionID       string      `json:"predictionId"`
	Location           string      `json:"location"`
	Coordinates        Coordinates `json:"coordinates"`
	Severity           Severity    `json:"severity"`
	Type               string      `json:"type"`
	RiskScore          float64     `json:"riskScore"`
	AffectedPopulation int64       `json:"affectedPopulation"`
	DemandScore        float64     `json:"demandScore"`
}

type TransferSuggestion struct {
	ResourceID     string `json:"resourceId"`
	ResourceType   string `json:"resourceType"`
	FromLocation   string `json:"fromLocation"`
	ToLocation     string `json:"toLocation"`
	QuantityToMove int    `json:"quantityToMove"`
	Reason         string `json:"reason"`
}

type PlanSummary struct {
	TotalPredictions    int `json:"totalPredictions"`
	TotalResources      int `json:"totalResources"`
	TotalDeployedBefore int `json:"totalDeployedBefore"`
	SuggestedTransfers  int `json:"suggestedTransfers"`
}

type Plan struct {
	Suggestions []TransferSuggestion `json:"suggestions"`
	Summary     *PlanSummary         `json:"summary"`
}

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// RouteResult is a provider-normalized directions answer.
type RouteResult struct {
	DistanceKm       float64 `json:"distanceKm"`
	EstimatedTimeMin int     `json:"estimatedTimeMin"`
	Path             []Point `json:"path"`
}

type Route struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	FromLocation     string    `json:"fromLocation"`
	ToLocation       string    `json:"toLocation"`
	RiskLevel        RiskLevel `json:"riskLevel"`
	DistanceKm       float64   `json:"distanceKm"`
	EstimatedTimeMin int       `json:"estimatedTimeMin"`
	Path             []Point   `json:"path"`
	Degraded         bool      `json:"degraded"` // straight-line placeholder, provider gave no answer
}

type EvacuationPlan struct {
	Origin string  `json:"origin,omitempty"`
	Routes []Route `json:"routes"`
}
