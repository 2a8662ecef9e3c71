package models

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return Severity(strings.ToLower(s))
	}
}

type RiskPrediction struct {
	ID                 string      `json:"id" yaml:"id"`
	Type               string      `json:"type" yaml:"type"` // hazard category, e.g. "flood"
	Location           string      `json:"location" yaml:"location"`
	Coordinates        Coordinates `json:"coordinates" yaml:"coordinates"`
	Probability        float64     `json:"probability" yaml:"probability"` // 0..1
	Severity           Severity    `json:"severity" yaml:"severity"`
	PredictedTime      time.Time   `json:"predictedTime" yaml:"predictedTime"`
	AffectedPopulation int64       `json:"affectedPopulation" yaml:"affectedPopulation"`
	RiskScore          float64     `json:"riskScore" yaml:"riskScore"` // 0..10
	IsActive           *bool       `json:"isActive,omitempty" yaml:"isActive"`
	Source             string      `json:"source,omitempty" yaml:"source"` // "gdacs", "manual", ...
	CreatedAt          time.Time   `json:"createdAt" yaml:"-"`
}

// Active treats an unset flag as active; only an explicit false deactivates.
func (p *RiskPrediction) Active() bool {
	return p.IsActive == nil || *p.IsActive
}
