package models

import "time"

const (
	EventPlanUpdated       = "plan.updated"
	EventPredictionCreated = "prediction.created"
	EventPredictionUpdated = "prediction.updated"
	EventResourceUpdated   = "resource.updated"
	EventAlertCreated      = "alert.created"
	EventAlertUpdated      = "alert.updated"
	EventReportCreated     = "report.created"
	EventReportUpdated     = "report.updated"
)

// Event is pushed to live dashboard subscribers.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(eventType string, data any) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
