package models

import "time"

const AlertStatusActive = "active"

// Alert is an operator-facing notification. Alerts raised by a citizen report carry its ID.
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	IsRead    bool      `json:"isRead"`
	ReportID  string    `json:"reportId,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}
