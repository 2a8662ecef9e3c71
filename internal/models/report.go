package models

import "time"

type ReportStatus string

const (
	ReportStatusReported      ReportStatus = "reported"
	ReportStatusVerified      ReportStatus = "verified"
	ReportStatusInvestigating ReportStatus = "investigating"
	ReportStatusResolved      ReportStatus = "resolved"
)

var ReportStatuses = []ReportStatus{
	ReportStatusReported,
	ReportStatusVerified,
	ReportStatusInvestigating,
	ReportStatusResolved,
}

func (s ReportStatus) Valid() bool {
	for _, v := range ReportStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Report is a disaster sighting submitted by a member of the public.
type Report struct {
	ID              string       `json:"id"`
	Type            string       `json:"type"`
	Severity        Severity     `json:"severity"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Location        string       `json:"location"`
	Coordinates     Coordinates  `json:"coordinates"`
	Status          ReportStatus `json:"status"`
	ReporterName    string       `json:"reporterName,omitempty"`
	ReporterContact string       `json:"reporterContact,omitempty"`
	EvidenceURLs    []string     `json:"evidenceUrls,omitempty"`
	CreatedAt       time.Time    `json:"timestamp"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// NewAlert builds the unread alert raised when the report comes in.
func (r *Report) NewAlert(id string) *Alert {
	return &Alert{
		ID:        id,
		Type:      r.Type,
		Severity:  r.Severity,
		Title:     "Reported: " + r.Title,
		Message:   r.Description,
		Location:  r.Location,
		Status:    AlertStatusActive,
		ReportID:  r.ID,
		CreatedAt: r.CreatedAt,
	}
}
