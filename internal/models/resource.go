package models

import "time"

type RoadStatus string

const (
	RoadStatusClear   RoadStatus = "clear"
	RoadStatusBlocked RoadStatus = "blocked"
	RoadStatusFlooded RoadStatus = "flooded"
)

const ResourceStatusDepleted = "depleted"

type Resource struct {
	ID          string      `json:"id" yaml:"id"`
	Type        string      `json:"type" yaml:"type"` // medical, food, shelter, rescue, transport, ...
	Name        string      `json:"name" yaml:"name"`
	Location    string      `json:"location" yaml:"location"`
	Coordinates Coordinates `json:"coordinates" yaml:"coordinates"`
	Quantity    int         `json:"quantity" yaml:"quantity"`   // total units
	Available   int         `json:"available" yaml:"available"` // units not yet deployed
	RoadStatus  RoadStatus  `json:"roadStatus,omitempty" yaml:"roadStatus"`
	Status      string      `json:"status" yaml:"status"`
	Description string      `json:"description,omitempty" yaml:"description"`
	UpdatedAt   time.Time   `json:"lastUpdated" yaml:"-"`
}

// Deployed is the number of units currently out in the field.
func (r *Resource) Deployed() int {
	return max(0, r.Quantity-r.Available)
}

// RoadImpassable reports whether the resource sits behind a blocked or flooded road.
func (r *Resource) RoadImpassable() bool {
	return r.RoadStatus == RoadStatusBlocked || r.RoadStatus == RoadStatusFlooded
}

type ResourceTypeStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}

type ResourceStats struct {
	Total    int                          `json:"total"`
	Deployed int                          `json:"deployed"`
	ByType   map[string]ResourceTypeStats `json:"byType"`
	ByStatus map[string]int               `json:"byStatus"`
}

func ComputeResourceStats(resources []Resource) ResourceStats {
	stats := ResourceStats{
		ByType:   make(map[string]ResourceTypeStats),
		ByStatus: make(map[string]int),
	}
	for _, r := range resources {
		stats.Total += r.Quantity
		stats.Deployed += r.Quantity - r.Available

		t := stats.ByType[r.Type]
		t.Total += r.Quantity
		t.Available += r.Available
		stats.ByType[r.Type] = t

		stats.ByStatus[r.Status]++
	}
	return stats
}
