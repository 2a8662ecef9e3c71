package models

// Coordinates is a lat/lng pair where either axis may be unknown.
// Resources recorded before coordinates were tracked carry no position at all.
type Coordinates struct {
	Lat *float64 `json:"lat" yaml:"lat"`
	Lng *float64 `json:"lng" yaml:"lng"`
}

func NewCoordinates(lat, lng float64) Coordinates {
	return Coordinates{Lat: &lat, Lng: &lng}
}

// Known reports whether both lat and lng are present.
func (c Coordinates) Known() bool {
	return c.Lat != nil && c.Lng != nil
}

// Point returns the coordinates as a concrete point. Missing axes become zero.
func (c Coordinates) Point() Point {
	var p Point
	if c.Lat != nil {
		p.Lat = *c.Lat
	}
	if c.Lng != nil {
		p.Lng = *c.Lng
	}
	return p
}

// Point is a fully-known position along a route geometry.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
