package routing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

// Mapbox talks to the Mapbox Directions API with GeoJSON geometries.
type Mapbox struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewMapbox(token, baseURL string, client *http.Client) *Mapbox {
	return &Mapbox{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type mapboxResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

func (m *Mapbox) Name() string { return "mapbox" }

func (m *Mapbox) Directions(ctx context.Context, start, end models.Point) (*models.RouteResult, error) {
	if m.token == "" {
		return nil, ErrMissingCredential
	}

	q := url.Values{}
	q.Set("geometries", "geojson")
	q.Set("access_token", m.token)

	endpoint := fmt.Sprintf("%s/directions/v5/mapbox/driving/%s;%s?%s", m.baseURL, lngLat(start), lngLat(end), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("mapbox: error creating request: %w", err)
	}

	var data mapboxResponse
	if err := doJSON(m.client, m.Name(), req, &data); err != nil {
		return nil, err
	}
	if len(data.Routes) == 0 {
		return nil, ErrNoRoute
	}

	r := data.Routes[0]
	return normalize(r.Distance, r.Duration, r.Geometry.Coordinates, start, end), nil
}

func lngLat(p models.Point) string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
