package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

// ORS talks to the openrouteservice directions API.
type ORS struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewORS(apiKey, baseURL string, client *http.Client) *ORS {
	return &ORS{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type orsRequest struct {
	Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
}

type orsResponse struct {
	Features []orsFeature `json:"features"`
}

type orsFeature struct {
	Properties struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
	} `json:"properties"`
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
	} `json:"geometry"`
}

func (o *ORS) Name() string { return "ors" }

func (o *ORS) Directions(ctx context.Context, start, end models.Point) (*models.RouteResult, error) {
	if o.apiKey == "" {
		return nil, ErrMissingCredential
	}

	body, err := json.Marshal(orsRequest{
		Coordinates: [][]float64{
			{start.Lng, start.Lat},
			{end.Lng, end.Lat},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ors: error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v2/directions/driving-car", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ors: error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", o.apiKey)

	var data orsResponse
	if err := doJSON(o.client, o.Name(), req, &data); err != nil {
		return nil, err
	}
	if len(data.Features) == 0 {
		return nil, ErrNoRoute
	}

	f := data.Features[0]
	return normalize(f.Properties.Summary.Distance, f.Properties.Summary.Duration, f.Geometry.Coordinates, start, end), nil
}
