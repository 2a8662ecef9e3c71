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

// Google talks to the Google Maps Directions API. Only leg summaries are read,
// so the path is always the two endpoints.
type Google struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGoogle(apiKey, baseURL string, client *http.Client) *Google {
	return &Google{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type googleResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

func (g *Google) Name() string { return "google" }

func (g *Google) Directions(ctx context.Context, start, end models.Point) (*models.RouteResult, error) {
	if g.apiKey == "" {
		return nil, ErrMissingCredential
	}

	q := url.Values{}
	q.Set("origin", latLng(start))
	q.Set("destination", latLng(end))
	q.Set("mode", "driving")
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/maps/api/directions/json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google: error creating request: %w", err)
	}

	var data googleResponse
	if err := doJSON(g.client, g.Name(), req, &data); err != nil {
		return nil, err
	}
	if len(data.Routes) == 0 || len(data.Routes[0].Legs) == 0 {
		return nil, ErrNoRoute
	}

	leg := data.Routes[0].Legs[0]
	return normalize(leg.Distance.Value, leg.Duration.Value, nil, start, end), nil
}

func latLng(p models.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
