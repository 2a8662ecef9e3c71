package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mr1hm/go-disaster-ops/internal/config"
	"github.com/mr1hm/go-disaster-ops/internal/logging"
	"github.com/mr1hm/go-disaster-ops/internal/metrics"
	"github.com/mr1hm/go-disaster-ops/internal/models"
)

var (
	start = models.NewCoordinates(19.0, 73.0)
	end   = models.NewCoordinates(18.8, 73.5)
)

func testClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Second}
}

func TestORS_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v2/directions/driving-car" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "ors-key" {
			t.Errorf("expected api key in Authorization header, got %q", r.Header.Get("Authorization"))
		}

		var body orsRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(body.Coordinates) != 2 || body.Coordinates[0][0] != 73.0 || body.Coordinates[0][1] != 19.0 {
			t.Errorf("expected [lng,lat] ordering, got %v", body.Coordinates)
		}

		w.Write([]byte(`{"features":[{"properties":{"summary":{"distance":12345,"duration":930}},
			"geometry":{"coordinates":[[73.0,19.0],[73.2,18.9],[73.5,18.8]]}}]}`))
	}))
	defer srv.Close()

	adapter := NewAdapter(NewORS("ors-key", srv.URL, testClient()))
	got := adapter.Route(context.Background(), start, end)
	if got == nil {
		t.Fatal("expected route, got nil")
	}

	if got.DistanceKm != 12.345 {
		t.Errorf("expected 12.345km, got %f", got.DistanceKm)
	}
	if got.EstimatedTimeMin != 16 {
		t.Errorf("expected 16 min, got %d", got.EstimatedTimeMin)
	}
	if len(got.Path) != 3 {
		t.Fatalf("expected 3 path points, got %d", len(got.Path))
	}
	if got.Path[1] != (models.Point{Lat: 18.9, Lng: 73.2}) {
		t.Errorf("expected flipped axis order, got %+v", got.Path[1])
	}
}

func TestGoogle_SuccessUsesTwoPointPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/maps/api/directions/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q.Get("origin") != "19,73" || q.Get("destination") != "18.8,73.5" {
			t.Errorf("unexpected origin/destination: %s -> %s", q.Get("origin"), q.Get("destination"))
		}
		if q.Get("mode") != "driving" || q.Get("key") != "g-key" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}

		w.Write([]byte(`{"status":"OK","routes":[{"legs":[{"distance":{"value":42000},"duration":{"value":600}}]}]}`))
	}))
	defer srv.Close()

	adapter := NewAdapter(NewGoogle("g-key", srv.URL, testClient()))
	got := adapter.Route(context.Background(), start, end)
	if got == nil {
		t.Fatal("expected route, got nil")
	}

	if got.DistanceKm != 42 || got.EstimatedTimeMin != 10 {
		t.Errorf("unexpected summary: %+v", got)
	}
	want := []models.Point{start.Point(), end.Point()}
	if len(got.Path) != 2 || got.Path[0] != want[0] || got.Path[1] != want[1] {
		t.Errorf("expected [start, end] path, got %+v", got.Path)
	}
}

func TestMapbox_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/directions/v5/mapbox/driving/73,19;73.5,18.8") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("geometries") != "geojson" || r.URL.Query().Get("access_token") != "pk.token" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}

		w.Write([]byte(`{"routes":[{"distance":5000,"duration":300,"geometry":{"coordinates":[[73,19],[73.5,18.8]]}}]}`))
	}))
	defer srv.Close()

	adapter := NewAdapter(NewMapbox("pk.token", srv.URL, testClient()))
	got := adapter.Route(context.Background(), start, end)
	if got == nil {
		t.Fatal("expected route, got nil")
	}
	if got.DistanceKm != 5 || got.EstimatedTimeMin != 5 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.Path[0] != (models.Point{Lat: 19, Lng: 73}) {
		t.Errorf("unexpected first point: %+v", got.Path[0])
	}
}

func TestAdapter_FailuresReturnNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"features":[`))
		}},
		{"no features", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"features":[]}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			adapter := NewAdapter(NewORS("key", srv.URL, testClient()))
			if got := adapter.Route(context.Background(), start, end); got != nil {
				t.Errorf("expected nil, got %+v", got)
			}
		})
	}
}

func TestAdapter_HTTP500CountedAsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	counter := metrics.RoutingRequests.WithLabelValues("mapbox", "http_error")
	before := testutil.ToFloat64(counter)

	adapter := NewAdapter(NewMapbox("pk", srv.URL, testClient()))
	if got := adapter.Route(context.Background(), start, end); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}

	if after := testutil.ToFloat64(counter); after != before+1 {
		t.Errorf("expected http_error counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestAdapter_MissingCredentialSkipsNetwork(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	providers := []Provider{
		NewORS("", srv.URL, testClient()),
		NewGoogle("", srv.URL, testClient()),
		NewMapbox("", srv.URL, testClient()),
	}
	for _, p := range providers {
		if got := NewAdapter(p).Route(context.Background(), start, end); got != nil {
			t.Errorf("%s: expected nil without credential", p.Name())
		}
	}

	if hits.Load() != 0 {
		t.Errorf("expected no outbound calls, got %d", hits.Load())
	}
}

func TestAdapter_InvalidCoordinatesSkipsNetwork(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	lat := 19.0
	adapter := NewAdapter(NewORS("key", srv.URL, testClient()))

	if got := adapter.Route(context.Background(), models.Coordinates{Lat: &lat}, end); got != nil {
		t.Error("expected nil for start without lng")
	}
	if got := adapter.Route(context.Background(), start, models.Coordinates{}); got != nil {
		t.Error("expected nil for empty end")
	}
	if hits.Load() != 0 {
		t.Errorf("expected no outbound calls, got %d", hits.Load())
	}
}

func TestAdapter_TimeoutReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"routes":[{"distance":1,"duration":1}]}`))
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	adapter := NewAdapter(NewMapbox("pk", srv.URL, client))
	if got := adapter.Route(context.Background(), start, end); got != nil {
		t.Errorf("expected nil on timeout, got %+v", got)
	}
}

func TestNew_SelectsConfiguredProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{config.ProviderORS, "ors"},
		{config.ProviderGoogle, "google"},
		{config.ProviderMapbox, "mapbox"},
	}

	for _, tt := range tests {
		a, err := New(config.RoutingConfig{Provider: tt.provider, Timeout: time.Second})
		if err != nil {
			t.Fatalf("New(%s) failed: %v", tt.provider, err)
		}
		if a.ProviderName() != tt.want {
			t.Errorf("expected %s, got %s", tt.want, a.ProviderName())
		}
	}

	if _, err := New(config.RoutingConfig{Provider: "OSRM"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNew_WarnsOnceWithoutCredential(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "json"))
	defer slog.SetDefault(prev)

	if _, err := New(config.RoutingConfig{Provider: config.ProviderORS, Timeout: time.Second}); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if n := strings.Count(buf.String(), "no credential"); n != 1 {
		t.Errorf("expected exactly one credential warning, got %d: %s", n, buf.String())
	}

	buf.Reset()
	if _, err := New(config.RoutingConfig{Provider: config.ProviderORS, ORSAPIKey: "key", Timeout: time.Second}); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if strings.Contains(buf.String(), "no credential") {
		t.Errorf("expected no warning with a credential, got %s", buf.String())
	}
}
