package ingestion

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-disaster-ops/internal/models"
)

const SourceGDACS = "gdacs"

type gdacsRSS struct {
	Channel gdacsChannel `xml:"channel"`
}
type gdacsChannel struct {
	Items []gdacsItem `xml:"item"`
}
type gdacsItem struct {
	Title      string          `xml:"title"`
	PubDate    string          `xml:"pubDate"`
	Lat        float64         `xml:"http://www.w3.org/2003/01/geo/wgs84_pos# Point>lat"`
	Lon        float64         `xml:"http://www.w3.org/2003/01/geo/wgs84_pos# Point>long"`
	Point      string          `xml:"http://www.georss.org/georss point"`
	EventType  string          `xml:"http://www.gdacs.org eventtype"`
	AlertLevel string          `xml:"http://www.gdacs.org alertlevel"`
	EventID    string          `xml:"http://www.gdacs.org eventid"`
	Country    string          `xml:"http://www.gdacs.org country"`
	FromDate   string          `xml:"http://www.gdacs.org fromdate"`
	IsCurrent  string          `xml:"http://www.gdacs.org iscurrent"`
	Population gdacsPopulation `xml:"http://www.gdacs.org population"`
}
type gdacsPopulation struct {
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

func (m *Manager) pollGDACS(ctx context.Context, url string) ([]*models.RiskPrediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	return parseGDACS(resp.Body, time.Now().UTC())
}

func parseGDACS(r io.Reader, now time.Time) ([]*models.RiskPrediction, error) {
	var data gdacsRSS
	if err := xml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	predictions := make([]*models.RiskPrediction, 0, len(data.Channel.Items))
	for _, item := range data.Channel.Items {
		if item.EventID == "" {
			continue
		}

		severity, riskScore := mapGDACSAlertLevel(item.AlertLevel)
		lat, lng := item.coordinates()
		active := !strings.EqualFold(strings.TrimSpace(item.IsCurrent), "false")

		location := strings.TrimSpace(item.Country)
		if location == "" {
			location = strings.TrimSpace(item.Title)
		}

		p := &models.RiskPrediction{
			ID:                 fmt.Sprintf("gdacs_%s_%s", strings.ToLower(item.EventType), item.EventID),
			Type:               mapGDACSEventType(item.EventType),
			Location:           location,
			Coordinates:        models.NewCoordinates(lat, lng),
			Probability:        1, // GDACS reports observed events
			Severity:           severity,
			PredictedTime:      item.eventTime(),
			AffectedPopulation: parsePopulation(item.Population.Value),
			RiskScore:          riskScore,
			IsActive:           &active,
			Source:             SourceGDACS,
			CreatedAt:          now,
		}
		predictions = append(predictions, p)
	}

	return predictions, nil
}

// coordinates prefers geo:Point and falls back to the "lat lon" georss:point text.
func (item gdacsItem) coordinates() (float64, float64) {
	if item.Lat != 0 || item.Lon != 0 {
		return item.Lat, item.Lon
	}
	fields := strings.Fields(item.Point)
	if len(fields) != 2 {
		return 0, 0
	}
	lat, _ := strconv.ParseFloat(fields[0], 64)
	lng, _ := strconv.ParseFloat(fields[1], 64)
	return lat, lng
}

func (item gdacsItem) eventTime() time.Time {
	for _, raw := range []string{item.FromDate, item.PubDate} {
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC1123, raw)
		if err == nil {
			return ts.UTC()
		}
		slog.Warn("GDACS timestamp parsing failed", "id", item.EventID, "error", err.Error())
	}
	return time.Time{}
}

func parsePopulation(raw string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f)
}

func mapGDACSAlertLevel(level string) (models.Severity, float64) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "red":
		return models.SeverityCritical, 9
	case "orange":
		return models.SeverityHigh, 6
	default:
		return models.SeverityLow, 3
	}
}

func mapGDACSEventType(eventType string) string {
	switch strings.ToUpper(eventType) {
	case "EQ":
		return "earthquake"
	case "TC":
		return "cyclone"
	case "FL":
		return "flood"
	case "VO":
		return "volcano"
	case "TS":
		return "tsunami"
	case "WF":
		return "wildfire"
	case "DR":
		return "drought"
	default:
		return "unknown"
	}
}
