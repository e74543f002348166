package ovapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"departures.metroboard.org/internal/format"
	"departures.metroboard.org/internal/metrics"
	"departures.metroboard.org/internal/models"
	"departures.metroboard.org/internal/utils"
)

// maxBodyBytes caps a single /tpc response.
const maxBodyBytes = 4 << 20

// Client fetches departures from the OVapi timing point endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	location   *time.Location
	logger     *slog.Logger
}

// NewClient creates a client for baseURL. Pass times without a zone offset are read in loc.
func NewClient(baseURL string, httpClient *http.Client, loc *time.Location, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		location:   loc,
		logger:     logger,
	}
}

// BaseURL returns the API base the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchDeparturesForStopCode returns the metro departures currently announced for code.
// A non-2xx response yields a *FetchError; a body without the code entry yields a *DataError.
// The call is not retried.
func (c *Client) FetchDeparturesForStopCode(ctx context.Context, code string) ([]models.Departure, error) {
	reqURL := fmt.Sprintf("%s/tpc/%s", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{StopCode: code, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.OvapiStatus.WithLabelValues(code).Set(0)
		return nil, &FetchError{StopCode: code, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.OvapiStatus.WithLabelValues(code).Set(0)
		return nil, &FetchError{StopCode: code, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.OvapiStatus.WithLabelValues(code).Set(0)
		return nil, &FetchError{StopCode: code, StatusCode: resp.StatusCode, Err: err}
	}

	var payload tpcResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.OvapiStatus.WithLabelValues(code).Set(0)
		return nil, &DataError{StopCode: code, Reason: "failed to decode response", Err: err}
	}

	node, ok := payload[code]
	if !ok || node == nil {
		metrics.OvapiStatus.WithLabelValues(code).Set(0)
		return nil, &DataError{StopCode: code, Reason: "No stop found"}
	}
	metrics.OvapiStatus.WithLabelValues(code).Set(1)

	departures := c.metroDepartures(code, node.Passes)
	c.logger.Debug("fetched departures", "stop_code", code, "passes", len(node.Passes), "metro", len(departures))
	return departures, nil
}

// metroDepartures filters passes to metro and normalizes them. Passes are visited
// in key order so equal departure times keep a deterministic order.
func (c *Client) metroDepartures(code string, passes map[string]Pass) []models.Departure {
	keys := make([]string, 0, len(passes))
	for k := range passes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	departures := make([]models.Departure, 0, len(keys))
	for _, k := range keys {
		p := passes[k]
		if p.TransportType != TransportTypeMetro {
			continue
		}

		departureTime, err := utils.ParseTimestamp(p.ExpectedDepartureTime, c.location)
		if err != nil {
			c.logger.Warn("skipping pass with unreadable departure time",
				"stop_code", code, "pass", k, "error", err)
			continue
		}

		departures = append(departures, models.Departure{
			Line:          p.LinePublicNumber,
			Destination:   format.NormalizeDestination(p.DestinationName50),
			DepartureTime: departureTime,
		})
	}

	sort.SliceStable(departures, func(i, j int) bool {
		return departures[i].DepartureTime.Before(departures[j].DepartureTime)
	})
	return departures
}
