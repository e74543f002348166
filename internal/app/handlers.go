package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"departures.metroboard.org/internal/board"
	"departures.metroboard.org/internal/models"
	"departures.metroboard.org/internal/report"
	"departures.metroboard.org/internal/utils"
)

const (
	boardTitle = "Metro departures"

	// boardRefreshSeconds is how often the browser reloads the served board.
	boardRefreshSeconds = 30
)

// HealthStatus defines the structure of the JSON response returned by the
// application's health check endpoint (/v1/healthcheck).
//
// Fields:
//   - Status: A high-level indicator of service availability (e.g., "available").
//   - Environment: The current environment in which the app is running (e.g., "development", "production").
//   - Version: The application version string, useful for deployment tracking.
//   - Groupings: The number of stop groupings rendered on the board.
//   - APIBase: The OVapi base URL resolved at startup.
//   - LastUpdated: Time of the last fully successful refresh, omitted before the first one.
//   - Error: The refresh status text of the latest cycle, if it failed.
//   - Ready: true when groupings are configured and the board either refreshed
//     successfully at least once or has not failed yet.
type HealthStatus struct {
	Status      string     `json:"status"`
	Environment string     `json:"environment"`
	Version     string     `json:"version"`
	Groupings   int        `json:"groupings"`
	APIBase     string     `json:"api_base"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Error       string     `json:"error,omitempty"`
	Ready       bool       `json:"ready"`
}

// healthcheckHandler responds with a JSON representation of the application's health status.
// If the application is not ready it responds with HTTP 500 Internal Server Error;
// otherwise, it responds with HTTP 200 OK.
func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	status := app.Scheduler.Status()
	numGroupings := len(app.Config.Board.Groupings)

	ready := numGroupings > 0 && (status.HasUpdated() || status.Error == "")

	health := HealthStatus{
		Status:      "available",
		Environment: app.Config.Env,
		Version:     app.Version,
		Groupings:   numGroupings,
		APIBase:     app.Client.BaseURL(),
		Error:       status.Error,
		Ready:       ready,
	}
	if status.HasUpdated() {
		lastUpdated := status.LastUpdated
		health.LastUpdated = &lastUpdated
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusInternalServerError
	}
	app.writeJSON(w, code, health)
}

// DeparturesResponse is the JSON snapshot served by /v1/departures.
type DeparturesResponse struct {
	Status models.RefreshStatus  `json:"status"`
	Tables []board.TableSnapshot `json:"tables"`
	Texts  map[string]string     `json:"texts"`
}

// departuresHandler serves the rendered rows of every grouping together with
// the refresh status.
func (app *Application) departuresHandler(w http.ResponseWriter, r *http.Request) {
	snap := app.Page.Snapshot()
	app.writeJSON(w, http.StatusOK, DeparturesResponse{
		Status: app.Scheduler.Status(),
		Tables: snap.Tables,
		Texts:  snap.Texts,
	})
}

// boardHandler renders the departure board as an HTML page.
func (app *Application) boardHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := board.WriteHTML(&buf, board.PageView{
		Title:          boardTitle,
		RefreshSeconds: boardRefreshSeconds,
		Snapshot:       app.Page.Snapshot(),
	})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		app.Logger.Error("Failed to encode JSON response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.Logger.Error("Failed to serve request", "method", r.Method, "path", r.URL.Path, "error", err)
	report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
		Tags:  utils.Tags("path", r.URL.Path, "method", r.Method),
		Level: sentry.LevelError,
	})
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
