package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"departures.metroboard.org/internal/config"
	"departures.metroboard.org/internal/scheduler"
)

type testPass struct {
	line      string
	departure time.Time
}

// fakeOvapi serves /tpc/{code} from per-code passes or status codes.
type fakeOvapi struct {
	mu       sync.Mutex
	passes   map[string][]testPass
	failures map[string]int
}

func (f *fakeOvapi) setPasses(code string, passes ...testPass) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passes[code] = passes
}

func (f *fakeOvapi) setFailure(code string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[code] = status
}

func (f *fakeOvapi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/tpc/")

	f.mu.Lock()
	status, failing := f.failures[code]
	passes := f.passes[code]
	f.mu.Unlock()

	if failing {
		w.WriteHeader(status)
		return
	}

	entries := make(map[string]any, len(passes))
	for i, p := range passes {
		entries["GVB_"+code+"_"+p.line+"_"+string(rune('a'+i))] = map[string]string{
			"TransportType":         "METRO",
			"LinePublicNumber":      p.line,
			"DestinationName50":     "Centraal Station",
			"ExpectedDepartureTime": p.departure.Format("2006-01-02T15:04:05"),
		}
	}
	body := map[string]any{
		code: map[string]any{"Passes": entries},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func amsterdam(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Fatalf("failed to load Europe/Amsterdam: %v", err)
	}
	return loc
}

func newTestApplication(t *testing.T, policy string) (*Application, *fakeOvapi, *scheduler.FakeClock) {
	t.Helper()

	upstream := &fakeOvapi{
		passes:   make(map[string][]testPass),
		failures: make(map[string]int),
	}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	board := config.DefaultBoard()
	board.FailurePolicy = policy

	cfg := config.NewConfig(4000, "testing", board)
	cfg.APIBase = srv.URL

	clock := scheduler.NewFakeClock(time.Date(2026, 10, 14, 8, 0, 30, 0, amsterdam(t)))
	logger := slog.New(slog.DiscardHandler)

	return New(cfg, logger, srv.Client(), clock, "test-version"), upstream, clock
}
