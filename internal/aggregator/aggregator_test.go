package aggregator

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"departures.metroboard.org/internal/models"
)

type fakeFetcher struct {
	mu         sync.Mutex
	departures map[string][]models.Departure
	errs       map[string]error
	delays     map[string]time.Duration
	calls      atomic.Int32
}

func (f *fakeFetcher) FetchDeparturesForStopCode(ctx context.Context, code string) ([]models.Departure, error) {
	f.calls.Add(1)

	f.mu.Lock()
	delay := f.delays[code]
	err := f.errs[code]
	departures := f.departures[code]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return departures, nil
}

func dep(line string, at time.Time) models.Departure {
	return models.Departure{Line: line, Destination: "Centraal Station", DepartureTime: at}
}

func assertSorted(t *testing.T, departures []models.Departure) {
	t.Helper()
	for i := 1; i < len(departures); i++ {
		if departures[i].DepartureTime.Before(departures[i-1].DepartureTime) {
			t.Fatalf("departures not sorted at %d: %v before %v", i, departures[i].DepartureTime, departures[i-1].DepartureTime)
		}
	}
}

func TestFetchDeparturesForGrouping(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	grouping := *models.NewStopGrouping("Richting Centraal", "rows-30009567", "30009567", "30009518")

	fetcher := &fakeFetcher{
		departures: map[string][]models.Departure{
			"30009567": {
				dep("53", now.Add(2*time.Minute)),
				dep("54", now.Add(25*time.Minute)),
				dep("53", now.Add(1*time.Minute)),
			},
			"30009518": {
				dep("51", now.Add(10*time.Minute)),
			},
		},
		delays: map[string]time.Duration{"30009567": 20 * time.Millisecond},
	}

	departures, err := New(fetcher, time.Second).FetchDeparturesForGrouping(context.Background(), grouping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(departures) != 4 {
		t.Fatalf("expected 4 departures, got %d", len(departures))
	}
	wantOffsets := []time.Duration{1, 2, 10, 25}
	for i, d := range departures {
		if want := now.Add(wantOffsets[i] * time.Minute); !d.DepartureTime.Equal(want) {
			t.Errorf("departure %d: expected %v, got %v", i, want, d.DepartureTime)
		}
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Errorf("expected one call per stop code, got %d", got)
	}
}

func TestFetchDeparturesForGroupingAlwaysSorted(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	codes := []string{"a", "b", "c"}
	r := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 50; round++ {
		fetcher := &fakeFetcher{
			departures: map[string][]models.Departure{},
			delays:     map[string]time.Duration{},
		}
		for _, code := range codes {
			n := r.IntN(6)
			for i := 0; i < n; i++ {
				fetcher.departures[code] = append(fetcher.departures[code],
					dep(code, now.Add(time.Duration(r.IntN(40))*time.Minute)))
			}
			fetcher.delays[code] = time.Duration(r.IntN(3)) * time.Millisecond
		}

		departures, err := New(fetcher, 0).FetchDeparturesForGrouping(context.Background(),
			*models.NewStopGrouping("x", "rows-x", codes...))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSorted(t, departures)
	}
}

func TestFetchDeparturesForGroupingFailsFast(t *testing.T) {
	now := time.Now()
	apiErr := errors.New("API 503")

	fetcher := &fakeFetcher{
		departures: map[string][]models.Departure{
			"ok": {dep("51", now)},
		},
		errs:   map[string]error{"bad": apiErr},
		delays: map[string]time.Duration{"ok": 20 * time.Millisecond},
	}

	departures, err := New(fetcher, time.Second).FetchDeparturesForGrouping(context.Background(),
		*models.NewStopGrouping("x", "rows-x", "ok", "bad"))
	if !errors.Is(err, apiErr) {
		t.Fatalf("expected the fetch error unmodified, got %v", err)
	}
	if departures != nil {
		t.Errorf("expected no partial results, got %+v", departures)
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Errorf("expected every stop code to be fetched, got %d calls", got)
	}
}

func TestFetchDeparturesForGroupingTimeout(t *testing.T) {
	fetcher := &fakeFetcher{
		delays: map[string]time.Duration{"slow": time.Minute},
	}

	start := time.Now()
	_, err := New(fetcher, 20*time.Millisecond).FetchDeparturesForGrouping(context.Background(),
		*models.NewStopGrouping("x", "rows-x", "slow"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("fetch timeout was not applied")
	}
}

func TestMergeIsStable(t *testing.T) {
	at := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

	merged := Merge(
		[]models.Departure{dep("53", at), dep("54", at.Add(time.Minute))},
		[]models.Departure{dep("51", at)},
	)

	want := []string{"53", "51", "54"}
	for i, d := range merged {
		if d.Line != want[i] {
			t.Errorf("position %d: expected line %s, got %s", i, want[i], d.Line)
		}
	}

	if got := Merge(); len(got) != 0 {
		t.Errorf("expected empty merge, got %v", got)
	}
}
