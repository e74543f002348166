package aggregator

import (
	"context"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"departures.metroboard.org/internal/models"
)

// StopFetcher fetches the departures of a single stop code.
// *ovapi.Client satisfies it.
type StopFetcher interface {
	FetchDeparturesForStopCode(ctx context.Context, code string) ([]models.Departure, error)
}

// Aggregator merges the departures of every stop code in a grouping.
type Aggregator struct {
	fetcher      StopFetcher
	fetchTimeout time.Duration
}

// New creates an Aggregator. A positive fetchTimeout bounds every single stop request.
func New(fetcher StopFetcher, fetchTimeout time.Duration) *Aggregator {
	return &Aggregator{
		fetcher:      fetcher,
		fetchTimeout: fetchTimeout,
	}
}

// FetchDeparturesForGrouping fetches every stop code of grouping concurrently and waits
// for all of them to settle. If any fetch failed the first error is returned unmodified
// and no departures are returned. Otherwise the per-code results are concatenated in
// configuration order and stable-sorted by departure time.
func (a *Aggregator) FetchDeparturesForGrouping(ctx context.Context, grouping models.StopGrouping) ([]models.Departure, error) {
	chunks := make([][]models.Departure, len(grouping.Codes))

	p := pool.New().WithErrors().WithFirstError()
	for i, code := range grouping.Codes {
		p.Go(func() error {
			fetchCtx, cancel := a.fetchContext(ctx)
			defer cancel()

			departures, err := a.fetcher.FetchDeparturesForStopCode(fetchCtx, code)
			if err != nil {
				return err
			}
			chunks[i] = departures
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return Merge(chunks...), nil
}

func (a *Aggregator) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.fetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.fetchTimeout)
}

// Merge concatenates chunks in order and sorts the result ascending by departure
// time, keeping the relative order of equal timestamps.
func Merge(chunks ...[]models.Departure) []models.Departure {
	var total int
	for _, c := range chunks {
		total += len(c)
	}

	merged := make([]models.Departure, 0, total)
	for _, c := range chunks {
		merged = append(merged, c...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DepartureTime.Before(merged[j].DepartureTime)
	})
	return merged
}
