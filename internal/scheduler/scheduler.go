// Package scheduler drives the periodic refresh of the departure board.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"departures.metroboard.org/internal/config"
	"departures.metroboard.org/internal/metrics"
	"departures.metroboard.org/internal/models"
	"departures.metroboard.org/internal/report"
)

// ConnectionFailed is shown in the refresh-status element after a failed cycle.
const ConnectionFailed = "Connection failed"

// ErrAlreadyStarted is returned by Start on a running or stopped Scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// GroupingFetcher returns the merged, sorted departures of one grouping.
type GroupingFetcher interface {
	FetchDeparturesForGrouping(ctx context.Context, grouping models.StopGrouping) ([]models.Departure, error)
}

// BoardRenderer writes refresh results into the page.
type BoardRenderer interface {
	Render(targetID string, departures []models.Departure)
	SetLastUpdated(t time.Time)
	SetRefreshStatus(text string)
}

// Options controls the cadence and failure handling of a Scheduler.
type Options struct {
	Groupings     []models.StopGrouping
	Interval      time.Duration
	MinDelay      time.Duration
	MaxRows       int
	FailurePolicy string
}

// CycleResult describes one finished refresh cycle.
type CycleResult struct {
	Started  time.Time
	Duration time.Duration
	Status   models.RefreshStatus
	// Rendered and Failed hold target ids, in grouping order.
	Rendered []string
	Failed   []string
	Err      error
}

// Scheduler runs refresh cycles aligned to the interval boundary. A new cycle
// is armed only after the previous one finished rendering, so cycles never overlap.
type Scheduler struct {
	fetcher  GroupingFetcher
	renderer BoardRenderer
	clock    Clock
	logger   *slog.Logger
	opts     Options

	mu       sync.Mutex
	ctx      context.Context
	timer    Timer
	started  bool
	stopped  bool
	inflight sync.WaitGroup
	handlers []func(CycleResult)

	cycleMu sync.Mutex

	statusMu sync.RWMutex
	status   models.RefreshStatus
}

// New creates a Scheduler. A nil clock uses the real clock.
func New(fetcher GroupingFetcher, renderer BoardRenderer, clock Clock, logger *slog.Logger, opts Options) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = config.PolicyIsolated
	}
	return &Scheduler{
		fetcher:  fetcher,
		renderer: renderer,
		clock:    clock,
		logger:   logger,
		opts:     opts,
	}
}

// NewFromBoard creates a Scheduler using the cadence and groupings of board.
func NewFromBoard(fetcher GroupingFetcher, renderer BoardRenderer, clock Clock, logger *slog.Logger, board config.Board) *Scheduler {
	return New(fetcher, renderer, clock, logger, Options{
		Groupings:     board.GetGroupings(),
		Interval:      board.RefreshInterval(),
		MinDelay:      board.MinDelay(),
		MaxRows:       board.MaxRows,
		FailurePolicy: board.FailurePolicy,
	})
}

// NextDelay returns the wait from now until the next interval boundary, never
// less than the minimum delay. A now exactly on a boundary waits a full interval.
func (s *Scheduler) NextDelay(now time.Time) time.Duration {
	return NextDelay(now, s.opts.Interval, s.opts.MinDelay)
}

// NextDelay computes max(minDelay, ceil((now+1ms)/interval)*interval - now)
// on Unix milliseconds.
func NextDelay(now time.Time, interval, minDelay time.Duration) time.Duration {
	ms := now.UnixMilli()
	step := interval.Milliseconds()
	if step <= 0 {
		return minDelay
	}
	next := ((ms + 1 + step - 1) / step) * step
	delay := time.Duration(next-ms) * time.Millisecond
	if delay < minDelay {
		return minDelay
	}
	return delay
}

// OnTick registers handler to be called after every cycle.
func (s *Scheduler) OnTick(handler func(CycleResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Status returns the outcome of the most recent cycle.
func (s *Scheduler) Status() models.RefreshStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// Start runs the first cycle immediately, blocking until it has rendered, and
// arms the timer for the next one. Cycles stop when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx = ctx
	s.inflight.Add(1)
	s.mu.Unlock()

	s.logger.Info("Starting refresh scheduler",
		"groupings", len(s.opts.Groupings),
		"interval", s.opts.Interval,
		"policy", s.opts.FailurePolicy)

	defer s.inflight.Done()
	defer s.schedule()
	s.RunCycle(ctx)
	return nil
}

// Stop cancels the pending timer and waits for an in-flight cycle to finish.
// After Stop no further cycles run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.started = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.inflight.Wait()
	s.logger.Info("Refresh scheduler stopped")
}

func (s *Scheduler) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.ctx.Err() != nil {
		return
	}
	delay := s.NextDelay(s.clock.Now())
	s.timer = s.clock.AfterFunc(delay, s.tick)
	s.logger.Debug("Next refresh armed", "delay", delay)
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	ctx := s.ctx
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	if ctx.Err() != nil {
		return
	}
	defer s.schedule()
	s.RunCycle(ctx)
}

type groupingResult struct {
	departures []models.Departure
	err        error
}

// RunCycle fetches every grouping concurrently, renders according to the
// failure policy, and updates the refresh status. Concurrent calls are serialized.
func (s *Scheduler) RunCycle(ctx context.Context) CycleResult {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	started := s.clock.Now()
	groupings := s.opts.Groupings
	results := make([]groupingResult, len(groupings))

	p := pool.New()
	for i, grouping := range groupings {
		p.Go(func() {
			deps, err := s.fetcher.FetchDeparturesForGrouping(ctx, grouping)
			results[i] = groupingResult{departures: deps, err: err}
		})
	}
	p.Wait()

	result := CycleResult{Started: started}
	var errs []error
	for i, grouping := range groupings {
		err := results[i].err
		if err == nil {
			continue
		}
		result.Failed = append(result.Failed, grouping.TargetID)
		errs = append(errs, fmt.Errorf("grouping %s: %w", grouping.TargetID, err))

		metrics.GroupingFailures.WithLabelValues(grouping.TargetID).Inc()
		report.ReportGroupingFailure(err, grouping.TargetID, grouping.Codes)
		s.logger.Error("Failed to fetch departures",
			"target_id", grouping.TargetID,
			"label", grouping.Label,
			"codes", grouping.Codes,
			"error", err)
	}
	result.Err = errors.Join(errs...)

	if len(errs) == 0 || s.opts.FailurePolicy != config.PolicyJoined {
		for i, grouping := range groupings {
			if results[i].err != nil {
				continue
			}
			s.renderer.Render(grouping.TargetID, results[i].departures)
			result.Rendered = append(result.Rendered, grouping.TargetID)
			metrics.RenderedRows.WithLabelValues(grouping.TargetID).Set(float64(s.rowCount(results[i].departures)))
		}
	}

	status := s.Status()
	if len(errs) == 0 {
		now := s.clock.Now()
		status = models.RefreshStatus{LastUpdated: now}
		s.renderer.SetLastUpdated(now)
		s.renderer.SetRefreshStatus("")
		metrics.RefreshCycles.WithLabelValues(metrics.OutcomeSuccess).Inc()
		metrics.LastSuccessTimestamp.Set(float64(now.Unix()))
	} else {
		status.Error = ConnectionFailed
		s.renderer.SetRefreshStatus(ConnectionFailed)
		metrics.RefreshCycles.WithLabelValues(metrics.OutcomeFailure).Inc()
	}

	s.statusMu.Lock()
	s.status = status
	s.statusMu.Unlock()

	result.Status = status
	result.Duration = s.clock.Now().Sub(started)
	metrics.CycleDuration.Observe(result.Duration.Seconds())

	s.logger.Info("Refresh cycle finished",
		"rendered", len(result.Rendered),
		"failed", len(result.Failed),
		"duration", result.Duration)

	s.mu.Lock()
	handlers := make([]func(CycleResult), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()
	for _, h := range handlers {
		h(result)
	}
	return result
}

func (s *Scheduler) rowCount(departures []models.Departure) int {
	if s.opts.MaxRows > 0 && len(departures) > s.opts.MaxRows {
		return s.opts.MaxRows
	}
	return len(departures)
}
