package app

import (
	"context"
	"log/slog"
	"net/http"

	"departures.metroboard.org/internal/aggregator"
	"departures.metroboard.org/internal/board"
	"departures.metroboard.org/internal/config"
	"departures.metroboard.org/internal/ovapi"
	"departures.metroboard.org/internal/scheduler"
)

// Application represents the main application structure.
// It holds the configuration, the rendered page, the refresh pipeline from the
// OVapi client through the scheduler, the logger, and the application version.
// This structure is used to wire all dependencies together and provide a clean API for the application.
type Application struct {
	Config     *config.Config
	Page       *board.Page
	Renderer   *board.Renderer
	Client     *ovapi.Client
	Aggregator *aggregator.Aggregator
	Scheduler  *scheduler.Scheduler
	Logger     *slog.Logger
	Version    string
}

// New creates and wires all dependencies for the Application.
// Accepts config, logger, client, clock and version as arguments. A nil clock
// uses the real clock.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, clock scheduler.Clock, version string) *Application {
	if clock == nil {
		clock = scheduler.RealClock()
	}

	loc := cfg.Board.Location()
	groupings := cfg.Board.GetGroupings()

	tables := make([]board.TableSpec, 0, len(groupings))
	for _, g := range groupings {
		tables = append(tables, board.TableSpec{ID: g.TargetID, Label: g.Label})
	}
	page := board.NewPage(tables, board.LastUpdatedID, board.RefreshStatusID)

	renderer := board.NewRenderer(page, board.Style{
		LineColors:       cfg.Board.LineColors,
		DefaultLineColor: cfg.Board.DefaultLineColor,
		LightTextLine:    cfg.Board.LightTextLine,
		MaxRows:          cfg.Board.MaxRows,
	}, loc, clock.Now)

	ovapiClient := ovapi.NewClient(cfg.APIBase, client, loc, logger)
	agg := aggregator.New(ovapiClient, cfg.Board.FetchTimeout())
	sched := scheduler.NewFromBoard(agg, renderer, clock, logger, cfg.Board)

	return &Application{
		Config:     cfg,
		Page:       page,
		Renderer:   renderer,
		Client:     ovapiClient,
		Aggregator: agg,
		Scheduler:  sched,
		Logger:     logger,
		Version:    version,
	}
}

// StartRefresh runs the first refresh cycle and arms the scheduler.
// It blocks until the first cycle has rendered.
func (app *Application) StartRefresh(ctx context.Context) error {
	return app.Scheduler.Start(ctx)
}

// StopRefresh cancels the next refresh and waits for a running one.
func (app *Application) StopRefresh() {
	app.Scheduler.Stop()
}
