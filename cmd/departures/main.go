package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"departures.metroboard.org/internal/app"
	"departures.metroboard.org/internal/config"
	"departures.metroboard.org/internal/ovapi"
	"departures.metroboard.org/internal/report"
)

// Declare a string containing the application version number.
const version = "1.0.0"

// configFetchRetries bounds the attempts of a remote config download.
const configFetchRetries = 5

func main() {
	var cfg config.Config

	flag.IntVar(&cfg.Port, "port", 4000, "HTTP server port")
	flag.StringVar(&cfg.Env, "env", "development", "Environment (development|staging|production)")
	flag.StringVar(&cfg.PublicURL, "public-url", "", "Public URL the board is served at; an https URL selects the secure OVapi host")

	var (
		configFile  = flag.String("config-file", "", "Path to a local JSON or YAML board configuration file")
		configURL   = flag.String("config-url", "", "URL to a remote JSON board configuration file")
		apiOverride = flag.String("api", "", "OVapi base URL, overrides OVAPI_BASE")
	)

	flag.Parse()

	if err := config.ValidateConfigFlags(*configFile, *configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := report.SetupSentry(os.Getenv("SENTRY_DSN"), cfg.Env, version); err != nil {
		logger.Error("Failed to initialize Sentry", "error", err)
	}
	defer report.FlushSentry()

	cfg.APIBase = ovapi.ResolveAPIBase(*apiOverride, os.Getenv("OVAPI_BASE"), isSecure(cfg.PublicURL))
	report.ConfigureScope(cfg.Env, version, cfg.APIBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := app.NewPooledClient(10 * time.Second)

	board, err := loadBoard(ctx, client, *configFile, *configURL)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		report.FlushSentry()
		os.Exit(1)
	}
	cfg.Board = board

	application := app.New(&cfg, logger, client, nil, version)

	logger.Info("starting departure board",
		"api_base", cfg.APIBase,
		"groupings", len(cfg.Board.Groupings),
		"env", cfg.Env)

	if err := application.StartRefresh(ctx); err != nil {
		logger.Error("Failed to start refresh", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Info("shutting down server", "addr", srv.Addr)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		report.ReportError(err, sentry.LevelFatal)
		report.FlushSentry()
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err := <-shutdownErr; err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	application.StopRefresh()
	logger.Info("stopped server", "addr", srv.Addr)
}

// loadBoard loads the board from a file or URL, or returns the built-in board
// when neither is given.
func loadBoard(ctx context.Context, client *http.Client, configFile, configURL string) (config.Board, error) {
	switch {
	case configFile != "":
		return config.LoadConfigFromFile(configFile)
	case configURL != "":
		return config.LoadConfigFromURL(ctx, client, configURL,
			os.Getenv("CONFIG_AUTH_USER"), os.Getenv("CONFIG_AUTH_PASS"), configFetchRetries)
	default:
		board := config.DefaultBoard()
		return board, board.Validate()
	}
}

// isSecure reports whether the board is published over https.
func isSecure(publicURL string) bool {
	if publicURL == "" {
		return false
	}
	u, err := url.Parse(publicURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https"
}
