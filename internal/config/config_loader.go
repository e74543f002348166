package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsentry/sentry-go"
	"gopkg.in/yaml.v3"

	"departures.metroboard.org/internal/report"
	"departures.metroboard.org/internal/utils"
)

// ValidateConfigFlags ensures that at most one configuration source is specified:
// either a config file "--config-file" or a remote config URL "--config-url".
// Specifying neither is allowed; the built-in board is used then.
//
// Returns an error if more than one input method is specified.
func ValidateConfigFlags(configFile, configURL string) error {
	if configFile != "" && configURL != "" {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

// LoadConfigFromFile reads a board configuration from disk. Files ending in
// .yaml or .yml are parsed as YAML, everything else as JSON. Missing fields take
// the built-in defaults and the result is validated.
func LoadConfigFromFile(filePath string) (Board, error) {
	board, err := loadConfigFromFile(filePath)
	if err != nil {
		err = fmt.Errorf("failed to load config from file %s: %w", filePath, err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.Tags("file_path", filePath),
			Level: sentry.LevelError,
		})
		return Board{}, err
	}
	return board, nil
}

// LoadConfigFromURL fetches a JSON board configuration from a remote HTTP(S) endpoint,
// using the provided client, optional basic authentication and retries with backoff.
func LoadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) (Board, error) {
	board, err := loadConfigFromURL(ctx, client, url, authUser, authPass, maxRetries)
	if err != nil {
		err = fmt.Errorf("failed to load config from URL %s: %w", url, err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.Tags("config_url", url),
			Level: sentry.LevelError,
		})
		return Board{}, err
	}
	return board, nil
}

func loadConfigFromFile(filePath string) (Board, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Board{}, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == ".yaml" || ext == ".yml" {
		return parseBoard(data, yaml.Unmarshal)
	}
	return parseBoard(data, json.Unmarshal)
}

func loadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) (Board, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Board{}, fmt.Errorf("failed to create request: %w", err)
	}

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return Board{}, fmt.Errorf("failed to fetch remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Board{}, fmt.Errorf("remote config returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Board{}, fmt.Errorf("failed to read remote config: %w", err)
	}

	return parseBoard(data, json.Unmarshal)
}

func parseBoard(data []byte, unmarshal func([]byte, any) error) (Board, error) {
	var board Board
	if err := unmarshal(data, &board); err != nil {
		return Board{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	board.applyDefaults()
	if err := board.Validate(); err != nil {
		return Board{}, err
	}
	return board, nil
}
