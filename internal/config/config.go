package config

import (
	"time"
	_ "time/tzdata"

	"departures.metroboard.org/internal/models"
)

// Grouping failure policies.
const (
	// PolicyIsolated renders every grouping whose fetch succeeded, even when another failed.
	PolicyIsolated = "isolated"
	// PolicyJoined suppresses rendering for all groupings when any grouping fails.
	PolicyJoined = "joined"
)

// Config holds all the configuration settings for our application.
type Config struct {
	Port      int
	Env       string
	APIBase   string
	PublicURL string
	Board     Board
}

// Board is the part of the configuration loaded from a config file or URL.
// Durations are expressed in milliseconds.
type Board struct {
	Groupings         []models.StopGrouping `json:"groupings" yaml:"groupings" validate:"required,min=1,dive"`
	LineColors        map[string]string     `json:"line_colors" yaml:"line_colors" validate:"dive,keys,required,endkeys,hexcolor"`
	DefaultLineColor  string                `json:"default_line_color" yaml:"default_line_color" validate:"omitempty,hexcolor"`
	LightTextLine     string                `json:"light_text_line" yaml:"light_text_line"`
	RefreshIntervalMS int                   `json:"refresh_interval_ms" yaml:"refresh_interval_ms" validate:"gte=0"`
	MinDelayMS        int                   `json:"min_delay_ms" yaml:"min_delay_ms" validate:"gte=0"`
	FetchTimeoutMS    int                   `json:"fetch_timeout_ms" yaml:"fetch_timeout_ms" validate:"gte=0"`
	MaxRows           int                   `json:"max_rows" yaml:"max_rows" validate:"gte=0"`
	FailurePolicy     string                `json:"failure_policy" yaml:"failure_policy" validate:"omitempty,oneof=isolated joined"`
	Timezone          string                `json:"timezone" yaml:"timezone"`
}

// NewConfig creates a new instance of a Config struct.
func NewConfig(port int, env string, board Board) *Config {
	return &Config{
		Port:  port,
		Env:   env,
		Board: board,
	}
}

// DefaultBoard returns the built-in board: both platforms of Spaklerweg.
func DefaultBoard() Board {
	return Board{
		Groupings: []models.StopGrouping{
			*models.NewStopGrouping("Richting Centraal", "rows-30009567",
				"30009567", // Spaklerweg Centraal (53/54)
				"30009518", // Spaklerweg Centraal (51)
			),
			*models.NewStopGrouping("Richting Gein / Gaasperplas", "rows-30009566",
				"30009566", // Spaklerweg Gein/Gaasperplas (53/54)
				"30009519", // Spaklerweg Gein (51)
			),
		},
		LineColors: map[string]string{
			"51": "#F2922C",
			"53": "#E20224",
			"54": "#FFEE00",
		},
		DefaultLineColor:  "#dcdfe1",
		LightTextLine:     "53",
		RefreshIntervalMS: 60_000,
		MinDelayMS:        5_000,
		FetchTimeoutMS:    10_000,
		MaxRows:           8,
		FailurePolicy:     PolicyIsolated,
		Timezone:          "Europe/Amsterdam",
	}
}

// applyDefaults fills every zero field with the built-in value.
func (b *Board) applyDefaults() {
	def := DefaultBoard()
	if len(b.Groupings) == 0 {
		b.Groupings = def.Groupings
	}
	if b.LineColors == nil {
		b.LineColors = def.LineColors
	}
	if b.DefaultLineColor == "" {
		b.DefaultLineColor = def.DefaultLineColor
	}
	if b.LightTextLine == "" {
		b.LightTextLine = def.LightTextLine
	}
	if b.RefreshIntervalMS == 0 {
		b.RefreshIntervalMS = def.RefreshIntervalMS
	}
	if b.MinDelayMS == 0 {
		b.MinDelayMS = def.MinDelayMS
	}
	if b.FetchTimeoutMS == 0 {
		b.FetchTimeoutMS = def.FetchTimeoutMS
	}
	if b.MaxRows == 0 {
		b.MaxRows = def.MaxRows
	}
	if b.FailurePolicy == "" {
		b.FailurePolicy = def.FailurePolicy
	}
	if b.Timezone == "" {
		b.Timezone = def.Timezone
	}
}

func (b Board) RefreshInterval() time.Duration {
	return time.Duration(b.RefreshIntervalMS) * time.Millisecond
}

func (b Board) MinDelay() time.Duration {
	return time.Duration(b.MinDelayMS) * time.Millisecond
}

func (b Board) FetchTimeout() time.Duration {
	return time.Duration(b.FetchTimeoutMS) * time.Millisecond
}

// Location returns the display timezone. Unknown zones fall back to time.Local;
// Validate rejects them before this matters.
func (b Board) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetGroupings returns a copy of the groupings slice.
func (b Board) GetGroupings() []models.StopGrouping {
	return append([]models.StopGrouping(nil), b.Groupings...)
}
