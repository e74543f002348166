package models

import "time"

// StopGrouping is a named set of stop codes whose departures are merged into
// one rendered table. Groupings are defined at startup and never mutated.
type StopGrouping struct {
	Codes    []string `json:"codes" yaml:"codes" validate:"required,min=1,dive,required"`
	Label    string   `json:"label" yaml:"label" validate:"required"`
	TargetID string   `json:"element_id" yaml:"element_id" validate:"required"`
}

// NewStopGrouping creates a new instance of a StopGrouping struct.
func NewStopGrouping(label, targetID string, codes ...string) *StopGrouping {
	return &StopGrouping{
		Codes:    append([]string(nil), codes...),
		Label:    label,
		TargetID: targetID,
	}
}

// Departure is one normalized metro departure at a stop code.
// Departures are created fresh every refresh cycle and are never cached across cycles.
type Departure struct {
	Line          string    `json:"line"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
}

// RefreshStatus is the outcome of the latest refresh cycle.
// A zero LastUpdated means no cycle has succeeded yet.
type RefreshStatus struct {
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error"`
}

// HasUpdated reports whether at least one cycle completed successfully.
func (s RefreshStatus) HasUpdated() bool {
	return !s.LastUpdated.IsZero()
}
