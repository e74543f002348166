package board

import (
	"time"

	"departures.metroboard.org/internal/format"
	"departures.metroboard.org/internal/models"
)

const (
	evenRowBackground = "#f6f7f8"
	oddRowBackground  = "#e9ecef"
	darkText          = "#0f1012"
	lightText         = "#fff"
	placeholderBadge  = "—"

	// PlaceholderText fills the single row of an empty table.
	PlaceholderText = "No departures available"
)

// Style is the line legend and the truncation cap applied by the Renderer.
type Style struct {
	LineColors       map[string]string
	DefaultLineColor string
	// LightTextLine gets white badge text, every other line dark text.
	LightTextLine string
	MaxRows       int
}

// Renderer turns sorted departures into table rows and writes them into a Document.
type Renderer struct {
	doc   Document
	style Style
	loc   *time.Location
	now   func() time.Time
}

// NewRenderer creates a Renderer. now supplies the reference time for relative
// departure times; loc is the display timezone.
func NewRenderer(doc Document, style Style, loc *time.Location, now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{
		doc:   doc,
		style: style,
		loc:   loc,
		now:   now,
	}
}

// Render replaces the rows of table targetID. Unknown targets are skipped silently.
// departures must already be sorted.
func (r *Renderer) Render(targetID string, departures []models.Departure) {
	table, ok := r.doc.Table(targetID)
	if !ok {
		return
	}
	table.ReplaceRows(r.Rows(departures, r.now()))
}

// Rows builds the rows for departures relative to now: at most MaxRows rows, or a
// single placeholder row when there is nothing to show.
func (r *Renderer) Rows(departures []models.Departure, now time.Time) []Row {
	if r.style.MaxRows > 0 && len(departures) > r.style.MaxRows {
		departures = departures[:r.style.MaxRows]
	}

	if len(departures) == 0 {
		return []Row{{
			Placeholder:     true,
			Badge:           placeholderBadge,
			BadgeBackground: r.style.DefaultLineColor,
			BadgeColor:      darkText,
			Destination:     PlaceholderText,
		}}
	}

	rows := make([]Row, 0, len(departures))
	for i, dep := range departures {
		background := evenRowBackground
		if i%2 == 1 {
			background = oddRowBackground
		}

		rows = append(rows, Row{
			Background:      background,
			Badge:           "M" + dep.Line,
			BadgeBackground: r.lineColor(dep.Line),
			BadgeColor:      r.textColor(dep.Line),
			Destination:     dep.Destination,
			Time:            format.FormatRelativeTime(dep.DepartureTime, now, r.loc),
		})
	}
	return rows
}

func (r *Renderer) lineColor(line string) string {
	if c, ok := r.style.LineColors[line]; ok {
		return c
	}
	return r.style.DefaultLineColor
}

func (r *Renderer) textColor(line string) string {
	if line == r.style.LightTextLine {
		return lightText
	}
	return darkText
}

// SetLastUpdated writes "Updated HH:MM" into the last-updated element, if present.
func (r *Renderer) SetLastUpdated(t time.Time) {
	if el, ok := r.doc.Text(LastUpdatedID); ok {
		el.SetText("Updated " + format.FormatClock(t, r.loc))
	}
}

// SetRefreshStatus writes text into the refresh-status element, if present.
func (r *Renderer) SetRefreshStatus(text string) {
	if el, ok := r.doc.Text(RefreshStatusID); ok {
		el.SetText(text)
	}
}
