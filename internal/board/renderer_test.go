package board

import (
	"fmt"
	"testing"
	"time"

	"departures.metroboard.org/internal/models"
)

var amsterdam = time.FixedZone("CEST", 2*60*60)

func testStyle() Style {
	return Style{
		LineColors:       map[string]string{"51": "#F2922C", "53": "#E20224", "54": "#FFEE00"},
		DefaultLineColor: "#dcdfe1",
		LightTextLine:    "53",
		MaxRows:          8,
	}
}

func newTestRenderer(now time.Time, ids ...string) (*Renderer, *Page) {
	var specs []TableSpec
	for _, id := range ids {
		specs = append(specs, TableSpec{ID: id, Label: id})
	}
	page := NewPage(specs, LastUpdatedID, RefreshStatusID)
	return NewRenderer(page, testStyle(), amsterdam, func() time.Time { return now }), page
}

func departuresEvery(now time.Time, n int) []models.Departure {
	deps := make([]models.Departure, n)
	for i := range deps {
		deps[i] = models.Departure{
			Line:          "51",
			Destination:   fmt.Sprintf("Stop %d", i),
			DepartureTime: now.Add(time.Duration(i+1) * time.Minute),
		}
	}
	return deps
}

func tableRows(t *testing.T, page *Page, id string) []Row {
	t.Helper()
	for _, table := range page.Snapshot().Tables {
		if table.ID == id {
			return table.Rows
		}
	}
	t.Fatalf("table %s not found", id)
	return nil
}

func TestRenderTruncates(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, amsterdam)

	for _, n := range []int{1, 7, 8, 9, 30} {
		t.Run(fmt.Sprintf("%d departures", n), func(t *testing.T) {
			r, page := newTestRenderer(now, "rows-a")
			r.Render("rows-a", departuresEvery(now, n))

			rows := tableRows(t, page, "rows-a")
			want := min(n, 8)
			if len(rows) != want {
				t.Fatalf("expected %d rows, got %d", want, len(rows))
			}
			for _, row := range rows {
				if row.Placeholder {
					t.Errorf("unexpected placeholder row")
				}
			}
		})
	}
}

func TestRenderEmptyShowsPlaceholder(t *testing.T) {
	now := time.Now()
	r, page := newTestRenderer(now, "rows-a")

	r.Render("rows-a", departuresEvery(now, 3))
	r.Render("rows-a", nil)

	rows := tableRows(t, page, "rows-a")
	if len(rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(rows))
	}
	if !rows[0].Placeholder || rows[0].Destination != PlaceholderText {
		t.Errorf("expected placeholder row, got %+v", rows[0])
	}
}

func TestRenderRowStyling(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, amsterdam)
	r, _ := newTestRenderer(now)

	rows := r.Rows([]models.Departure{
		{Line: "53", Destination: "Centraal Station", DepartureTime: now.Add(time.Minute)},
		{Line: "54", Destination: "Centraal Station", DepartureTime: now.Add(2 * time.Minute)},
		{Line: "50", Destination: "Isolatorweg", DepartureTime: now.Add(25 * time.Minute)},
	}, now)

	tests := []struct {
		background, badge, badgeBackground, badgeColor, time string
	}{
		{evenRowBackground, "M53", "#E20224", lightText, "1 min"},
		{oddRowBackground, "M54", "#FFEE00", darkText, "2 min"},
		{evenRowBackground, "M50", "#dcdfe1", darkText, "08:25"},
	}

	for i, want := range tests {
		got := rows[i]
		if got.Background != want.background {
			t.Errorf("row %d: expected background %s, got %s", i, want.background, got.Background)
		}
		if got.Badge != want.badge {
			t.Errorf("row %d: expected badge %s, got %s", i, want.badge, got.Badge)
		}
		if got.BadgeBackground != want.badgeBackground {
			t.Errorf("row %d: expected badge colour %s, got %s", i, want.badgeBackground, got.BadgeBackground)
		}
		if got.BadgeColor != want.badgeColor {
			t.Errorf("row %d: expected text colour %s, got %s", i, want.badgeColor, got.BadgeColor)
		}
		if got.Time != want.time {
			t.Errorf("row %d: expected time %q, got %q", i, want.time, got.Time)
		}
	}
}

func TestRenderMissingTargetIsNoop(t *testing.T) {
	now := time.Now()
	r, page := newTestRenderer(now, "rows-a")

	r.Render("rows-missing", departuresEvery(now, 3))

	snap := page.Snapshot()
	if len(snap.Tables) != 1 || len(snap.Tables[0].Rows) != 0 {
		t.Errorf("expected page to be untouched, got %+v", snap.Tables)
	}
}

func TestStatusElements(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 5, 0, 0, amsterdam)
	r, page := newTestRenderer(now)

	r.SetLastUpdated(now)
	r.SetRefreshStatus("Connection failed")

	snap := page.Snapshot()
	if got := snap.Text(LastUpdatedID); got != "Updated 08:05" {
		t.Errorf("expected 'Updated 08:05', got %q", got)
	}
	if got := snap.Text(RefreshStatusID); got != "Connection failed" {
		t.Errorf("expected 'Connection failed', got %q", got)
	}

	// A page without status elements is tolerated.
	bare := NewRenderer(NewPage(nil), testStyle(), amsterdam, nil)
	bare.SetLastUpdated(now)
	bare.SetRefreshStatus("Connection failed")
}
