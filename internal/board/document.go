package board

import (
	"sync"
)

// Element ids of the status line.
const (
	LastUpdatedID   = "last-updated"
	RefreshStatusID = "refresh-status"
)

// Row is one rendered table row. Colours are CSS colour values.
type Row struct {
	Placeholder     bool   `json:"placeholder,omitempty"`
	Background      string `json:"background,omitempty"`
	Badge           string `json:"badge"`
	BadgeBackground string `json:"badge_background"`
	BadgeColor      string `json:"badge_color"`
	Destination     string `json:"destination"`
	Time            string `json:"time"`
}

// Table is a render target whose rows are replaced wholesale.
type Table interface {
	ReplaceRows(rows []Row)
}

// TextElement is a render target holding a single line of text.
type TextElement interface {
	SetText(text string)
}

// Document resolves render targets by id. Lookups of ids the document does not
// contain report false; callers treat that as "nothing to render".
type Document interface {
	Table(id string) (Table, bool)
	Text(id string) (TextElement, bool)
}

// TableSpec declares one table of a Page.
type TableSpec struct {
	ID    string
	Label string
}

// Page is the in-memory Document served by the HTTP handlers.
// It is safe for concurrent use.
type Page struct {
	mu     sync.RWMutex
	order  []string
	tables map[string]*pageTable
	texts  map[string]*pageText
}

type pageTable struct {
	page  *Page
	label string
	rows  []Row
}

type pageText struct {
	page *Page
	text string
}

// NewPage creates a page with the given tables and text elements.
func NewPage(tables []TableSpec, textIDs ...string) *Page {
	p := &Page{
		tables: make(map[string]*pageTable, len(tables)),
		texts:  make(map[string]*pageText, len(textIDs)),
	}
	for _, t := range tables {
		if _, exists := p.tables[t.ID]; exists {
			continue
		}
		p.order = append(p.order, t.ID)
		p.tables[t.ID] = &pageTable{page: p, label: t.Label}
	}
	for _, id := range textIDs {
		p.texts[id] = &pageText{page: p}
	}
	return p
}

func (p *Page) Table(id string) (Table, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.tables[id]
	return t, ok
}

func (p *Page) Text(id string) (TextElement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.texts[id]
	return t, ok
}

func (t *pageTable) ReplaceRows(rows []Row) {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	t.rows = append([]Row(nil), rows...)
}

func (t *pageText) SetText(text string) {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	t.text = text
}

// TableSnapshot is a copy of one table's state.
type TableSnapshot struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Rows  []Row  `json:"rows"`
}

// Snapshot is a consistent copy of the whole page.
type Snapshot struct {
	Tables []TableSnapshot   `json:"tables"`
	Texts  map[string]string `json:"texts"`
}

// Text returns the text of element id, or "" when the page has none.
func (s Snapshot) Text(id string) string {
	return s.Texts[id]
}

// Snapshot copies the current state of the page.
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := Snapshot{
		Tables: make([]TableSnapshot, 0, len(p.order)),
		Texts:  make(map[string]string, len(p.texts)),
	}
	for _, id := range p.order {
		t := p.tables[id]
		snap.Tables = append(snap.Tables, TableSnapshot{
			ID:    id,
			Label: t.label,
			Rows:  append([]Row(nil), t.rows...),
		})
	}
	for id, t := range p.texts {
		snap.Texts[id] = t.text
	}
	return snap
}
