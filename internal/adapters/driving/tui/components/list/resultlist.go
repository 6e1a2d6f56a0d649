// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// ResultList displays matching records in a navigable list.
type ResultList struct {
	records  []domain.Record
	offset   int
	total    int
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.records) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.records)+2)

	header := r.styles.Subtitle.Render(fmt.Sprintf("Results %d-%d of %d",
		r.offset+1, r.offset+len(r.records), r.total))
	lines = append(lines, header, "")

	// Each record takes two lines.
	visibleCount := max((r.height-4)/2, 1)

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.records))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRecord(i, r.records[i]))
	}

	return strings.Join(lines, "\n")
}

// renderRecord formats a record as its source and raw line.
func (r *ResultList) renderRecord(index int, rec domain.Record) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	source := truncate(rec.Source(), max(r.width-20, 10))
	summary := fieldSummary(rec)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%d. %s", indicator, r.offset+index+1, source))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%d. ", indicator, r.offset+index+1)) +
			r.styles.Subtitle.Render(source)
	}
	if summary != "" {
		titleLine += "  " + r.styles.Muted.Render(summary)
	}

	preview := truncate(rec.Raw(), max(r.width-6, 20))
	return titleLine + "\n" + r.styles.Muted.Render("    "+preview)
}

// fieldSummary lists the extracted field names of a record.
func fieldSummary(rec domain.Record) string {
	var names []string
	for _, f := range domain.ExtractedFields() {
		if rec.Has(f) {
			names = append(names, f)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "[" + strings.Join(names, " ") + "]"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// SetPage replaces the list with one result page.
func (r *ResultList) SetPage(records []domain.Record, offset, total int) {
	r.records = records
	r.offset = offset
	r.total = total
	r.selected = 0
}

// Records returns the current page.
func (r *ResultList) Records() []domain.Record {
	return r.records
}

// Offset returns the offset of the current page.
func (r *ResultList) Offset() int {
	return r.offset
}

// Total returns the aggregated total of the current search.
func (r *ResultList) Total() int {
	return r.total
}

// Selected returns the index of the selected record.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.records) {
		r.selected = index
	}
}

// SelectedRecord returns the currently selected record.
func (r *ResultList) SelectedRecord() (domain.Record, bool) {
	if r.selected < 0 || r.selected >= len(r.records) {
		return domain.Record{}, false
	}
	return r.records[r.selected], true
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.records)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of records on the page.
func (r *ResultList) Count() int {
	return len(r.records)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.records) == 0
}
