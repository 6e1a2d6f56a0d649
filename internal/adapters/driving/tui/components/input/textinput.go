// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// SearchInput wraps a bubbles textinput that accepts criteria written as
// free terms and field:value pairs, e.g. "alice email:alice@example.com".
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewSearchInput creates a new search input component.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "alice email:alice@example.com ip:10.0.0.1"
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50

	return &SearchInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the search input.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the search input.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render("Search: ")
	input := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Value returns the current input value.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// Criteria parses the current input value.
func (s *SearchInput) Criteria() []domain.SearchCriterion {
	return ParseCriteria(s.textinput.Value())
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	// Account for label and padding
	s.textinput.Width = max(width-10, 20)
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
}

// ParseCriteria splits a query into criteria. A term whose prefix before the
// first colon names an extracted field becomes a field criterion; any other
// term, including "http://host", matches the whole line.
func ParseCriteria(query string) []domain.SearchCriterion {
	fields := domain.ExtractedFields()
	var criteria []domain.SearchCriterion
	for _, term := range strings.Fields(query) {
		name, value, ok := strings.Cut(term, ":")
		if ok && value != "" && isField(fields, strings.ToLower(name)) {
			criteria = append(criteria, domain.SearchCriterion{Field: strings.ToLower(name), Value: value})
			continue
		}
		criteria = append(criteria, domain.SearchCriterion{Value: term})
	}
	return criteria
}

func isField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
