// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
)

// View represents the search view with input, paged results and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	pageSize int
	request  domain.SearchRequest
	result   *domain.SearchResult

	width       int
	height      int
	ready       bool
	err         error
	focusInput  bool // true = input mode (typing), false = results mode (navigating)
	showDetails bool
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		pageSize:      domain.DefaultLimit,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithPageSize sets the number of records requested per page.
func (v *View) WithPageSize(size int) *View {
	if size >= domain.MinLimit && size <= domain.MaxLimit {
		v.pageSize = size
	}
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchRequested:
		return v, v.startSearch(msg.Request)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.showDetails {
		if key.Matches(msg, v.keymap.Back) || key.Matches(msg, v.keymap.Details) {
			v.showDetails = false
		}
		return v, nil
	}

	// Esc always signals to go back to menu
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.Details):
		if _, ok := v.list.SelectedRecord(); ok {
			v.showDetails = true
		}
	case key.Matches(msg, v.keymap.NextPage):
		return v, v.nextPage()
	case key.Matches(msg, v.keymap.PrevPage):
		return v, v.prevPage()
	case key.Matches(msg, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	return v, nil
}

// submit starts the first page of a search for the typed query.
func (v *View) submit() tea.Cmd {
	criteria := domain.FilledCriteria(v.input.Criteria())
	if len(criteria) == 0 {
		v.setError(ErrNoCriteria)
		return nil
	}

	v.focusInput = false
	v.input.Blur()
	return v.startSearch(domain.SearchRequest{
		Criteria: criteria,
		Limit:    v.pageSize,
	})
}

// nextPage requests the page after the current one, if any.
func (v *View) nextPage() tea.Cmd {
	if v.result == nil {
		return nil
	}
	next := v.request.Offset + v.request.Limit
	if next >= v.result.Total {
		return nil
	}
	req := v.request
	req.Offset = next
	return v.startSearch(req)
}

// prevPage requests the page before the current one, if any.
func (v *View) prevPage() tea.Cmd {
	if v.result == nil || v.request.Offset == 0 {
		return nil
	}
	req := v.request
	req.Offset = max(req.Offset-req.Limit, 0)
	return v.startSearch(req)
}

// startSearch marks the view busy and returns the command running req.
func (v *View) startSearch(req domain.SearchRequest) tea.Cmd {
	req = req.Normalize()
	v.request = req
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("")
	return v.performSearch(req)
}

// performSearch executes a search and returns its page.
func (v *View) performSearch(req domain.SearchRequest) tea.Cmd {
	svc := v.searchService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}

		start := time.Now()
		result, err := svc.Search(ctx, req)
		return messages.SearchCompleted{
			Request: req,
			Result:  result,
			Elapsed: time.Since(start),
			Err:     err,
		}
	}
}

// handleSearchCompleted processes a result page.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Result == nil {
		msg.Result = domain.EmptyResult()
	}

	v.err = nil
	v.request = msg.Request
	v.result = msg.Result
	v.showDetails = false
	v.list.SetPage(msg.Result.Results, msg.Request.Offset, msg.Result.Total)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResult(msg.Result.Total, msg.Result.Partial, msg.Elapsed)
	v.statusbar.SetMessage(msg.Result.Error)

	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections,
		v.styles.Title.Render("Sercha Scan"),
		"",
		v.input.View(),
		"",
	)

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.showDetails {
		sections = append(sections, v.renderDetails())
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDetails renders every field of the selected record.
func (v *View) renderDetails() string {
	rec, ok := v.list.SelectedRecord()
	if !ok {
		return ""
	}

	lines := make([]string, 0, rec.Len()+2)
	lines = append(lines, v.styles.Subtitle.Render(
		fmt.Sprintf("Record %d of %d", v.list.Offset()+v.list.Selected()+1, v.list.Total())))
	for _, k := range rec.Keys() {
		value, _ := rec.Get(k)
		lines = append(lines, v.styles.FieldKey.Render(k)+v.styles.FieldValue.Render(value))
	}

	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // Reserve space for header, input, status
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Request returns the request behind the current page.
func (v *View) Request() domain.SearchRequest {
	return v.request
}

// Result returns the current result page, or nil before the first search.
func (v *View) Result() *domain.SearchResult {
	return v.result
}

// Records returns the records of the current page.
func (v *View) Records() []domain.Record {
	return v.list.Records()
}

// SelectedIndex returns the index of the selected record.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// DetailsVisible reports whether the details pane is open.
func (v *View) DetailsVisible() bool {
	return v.showDetails
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset resets the view to initial input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.showDetails = false
	v.input.Reset()
	v.input.Focus()
	v.list.SetPage(nil, 0, 0)
	v.request = domain.SearchRequest{}
	v.result = nil
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
