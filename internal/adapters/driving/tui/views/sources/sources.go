// Package sources provides the sources view component for the TUI.
package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
)

// ErrNoInventoryService indicates that no inventory service was provided.
var ErrNoInventoryService = errors.New("inventory service not available")

// View lists the backend health and the searchable sources.
type View struct {
	styles    *styles.Styles
	inventory driving.InventoryService
	ctx       context.Context

	status   *domain.BackendStatus
	sources  []domain.SourceInfo
	selected int
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new sources view.
func NewView(s *styles.Styles, inventory driving.InventoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		inventory: inventory,
		ctx:       context.Background(),
		sources:   []domain.SourceInfo{},
		width:     80,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view and loads sources.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadSources()
}

// loadSources returns a command that queries the inventory service.
func (v *View) loadSources() tea.Cmd {
	inventory := v.inventory
	ctx := v.ctx
	return func() tea.Msg {
		if inventory == nil {
			return messages.SourcesLoaded{Err: ErrNoInventoryService}
		}

		status := inventory.Status(ctx)
		sources, err := inventory.Sources(ctx)
		return messages.SourcesLoaded{Status: status, Sources: sources, Err: err}
	}
}

// Update handles messages for the sources view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SourcesLoaded:
		v.loading = false
		v.status = msg.Status
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.sources = msg.Sources
		if v.sources == nil {
			v.sources = []domain.SourceInfo{}
		}
		if v.selected >= len(v.sources) {
			v.selected = max(len(v.sources)-1, 0)
		}
		v.err = nil
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.sources)-1 {
			v.selected++
		}
	case "r":
		v.loading = true
		return v, v.loadSources()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// View renders the sources view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Sources"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading sources..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.status != nil {
		b.WriteString(v.renderStatus())
		b.WriteString("\n\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if len(v.sources) == 0 {
		b.WriteString(v.styles.Muted.Render("No sources available."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	for i := range v.sources {
		b.WriteString(v.renderSource(i, &v.sources[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderStatus renders the backend health line.
func (v *View) renderStatus() string {
	line := fmt.Sprintf("Backend: %s  Status: %s  Resources: %d",
		v.status.Backend, v.status.Status, v.status.Count)
	if v.status.Status != domain.StatusOK {
		if v.status.Error != "" {
			line += "  (" + v.status.Error + ")"
		}
		return v.styles.Warning.Render(line)
	}
	return v.styles.Success.Render(line)
}

// renderSource renders a single source line.
func (v *View) renderSource(index int, source *domain.SourceInfo) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	detail := describe(source)
	name := source.Name

	maxNameLen := max(v.width-len(detail)-8, 10)
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, name, detail))
	}
	return v.styles.Normal.Render(indicator+name) + "  " + v.styles.Muted.Render(detail)
}

// describe summarises a source by database and size.
func describe(source *domain.SourceInfo) string {
	var parts []string
	if source.Database != "" {
		parts = append(parts, source.Database)
	}
	if source.Count > 0 {
		parts = append(parts, humanize.Comma(source.Count)+" lines")
	}
	if source.SizeBytes > 0 {
		parts = append(parts, humanize.Bytes(uint64(source.SizeBytes)))
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[r] reload  [esc] back  [ctrl+c] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Sources returns the current list of sources.
func (v *View) Sources() []domain.SourceInfo {
	return v.sources
}

// Status returns the last backend status, if loaded.
func (v *View) Status() *domain.BackendStatus {
	return v.status
}

// SelectedIndex returns the currently selected source index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
