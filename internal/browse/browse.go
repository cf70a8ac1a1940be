// Package browse is an interactive terminal outline of one mist template.
package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/document"
	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/outline"
	"github.com/mistkit/mistlens/internal/render"
)

// Loader reads the current snapshot of the browsed document.
type Loader func() (*document.Document, error)

type row struct {
	node  *jsonc.Node
	depth int
}

// selection records the last range the outline asked to select.
type selection struct {
	uri protocol.DocumentURI
	rng protocol.Range
	set bool
}

func (s *selection) Select(uri protocol.DocumentURI, rng protocol.Range) error {
	s.uri, s.rng, s.set = uri, rng, true
	return nil
}

// Model implements tea.Model over an outline.Model.
type Model struct {
	outline   *outline.Model
	store     *document.Store
	load      Loader
	theme     render.Theme
	selection *selection

	keys     keyMap
	help     help.Model
	viewport viewport.Model

	expanded map[int]bool
	rows     []row
	cursor   int
	status   string

	width  int
	height int
	ready  bool
}

// New builds a browser over store. load is called on start and on reload.
func New(store *document.Store, load Loader, theme render.Theme) Model {
	sel := &selection{}
	m := Model{
		outline:   outline.New(store.LanguageID(), outline.WithHost(store), outline.WithResolver(store), outline.WithSelector(sel)),
		store:     store,
		load:      load,
		theme:     theme,
		selection: sel,
		keys:      defaultKeys(),
		help:      help.New(),
		expanded:  make(map[int]bool),
	}
	m.reload()
	return m
}

// Run shows the browser until the user quits.
func Run(ctx context.Context, m Model) error {
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return errors.Errorf("outline browser failed: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
		case key.Matches(msg, m.keys.Expand):
			m.setExpanded(true)
		case key.Matches(msg, m.keys.Collapse):
			m.collapseOrParent()
		case key.Matches(msg, m.keys.Toggle):
			if node := m.current(); node != nil {
				m.setExpanded(!m.expanded[node.Offset])
			}
		case key.Matches(msg, m.keys.Select):
			m.selectCurrent()
		case key.Matches(msg, m.keys.Reload):
			m.reload()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		m.syncViewport()
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	height := max(1, msg.Height-2)
	if !m.ready {
		m.viewport = viewport.New(msg.Width, height)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = height
	}
	m.syncViewport()
	return m
}

func (m Model) View() string {
	if !m.ready {
		return "Loading outline..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.statusLine(), m.help.View(m.keys))
}

func (m Model) statusLine() string {
	return render.StatusStyle.Width(m.width).Render(m.status)
}

// Status returns the text of the status line.
func (m Model) Status() string {
	return m.status
}

// Rows renders the visible outline, one line per node.
func (m Model) Rows() []string {
	lines := make([]string, 0, len(m.rows))
	for i, r := range m.rows {
		marker := "  "
		if len(m.outline.Children(r.node)) > 0 {
			marker = "▸ "
			if m.expanded[r.node.Offset] {
				marker = "▾ "
			}
		}
		line := strings.Repeat("  ", r.depth) + marker + render.EntryLine(m.theme, m.outline.Entry(r.node))
		if i == m.cursor {
			line = render.SelectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *Model) reload() {
	doc, err := m.load()
	if err != nil {
		m.status = render.ErrorStyle.Render(err.Error())
		return
	}
	m.store.Open(doc)
	m.store.SetActive(doc.URI)
	m.outline.Refresh()

	if m.outline.State() == outline.NoDocument {
		m.rows = nil
		m.cursor = 0
		m.status = "no layout in " + string(doc.URI)
		return
	}
	for _, root := range m.outline.Roots() {
		if _, seen := m.expanded[root.Offset]; !seen {
			m.expanded[root.Offset] = true
		}
	}
	m.rebuild()
	m.status = fmt.Sprintf("%s (version %d)", doc.URI, doc.Version)
}

func (m *Model) rebuild() {
	m.rows = nil
	m.outline.Walk(func(node *jsonc.Node, depth int) bool {
		m.rows = append(m.rows, row{node: node, depth: depth})
		return m.expanded[node.Offset]
	})
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

func (m *Model) current() *jsonc.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
}

func (m *Model) setExpanded(open bool) {
	node := m.current()
	if node == nil || len(m.outline.Children(node)) == 0 {
		return
	}
	m.expanded[node.Offset] = open
	m.rebuild()
}

func (m *Model) collapseOrParent() {
	node := m.current()
	if node == nil {
		return
	}
	if m.expanded[node.Offset] && len(m.outline.Children(node)) > 0 {
		m.setExpanded(false)
		return
	}
	parent := m.outline.Owner(node)
	if parent == nil {
		return
	}
	for i, r := range m.rows {
		if r.node == parent {
			m.cursor = i
			return
		}
	}
}

func (m *Model) selectCurrent() {
	node := m.current()
	if node == nil {
		return
	}
	entry := m.outline.Entry(node)
	if err := m.outline.Select(entry.Range); err != nil {
		m.status = render.ErrorStyle.Render(err.Error())
		return
	}
	if m.selection.set {
		rng := m.selection.rng
		m.status = fmt.Sprintf("selected %s %d:%d-%d:%d", entry.Kind,
			rng.Start.Line+1, rng.Start.Character+1, rng.End.Line+1, rng.End.Character+1)
	}
}

func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.Rows(), "\n"))
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}
