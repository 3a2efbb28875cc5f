package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stwalsh4118/cclive/internal/view"
)

// FrameMsg carries a newly captured frame into the program.
type FrameMsg view.Frame

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ExpandAll key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎", "details")),
	ExpandAll: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the Bubble Tea application state for cclive.
type Model struct {
	frame    view.Frame
	hasFrame bool
	endpoint string

	width  int
	height int

	cursor       int
	scrollOffset int
	expanded     map[string]bool // card id -> details shown
	expandAll    bool

	spinner spinner.Model
}

// NewModel returns the initial model. endpoint is shown until the first frame.
func NewModel(endpoint string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = dimStyle
	return Model{
		endpoint: endpoint,
		width:    80,
		height:   24,
		expanded: make(map[string]bool),
		spinner:  s,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case FrameMsg:
		selected := m.selectedID()
		m.frame = view.Frame(msg)
		m.hasFrame = true
		m.preserveCursor(selected)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if n := len(m.frame.Cards); n > 0 {
				if m.cursor > 0 {
					m.cursor--
				} else {
					m.cursor = n - 1 // wrap to bottom
				}
				m.clampScroll()
			}
		case key.Matches(msg, keys.Down):
			if n := len(m.frame.Cards); n > 0 {
				if m.cursor < n-1 {
					m.cursor++
				} else {
					m.cursor = 0 // wrap to top
				}
				m.clampScroll()
			}
		case key.Matches(msg, keys.Toggle):
			if id := m.selectedID(); id != "" {
				m.expanded[id] = !m.isExpanded(id)
			}
		case key.Matches(msg, keys.ExpandAll):
			m.expandAll = !m.expandAll
			m.expanded = make(map[string]bool)
		}
	}
	return m, nil
}

func (m Model) isExpanded(id string) bool {
	if v, ok := m.expanded[id]; ok {
		return v
	}
	return m.expandAll
}

func (m Model) selectedID() string {
	if m.cursor < 0 || m.cursor >= len(m.frame.Cards) {
		return ""
	}
	return m.frame.Cards[m.cursor].ID
}

// preserveCursor keeps the cursor on the same card across frames.
func (m *Model) preserveCursor(id string) {
	for i, c := range m.frame.Cards {
		if c.ID == id {
			m.cursor = i
			m.clampScroll()
			return
		}
	}
	if m.cursor >= len(m.frame.Cards) {
		m.cursor = len(m.frame.Cards) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampScroll()
}

// visibleCards is the number of collapsed card rows that fit between header
// and footer.
func (m Model) visibleCards() int {
	n := (m.height - headerHeight - footerHeight) / collapsedCardHeight
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Model) clampScroll() {
	visible := m.visibleCards()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
	maxOffset := len(m.frame.Cards) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
