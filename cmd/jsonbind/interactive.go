package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/jsonbind/codec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
	stateDetail
)

// listChrome is the number of lines around the node list.
const listChrome = 5

type inspectModel struct {
	err      error
	codec    *codec.Codec
	filename string
	nodes    []node
	visible  []int
	filter   textinput.Model
	detail   viewport.Model
	selected int
	offset   int
	height   int
	state    modelState
	color    bool
}

func newInspectModel(c *codec.Codec, filename string, nodes []node, color bool) *inspectModel {
	ti := textinput.New()
	ti.Prompt = "path: "
	ti.Placeholder = "prefix, e.g. items[0]"
	ti.Width = 40

	m := &inspectModel{
		codec:    c,
		filename: filename,
		nodes:    nodes,
		filter:   ti,
		detail:   viewport.New(80, 20),
		height:   24,
		color:    color,
	}
	m.applyFilter()
	return m
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) applyFilter() {
	prefix := strings.TrimPrefix(m.filter.Value(), ".")
	m.visible = m.visible[:0]
	for i, n := range m.nodes {
		if prefix == "" || strings.HasPrefix(n.display(), prefix) {
			m.visible = append(m.visible, i)
		}
	}
	m.selected, m.offset = 0, 0
}

func (m *inspectModel) pageSize() int {
	return max(m.height-listChrome, 1)
}

func (m *inspectModel) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.visible)-1)
	switch page := m.pageSize(); {
	case m.selected < m.offset:
		m.offset = m.selected
	case m.selected >= m.offset+page:
		m.offset = m.selected - page + 1
	}
}

func (m *inspectModel) openDetail() {
	if len(m.visible) == 0 {
		return
	}
	n := m.nodes[m.visible[m.selected]]
	e := m.codec.Enc().WithIndent("  ")
	if err := e.Put(n.value); err != nil {
		m.err = err
		return
	}
	content := e.String()
	if m.color {
		var b strings.Builder
		if highlight(&b, content) == nil {
			content = b.String()
		}
	}
	m.err = nil
	m.detail.SetContent(content)
	m.detail.GotoTop()
	m.state = stateDetail
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-listChrome, 1)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateBrowse
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse {
				m.move(-1)
			}

		case "down", "j":
			if m.state == stateBrowse {
				m.move(1)
			}

		case "pgup":
			if m.state == stateBrowse {
				m.move(-m.pageSize())
			}

		case "pgdown":
			if m.state == stateBrowse {
				m.move(m.pageSize())
			}

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			if m.state == stateBrowse {
				m.openDetail()
				return m, nil
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateBrowse
				return m, nil
			}
		}
	}

	if m.state == stateDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("JSON Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(errorStyle.Render("no paths match"))
			b.WriteString("\n")
		}
		end := min(m.offset+m.pageSize(), len(m.visible))
		for i := m.offset; i < end; i++ {
			n := m.nodes[m.visible[i]]
			line := m.formatNode(n)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • / filter • enter show • q quit"))

	case stateDetail:
		n := m.nodes[m.visible[m.selected]]
		b.WriteString(fmt.Sprintf("Value at %s\n\n", pathStyle.Render(n.display())))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(m.detail.View())
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func (m *inspectModel) formatNode(n node) string {
	indent := strings.Repeat("  ", max(n.depth()-1, 0))
	preview := n.preview
	if r := []rune(preview); len(r) > 60 {
		preview = string(r[:57]) + "..."
	}
	return indent + pathStyle.Render(n.display()) + " " + kindStyle.Render(n.kind) + " " + preview
}

func runInteractive(s *session, filename string, nodes []node) error {
	p := tea.NewProgram(newInspectModel(s.codec, filename, nodes, s.color), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
