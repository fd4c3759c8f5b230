package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/tagcodec/layout"
	"github.com/wippyai/tagcodec/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	layoutStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectType modelState = iota
	stateShowType
	stateShowResult
)

type typeInfo struct {
	typ    *types.Type
	layout string
}

type explorerModel struct {
	s        *session
	err      error
	result   string
	types    []typeInfo
	variants []string
	input    textinput.Model
	selected int
	state    modelState
}

func newExplorerModel(s *session) *explorerModel {
	m := &explorerModel{s: s, state: stateSelectType}
	for _, t := range s.tbl.Types() {
		ti := typeInfo{typ: t}
		if l, err := s.calc.LayoutOf(t); err != nil {
			ti.layout = err.Error()
		} else {
			ti.layout = l.Describe()
		}
		m.types = append(m.types, ti)
	}
	return m
}

type decodedMsg struct {
	err    error
	result string
}

func (m *explorerModel) Init() tea.Cmd {
	return nil
}

func (m *explorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateShowType {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.types)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				if len(m.types) == 0 {
					return m, nil
				}
				m.openType()
				m.state = stateShowType
				return m, textinput.Blink

			case stateShowType:
				return m, m.decodeInput

			case stateShowResult:
				m.state = stateShowType
				m.result = ""
				m.err = nil
				m.input.Focus()
			}

		case "esc":
			switch m.state {
			case stateShowType:
				m.state = stateSelectType
			case stateShowResult:
				m.state = stateShowType
				m.result = ""
				m.err = nil
				m.input.Focus()
			}
		}

	case decodedMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		m.input.Blur()
	}

	if m.state == stateShowType {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// openType renders the tag of every variant of the selected type.
func (m *explorerModel) openType() {
	t := m.types[m.selected].typ
	n := len(t.Variants)
	if !t.IsEnum() {
		n = 1
	}

	m.variants = m.variants[:0]
	for i := 0; i < n; i++ {
		var b strings.Builder
		err := m.s.encode(&b, t.Name, variantName(t, layout.VariantIdx(i)))
		line := strings.ReplaceAll(strings.TrimSpace(b.String()), "\n", ", ")
		if err != nil {
			line = variantName(t, layout.VariantIdx(i)) + ": " + describeFailure(err)
		}
		m.variants = append(m.variants, line)
	}

	ti := textinput.New()
	ti.Placeholder = "hex bytes"
	ti.Prompt = "decode: "
	ti.Width = 40
	ti.Focus()
	m.input = ti
}

func (m *explorerModel) decodeInput() tea.Msg {
	t := m.types[m.selected].typ
	var b strings.Builder
	if err := m.s.decode(&b, t.Name, m.input.Value()); err != nil {
		return decodedMsg{err: fmt.Errorf("%s", describeFailure(err))}
	}
	return decodedMsg{result: strings.TrimSpace(b.String())}
}

func (m *explorerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tag Codec"))
	b.WriteString(" ")
	b.WriteString(m.s.source)
	b.WriteString(" ")
	b.WriteString(helpStyle.Render(m.s.calc.Target().Triple))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		if len(m.types) == 0 {
			b.WriteString("No types declared.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a type:\n\n")
		for i, ti := range m.types {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + ti.typ.Name))
			} else {
				b.WriteString("  " + nameStyle.Render(ti.typ.Name))
			}
			b.WriteString(" ")
			b.WriteString(layoutStyle.Render(ti.layout))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateShowType:
		ti := m.types[m.selected]
		b.WriteString(fmt.Sprintf("%s %s\n\n", nameStyle.Render(ti.typ.Name), layoutStyle.Render(ti.layout)))
		for _, v := range m.variants {
			b.WriteString("  " + v + "\n")
		}
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter decode • esc back"))

	case stateShowResult:
		ti := m.types[m.selected]
		b.WriteString(fmt.Sprintf("Decoded %s:\n\n", nameStyle.Render(ti.typ.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(s *session) error {
	p := tea.NewProgram(newExplorerModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
