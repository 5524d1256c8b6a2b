package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/seam/types"
)

// StatusModel is a Bubble Tea model for partition status views.
type StatusModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewStatusModel creates a new status model.
func NewStatusModel(viewType string, data any) StatusModel {
	return StatusModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m StatusModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case "status_asset":
		content = m.renderRecords("Partition Status")
	case "status_pending":
		content = m.renderRecords("Pending Partitions")
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m StatusModel) renderRecords(title string) string {
	records, ok := m.data.([]*types.RunRecord)
	if !ok {
		return fmt.Sprintf("Invalid data type for %s", m.viewType)
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	var succeeded, warned, failed, skipped, pending int
	for _, rec := range records {
		switch rec.State {
		case types.StateSucceeded:
			succeeded++
		case types.StateSucceededWithWarnings:
			warned++
		case types.StateFailed:
			failed++
		case types.StateSkipped:
			skipped++
		case types.StatePending, types.StateRunning:
			pending++
		}
	}

	boxes := []string{
		m.renderStatBox("Total", len(records), highlightColor),
		m.renderStatBox("Succeeded", succeeded+warned, successColor),
		m.renderStatBox("Failed", failed, errorColor),
		m.renderStatBox("Skipped", skipped, mutedColor),
		m.renderStatBox("Pending", pending, warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	if len(records) == 0 {
		b.WriteString(MutedStyle.Render("(no partitions)"))
		return b.String()
	}

	var rows strings.Builder
	for _, rec := range records {
		keyStr := rec.Key.String()
		if keyStr == "" {
			keyStr = "(unpartitioned)"
		}
		line := fmt.Sprintf("%s %s %s",
			LabelStyle.Render(rec.Asset),
			ValueStyle.Render(keyStr),
			StateStyle(string(rec.State)).Render(string(rec.State)),
		)
		if rec.Error != "" {
			line += " " + ErrorStyle.Render(rec.Error)
		}
		rows.WriteString(line)
		rows.WriteString("\n")
	}
	b.WriteString(BoxStyle.Render(strings.TrimRight(rows.String(), "\n")))

	return b.String()
}

func (m StatusModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunStatusTUI runs the status TUI.
func RunStatusTUI(viewType string, data any) error {
	model := NewStatusModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatusStatic renders status data without full TUI (for fallback).
func RenderStatusStatic(viewType string, data any) string {
	model := NewStatusModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
