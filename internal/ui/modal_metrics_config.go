package ui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"chronology/internal/model"
)

// MetricsConfigModal lists a project's metrics and shows or hides them.
// Every toggle is saved right away.
type MetricsConfigModal struct {
	ProjectID string
	Settings  []model.MetricSettings
	cursor    int
}

var _ View = (*MetricsConfigModal)(nil)

// NewMetricsConfigModal creates the modal for p's effective configuration.
func NewMetricsConfigModal(p *model.Project) *MetricsConfigModal {
	return &MetricsConfigModal{ProjectID: p.ID, Settings: slices.Clone(p.Config())}
}

// Cursor returns the highlighted row.
func (m *MetricsConfigModal) Cursor() int {
	return m.cursor
}

// SetSettings refreshes the list after the project was reloaded.
func (m *MetricsConfigModal) SetSettings(settings []model.MetricSettings) {
	m.Settings = slices.Clone(settings)
	m.cursor = min(m.cursor, max(len(settings)-1, 0))
}

func (m *MetricsConfigModal) Init() tea.Cmd {
	return nil
}

func (m *MetricsConfigModal) Update(msg tea.Msg) (View, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "q":
		return m, func() tea.Msg { return DismissModalMsg{} }
	case "j", "down":
		m.cursor = min(m.cursor+1, max(len(m.Settings)-1, 0))
	case "k", "up":
		m.cursor = max(m.cursor-1, 0)
	case " ", "enter", "t":
		if m.cursor >= len(m.Settings) {
			return m, nil
		}
		s := &m.Settings[m.cursor]
		s.Enabled = !s.Enabled
		toggle := ToggleMetricMsg{ProjectID: m.ProjectID, MetricID: s.ID, Enabled: s.Enabled}
		return m, func() tea.Msg { return toggle }
	}
	return m, nil
}

func (m *MetricsConfigModal) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Metrics") + "\n\n")
	for i, s := range m.Settings {
		box := "[ ]"
		if s.Enabled {
			box = "[x]"
		}
		kind := "custom"
		if model.IsDefaultMetric(s.ID) {
			kind = "built-in"
		}
		line := fmt.Sprintf("%s %s %s", box, s.Name, Styles.Hint.Render("("+kind+", "+string(s.Type)+")"))
		if i == m.cursor {
			b.WriteString("▸ " + Styles.Selected.Render(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + Styles.Hint.Render("j/k: move  space: show/hide  Esc: close"))
	return Styles.Box.Render(b.String())
}
