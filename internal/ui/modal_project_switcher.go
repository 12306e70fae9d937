package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ProjectSwitcherModal is a filterable project picker.
type ProjectSwitcherModal struct {
	list list.Model
}

type projectSwitcherItem struct {
	id   string
	name string
}

func (p projectSwitcherItem) FilterValue() string { return p.name }
func (p projectSwitcherItem) Title() string       { return p.name }
func (p projectSwitcherItem) Description() string { return "" }

var _ View = (*ProjectSwitcherModal)(nil)

// NewProjectSwitcherModal creates a picker over projects.
func NewProjectSwitcherModal(projects []ProjectSummary) *ProjectSwitcherModal {
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectSwitcherItem{id: p.ID, name: p.Name}
	}
	l := list.New(items, NewCompactListDelegate(), 40, 12)
	l.Title = "Switch project"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = Styles.Title
	return &ProjectSwitcherModal{list: l}
}

func (m *ProjectSwitcherModal) Init() tea.Cmd {
	return nil
}

func (m *ProjectSwitcherModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return DismissModalMsg{} }
		case "enter":
			if sel, ok := m.list.SelectedItem().(projectSwitcherItem); ok {
				return m, func() tea.Msg { return SelectProjectMsg{ID: sel.id} }
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *ProjectSwitcherModal) View() string {
	help := "/: filter  Enter: select  Esc: cancel"
	return Styles.BoxCompact.Render(m.list.View() + "\n" + Styles.Hint.Render(help))
}
