package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CreateProjectModal collects the name and description of a new project.
// New projects start with the default metric settings.
type CreateProjectModal struct {
	name        textinput.Model
	description textinput.Model
	focus       int
	err         string
}

var _ View = (*CreateProjectModal)(nil)

// NewCreateProjectModal creates a create-project modal.
func NewCreateProjectModal() *CreateProjectModal {
	name := textinput.New()
	name.Placeholder = "Project name"
	name.Width = 40
	name.CharLimit = 120
	name.Focus()

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.Width = 40

	return &CreateProjectModal{name: name, description: desc}
}

// Name returns the entered project name.
func (m *CreateProjectModal) Name() string {
	return strings.TrimSpace(m.name.Value())
}

func (m *CreateProjectModal) setFocus(i int) {
	m.focus = i
	if i == 0 {
		m.name.Focus()
		m.description.Blur()
	} else {
		m.name.Blur()
		m.description.Focus()
	}
}

func (m *CreateProjectModal) Init() tea.Cmd {
	return textinput.Blink
}

func (m *CreateProjectModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return DismissModalMsg{} }
		case "tab", "shift+tab", "down", "up":
			m.setFocus(1 - m.focus)
			return m, nil
		case "enter":
			name := m.Name()
			if name == "" {
				m.err = "name is required"
				m.setFocus(0)
				return m, nil
			}
			desc := strings.TrimSpace(m.description.Value())
			return m, func() tea.Msg { return CreateProjectMsg{Name: name, Description: desc} }
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.name, cmd = m.name.Update(msg)
		m.err = ""
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m *CreateProjectModal) View() string {
	content := Styles.Title.Render("Create project") + "\n\n"
	content += m.name.View() + "\n"
	content += m.description.View() + "\n"
	if m.err != "" {
		content += Styles.Error.Render(m.err) + "\n"
	}
	content += "\n" + Styles.Hint.Render("Tab: next field  Enter: create  Esc: cancel")
	return Styles.Box.Render(content)
}
