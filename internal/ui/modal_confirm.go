package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chronology/internal/table"
)

// ConfirmModal is a generic confirmation modal.
// Enter or y confirms; Esc cancels.
type ConfirmModal struct {
	Title     string
	Label     string
	Details   string // optional warning line
	OnConfirm func() tea.Msg

	boxStyle   lipgloss.Style
	titleStyle lipgloss.Style
}

var _ View = (*ConfirmModal)(nil)

// NewConfirmModal creates a generic confirmation modal.
func NewConfirmModal(title, label string, onConfirm func() tea.Msg) *ConfirmModal {
	return &ConfirmModal{
		Title:      title,
		Label:      label,
		OnConfirm:  onConfirm,
		boxStyle:   Styles.BoxDanger,
		titleStyle: Styles.TitleWarning,
	}
}

// WithDetails adds warning details to the modal.
func (m *ConfirmModal) WithDetails(details string) *ConfirmModal {
	m.Details = details
	return m
}

// NewDeleteProjectConfirmModal asks before deleting a project and all its
// metric records.
func NewDeleteProjectConfirmModal(p ProjectSummary) *ConfirmModal {
	modal := NewConfirmModal(
		"Delete project?",
		fmt.Sprintf("Project: %s", p.Name),
		func() tea.Msg { return DeleteProjectMsg{ID: p.ID, Name: p.Name} },
	)
	if p.Records > 0 {
		modal.WithDetails(fmt.Sprintf("%d metric record(s) will be deleted", p.Records))
	}
	return modal
}

// NewDiscardChangesConfirmModal asks before dropping staged bulk edits.
func NewDiscardChangesConfirmModal(pending table.Summary) *ConfirmModal {
	return NewConfirmModal(
		"Discard changes?",
		"You have unsaved changes: "+pending.String(),
		func() tea.Msg { return DiscardChangesMsg{} },
	)
}

func (m *ConfirmModal) Init() tea.Cmd {
	return nil
}

func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "n":
			return m, func() tea.Msg { return DismissModalMsg{} }
		case "enter", "y":
			if m.OnConfirm != nil {
				return m, m.OnConfirm
			}
		}
	}
	return m, nil
}

func (m *ConfirmModal) View() string {
	content := m.titleStyle.Render(m.Title) + "\n\n"
	content += Styles.Label.Render(m.Label)
	if m.Details != "" {
		content += "\n" + Styles.Details.Render(m.Details)
	}
	content += "\n\n" + Styles.Hint.Render("y/Enter: confirm  n/Esc: cancel")
	return m.boxStyle.Render(content)
}
