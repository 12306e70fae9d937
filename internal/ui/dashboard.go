package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chronology/internal/model"
)

// ProjectSummary is one dashboard row.
type ProjectSummary struct {
	ID          string
	Name        string
	Description string
	Records     int
	Models      int
	UpdatedAt   string
}

// Summarize builds the dashboard row of a project.
func Summarize(p model.Project) ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Records:     len(p.Records),
		Models:      len(p.AvailableModels()),
		UpdatedAt:   p.UpdatedAt.Date(),
	}
}

type projectItem struct {
	ProjectSummary
}

func (p projectItem) FilterValue() string { return p.Name }

func (p projectItem) Title() string {
	return fmt.Sprintf("%s  %d records, %d models", p.Name, p.Records, p.Models)
}

func (p projectItem) Description() string {
	desc := p.ProjectSummary.Description
	if p.UpdatedAt != "" {
		if desc != "" {
			desc += " · "
		}
		desc += "updated " + p.UpdatedAt
	}
	return desc
}

// DashboardView lists every project.
type DashboardView struct {
	list     list.Model
	Projects []ProjectSummary
	spinner  spinner.Model
	loading  bool
}

var _ View = (*DashboardView)(nil)

// NewDashboardView creates an empty dashboard; projects arrive via
// SetProjects.
func NewDashboardView() *DashboardView {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = Styles.Selected
	delegate.Styles.SelectedDesc = Styles.Selected.Bold(false)
	delegate.Styles.NormalTitle = Styles.Normal
	delegate.Styles.NormalDesc = Styles.Muted

	l := list.New(nil, delegate, 80, 20)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	return &DashboardView{list: l, spinner: s}
}

// Selected returns the cursor index.
func (d *DashboardView) Selected() int {
	return d.list.Index()
}

// SelectedProject returns the project under the cursor.
func (d *DashboardView) SelectedProject() (ProjectSummary, bool) {
	i := d.list.Index()
	if i < 0 || i >= len(d.Projects) {
		return ProjectSummary{}, false
	}
	return d.Projects[i], true
}

// SetProjects replaces the list, keeping the cursor in range.
func (d *DashboardView) SetProjects(projects []model.Project) {
	idx := d.list.Index()
	d.Projects = make([]ProjectSummary, len(projects))
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		d.Projects[i] = Summarize(p)
		items[i] = projectItem{ProjectSummary: d.Projects[i]}
	}
	d.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	d.list.Select(max(idx, 0))
}

// SetLoading toggles the spinner.
func (d *DashboardView) SetLoading(loading bool) tea.Cmd {
	d.loading = loading
	if loading {
		return d.spinner.Tick
	}
	return nil
}

func (d *DashboardView) Init() tea.Cmd {
	return nil
}

func (d *DashboardView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.list.SetSize(msg.Width, msg.Height-4)
		return d, nil
	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	case tea.KeyMsg:
		if msg.String() == "enter" {
			if p, ok := d.SelectedProject(); ok {
				return d, func() tea.Msg { return SelectProjectMsg{ID: p.ID} }
			}
			return d, nil
		}
	}
	// list.Model handles j/k/g/G and arrows.
	var cmd tea.Cmd
	d.list, cmd = d.list.Update(msg)
	return d, cmd
}

func (d *DashboardView) View() string {
	var b strings.Builder
	title := Styles.Title.Render(fmt.Sprintf("Chronology · Projects (%d)", len(d.Projects)))
	if d.loading {
		title += " " + d.spinner.View()
	}
	b.WriteString(title + "\n")
	b.WriteString(Styles.Hint.Render("enter: open  [SPC] commands") + "\n\n")
	if len(d.Projects) == 0 && !d.loading {
		b.WriteString("  " + Styles.Empty.Render("No projects yet. SPC p c to create one.") + "\n")
		return b.String()
	}
	b.WriteString(d.list.View())
	return b.String()
}
