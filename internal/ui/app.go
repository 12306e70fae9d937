package ui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chronology/internal/export"
	"chronology/internal/model"
	"chronology/internal/service"
	"chronology/internal/table"
)

// Backend is the slice of the Chronology API the terminal UI drives.
// *client.Client implements it. The record methods let a table.Session
// save through it.
type Backend interface {
	table.Applier
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	CreateProject(ctx context.Context, req service.CreateProjectRequest) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	Bulk(ctx context.Context, projectID string, changes table.Changes) (*table.Result, error)
	Export(ctx context.Context, w io.Writer, projectID string, format export.Format, sort *table.SortConfig) (string, error)
	UpdateDefinition(ctx context.Context, projectID, metricID string, patch service.MetricDefinitionPatch) (*model.MetricSettings, error)
}

// AppModel is the root model. It switches between the project dashboard
// and a single project's detail view.
type AppModel struct {
	Mode       AppMode
	Dashboard  *DashboardView
	Detail     *ProjectDetailView
	KeyHandler *KeyHandler
	Overlays   OverlayStack
	Backend    Backend

	// ExportDir receives files written by SPC e.
	ExportDir string
	Now       func() time.Time

	Status        string
	StatusIsError bool

	width  int
	height int
}

var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

func (a *appModelAdapter) Init() tea.Cmd {
	return tea.Batch(a.Dashboard.SetLoading(true), loadProjectsCmd(a.Backend))
}

func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.Dashboard.Update(msg)
		if a.Detail != nil {
			a.Detail.SetSize(msg.Width, msg.Height-2)
		}
		return a, nil
	case ProjectsLoadedMsg:
		return a.handleProjectsLoaded(msg)
	case ProjectLoadedMsg:
		return a.handleProjectLoaded(msg)
	case SelectProjectMsg:
		return a.handleSelectProject(msg)
	case CreateProjectMsg:
		return a.handleCreateProject(msg)
	case ProjectCreatedMsg:
		return a.handleProjectCreated(msg)
	case DeleteProjectMsg:
		return a.handleDeleteProject(msg)
	case ProjectDeletedMsg:
		return a.handleProjectDeleted(msg)
	case ShowCreateProjectMsg:
		return a.handleShowCreateProject()
	case ShowDeleteProjectMsg:
		return a.handleShowDeleteProject()
	case ShowProjectSwitcherMsg:
		return a.handleShowProjectSwitcher()
	case ExportMsg:
		return a.handleExport(msg)
	case ExportedMsg:
		return a.handleExported(msg)
	case CommitChangesMsg:
		return a.handleCommitChanges(msg)
	case ChangesCommittedMsg:
		return a.handleChangesCommitted(msg)
	case ConfirmDiscardMsg:
		return a.handleConfirmDiscard(msg)
	case DiscardChangesMsg:
		a.Overlays.Pop()
		if a.Detail != nil {
			a.Detail.Update(msg)
		}
		a.setStatus("Changes discarded", false)
		return a, nil
	case ShowRecordFormMsg:
		return a.handleShowRecordForm(msg)
	case RecordFormSubmitMsg:
		return a.handleRecordFormSubmit(msg)
	case RecordFormCancelMsg:
		return a.handleRecordFormCancel(msg)
	case RecordSavedMsg:
		return a.handleRecordSaved(msg)
	case ShowMetricsConfigMsg:
		return a.handleShowMetricsConfig()
	case ToggleMetricMsg:
		return a, toggleMetricCmd(a.Backend, msg)
	case MetricToggledMsg:
		return a.handleMetricToggled(msg)
	case RefreshMsg:
		return a.handleRefresh()
	case DismissModalMsg:
		a.Overlays.Pop()
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	v, cmd := a.currentView().Update(msg)
	a.setCurrentView(v)
	return a, cmd
}

func (a *appModelAdapter) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modals own the keyboard while open.
	if a.Overlays.Len() > 0 {
		cmd, _ := a.Overlays.UpdateTop(msg)
		return a, cmd
	}

	a.KeyHandler.Mode = a.Mode
	if consumed, cmd := a.KeyHandler.Handle(msg); consumed {
		return a, cmd
	}

	// esc leaves the detail view unless bulk edit or the chart panel
	// wants it.
	if msg.String() == "esc" && a.Mode == ModeProjectDetail && a.Detail != nil &&
		!a.Detail.Bulk() && !a.Detail.Focus.Is(FocusChart) {
		a.Mode = ModeDashboard
		a.Detail = nil
		return a, loadProjectsCmd(a.Backend)
	}

	a.Status = ""
	v, cmd := a.currentView().Update(msg)
	a.setCurrentView(v)
	return a, cmd
}

func (a *appModelAdapter) View() string {
	base := a.currentView().View()
	if a.Status != "" {
		style := Styles.Status
		if a.StatusIsError {
			style = Styles.Error
		}
		base += "\n" + style.Render(a.Status)
	}
	if a.KeyHandler.LeaderWaiting {
		base += "\n" + RenderKeybindHelp(a.KeyHandler, a.Mode)
	}
	return a.Overlays.Render(base, a.width, a.height)
}

func (a *appModelAdapter) currentView() View {
	if a.Mode == ModeProjectDetail && a.Detail != nil {
		return a.Detail
	}
	return a.Dashboard
}

func (a *appModelAdapter) setCurrentView(v View) {
	switch v := v.(type) {
	case *DashboardView:
		a.Dashboard = v
	case *ProjectDetailView:
		a.Detail = v
	}
}

func (a *AppModel) setStatus(s string, isErr bool) {
	a.Status = s
	a.StatusIsError = isErr
}

// NewAppModel creates the root application model. Exports are written to
// exportDir.
func NewAppModel(backend Backend, exportDir string) *AppModel {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", tea.Quit, "Quit")
	reg.BindWithDesc("ctrl+c", tea.Quit, "Quit")
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDesc("SPC r", func() tea.Msg { return RefreshMsg{} }, "Refresh")
	reg.BindWithDesc("SPC p c", func() tea.Msg { return ShowCreateProjectMsg{} }, "Create project")
	reg.BindWithDescForMode("SPC p d", func() tea.Msg { return ShowDeleteProjectMsg{} }, "Delete project", []AppMode{ModeDashboard})
	reg.BindWithDesc("SPC p s", func() tea.Msg { return ShowProjectSwitcherMsg{} }, "Switch project")

	detail := []AppMode{ModeProjectDetail}
	reg.BindWithDescForMode("SPC m", func() tea.Msg { return ShowMetricsConfigMsg{} }, "Metric settings", detail)
	for _, e := range []struct {
		key    string
		format export.Format
		desc   string
	}{
		{"c", export.CSV, "Export CSV"},
		{"x", export.XLSX, "Export Excel"},
		{"j", export.JSON, "Export JSON"},
		{"p", export.Parquet, "Export Parquet"},
	} {
		format := e.format
		reg.BindWithDescForMode("SPC e "+e.key, func() tea.Msg { return ExportMsg{Format: format} }, e.desc, detail)
	}

	return &AppModel{
		Mode:       ModeDashboard,
		Dashboard:  NewDashboardView(),
		KeyHandler: NewKeyHandler(reg),
		Backend:    backend,
		ExportDir:  exportDir,
		Now:        time.Now,
	}
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}
