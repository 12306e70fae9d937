package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func (a *appModelAdapter) handleProjectsLoaded(msg ProjectsLoadedMsg) (tea.Model, tea.Cmd) {
	stop := a.Dashboard.SetLoading(false)
	if msg.Err != nil {
		a.setStatus(fmt.Sprintf("Load projects: %v", msg.Err), true)
		return a, stop
	}
	a.Dashboard.SetProjects(msg.Projects)
	return a, stop
}

// handleProjectLoaded refreshes the detail view if it still shows the
// loaded project, or opens it after a selection.
func (a *appModelAdapter) handleProjectLoaded(msg ProjectLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.setStatus(fmt.Sprintf("Load project: %v", msg.Err), true)
		return a, nil
	}
	if a.Mode == ModeProjectDetail && a.Detail != nil && a.Detail.Project.ID == msg.Project.ID {
		a.Detail.SetProject(msg.Project)
		if top, ok := a.Overlays.Peek(); ok {
			if m, ok := top.View.(*MetricsConfigModal); ok && m.ProjectID == msg.Project.ID {
				m.SetSettings(msg.Project.Config())
			}
		}
		return a, nil
	}
	a.Mode = ModeProjectDetail
	a.Detail = NewProjectDetailView(msg.Project)
	a.Detail.SetSize(a.width, a.height-2)
	return a, a.Detail.Init()
}

func (a *appModelAdapter) handleSelectProject(msg SelectProjectMsg) (tea.Model, tea.Cmd) {
	// The switcher modal sends this.
	a.Overlays.Clear()
	return a, loadProjectCmd(a.Backend, msg.ID)
}

func (a *appModelAdapter) handleCreateProject(msg CreateProjectMsg) (tea.Model, tea.Cmd) {
	a.Overlays.Pop()
	return a, createProjectCmd(a.Backend, msg)
}

func (a *appModelAdapter) handleProjectCreated(msg ProjectCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.setStatus(fmt.Sprintf("Create project: %v", msg.Err), true)
		return a, nil
	}
	a.setStatus(fmt.Sprintf("Project %q created", msg.Project.Name), false)
	return a, loadProjectsCmd(a.Backend)
}

func (a *appModelAdapter) handleDeleteProject(msg DeleteProjectMsg) (tea.Model, tea.Cmd) {
	a.Overlays.Pop()
	return a, deleteProjectCmd(a.Backend, msg.ID, msg.Name)
}

func (a *appModelAdapter) handleProjectDeleted(msg ProjectDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.setStatus(fmt.Sprintf("Delete project: %v", msg.Err), true)
		return a, nil
	}
	a.setStatus(fmt.Sprintf("Project %q deleted", msg.Name), false)
	return a, loadProjectsCmd(a.Backend)
}

func (a *appModelAdapter) handleShowCreateProject() (tea.Model, tea.Cmd) {
	modal := NewCreateProjectModal()
	a.Overlays.Push(Overlay{View: modal, Dismiss: "esc"})
	return a, modal.Init()
}

func (a *appModelAdapter) handleShowDeleteProject() (tea.Model, tea.Cmd) {
	if a.Mode != ModeDashboard {
		return a, nil
	}
	p, ok := a.Dashboard.SelectedProject()
	if !ok {
		return a, nil
	}
	modal := NewDeleteProjectConfirmModal(p)
	a.Overlays.Push(Overlay{View: modal, Dismiss: "esc"})
	return a, modal.Init()
}

func (a *appModelAdapter) handleShowProjectSwitcher() (tea.Model, tea.Cmd) {
	if len(a.Dashboard.Projects) == 0 {
		a.setStatus("No projects found", true)
		return a, nil
	}
	modal := NewProjectSwitcherModal(a.Dashboard.Projects)
	a.Overlays.Push(Overlay{View: modal, Dismiss: "esc"})
	return a, modal.Init()
}

func (a *appModelAdapter) handleExport(msg ExportMsg) (tea.Model, tea.Cmd) {
	if a.Mode != ModeProjectDetail || a.Detail == nil {
		return a, nil
	}
	a.setStatus(fmt.Sprintf("Exporting %s...", msg.Format), false)
	return a, exportCmd(a.Backend, a.ExportDir, a.Detail.Project, msg.Format, a.Detail.Sort, a.Now())
}

func (a *appModelAdapter) handleExported(msg ExportedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.setStatus(fmt.Sprintf("Export: %v", msg.Err), true)
		return a, nil
	}
	a.setStatus("Exported to "+msg.Path, false)
	return a, nil
}

func (a *appModelAdapter) handleCommitChanges(msg CommitChangesMsg) (tea.Model, tea.Cmd) {
	a.setStatus("Saving changes...", false)
	return a, commitChangesCmd(a.Backend, msg.ProjectID, msg.Changes)
}

// handleChangesCommitted leaves bulk mode and reloads the project. Partial
// failures keep the successful writes and are reported in the status line.
func (a *appModelAdapter) handleChangesCommitted(msg ChangesCommittedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.setStatus(fmt.Sprintf("Save changes: %v", msg.Err), true)
		return a, nil
	}
	if a.Detail == nil {
		return a, nil
	}
	a.Detail.Session.Discard()

	res := msg.Result
	if err := res.Err(); err != nil {
		a.setStatus(fmt.Sprintf("Saved with errors: %v", err), true)
	} else {
		a.setStatus(fmt.Sprintf("Saved: %d updated, %d deleted, %d added", len(res.Updated), len(res.Deleted), len(res.Created)), false)
	}
	return a, loadProjectCmd(a.Backend, a.Detail.Project.ID)
}

func (a *appModelAdapter) handleConfirmDiscard(msg ConfirmDiscardMsg) (tea.Model, tea.Cmd) {
	modal := NewDiscardChangesConfirmModal(msg.Pending)
	a.Overlays.Push(Overlay{View: modal, Dismiss: "esc"})
	return a, modal.Init()
}

func (a *appModelAdapter) handleRefresh() (tea.Model, tea.Cmd) {
	if a.Mode == ModeProjectDetail && a.Detail != nil {
		return a, loadProjectCmd(a.Backend, a.Detail.Project.ID)
	}
	return a, tea.Batch(a.Dashboard.SetLoading(true), loadProjectsCmd(a.Backend))
}
