package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func (a *appModelAdapter) handleShowRecordForm(msg ShowRecordFormMsg) (tea.Model, tea.Cmd) {
	if a.Detail == nil || msg.Form == nil {
		return a, nil
	}
	a.Overlays.Push(Overlay{View: msg.Form, Dismiss: "esc"})
	return a, msg.Form.Init()
}

// handleRecordFormSubmit closes the form and hands its values to the
// session. Single-row edits and adds are written right away; bulk forms
// only stage.
func (a *appModelAdapter) handleRecordFormSubmit(msg RecordFormSubmitMsg) (tea.Model, tea.Cmd) {
	a.Overlays.Pop()
	d := a.Detail
	if d == nil {
		return a, nil
	}
	if !d.ApplyForm(msg) {
		a.setStatus("Staged: "+d.Session.Pending().String(), false)
		return a, nil
	}

	d.saving = true
	if msg.Kind == FormAdd {
		a.setStatus("Adding record...", false)
		return a, submitAddCmd(a.Backend, d.Session, d.Project.ID)
	}
	a.setStatus("Saving record...", false)
	return a, saveRecordCmd(a.Backend, d.Session, d.Project.ID)
}

func (a *appModelAdapter) handleRecordFormCancel(msg RecordFormCancelMsg) (tea.Model, tea.Cmd) {
	a.Overlays.Pop()
	if msg.Kind == FormEdit && a.Detail != nil {
		a.Detail.Session.Cancel()
	}
	return a, nil
}

// handleRecordSaved reloads the project after a save. A failed edit is
// abandoned; a failed add keeps its values for the next try.
func (a *appModelAdapter) handleRecordSaved(msg RecordSavedMsg) (tea.Model, tea.Cmd) {
	d := a.Detail
	if d == nil {
		return a, nil
	}
	d.saving = false
	if msg.Err != nil {
		if !msg.Added {
			d.Session.Cancel()
		}
		a.setStatus(fmt.Sprintf("Save record: %v", msg.Err), true)
		return a, nil
	}
	if msg.Added {
		a.setStatus(fmt.Sprintf("Added %s record", msg.Record.ModelName), false)
	} else {
		a.setStatus(fmt.Sprintf("Saved %s record", msg.Record.ModelName), false)
	}
	return a, loadProjectCmd(a.Backend, d.Project.ID)
}

func (a *appModelAdapter) handleShowMetricsConfig() (tea.Model, tea.Cmd) {
	if a.Mode != ModeProjectDetail || a.Detail == nil {
		return a, nil
	}
	modal := NewMetricsConfigModal(a.Detail.Project)
	a.Overlays.Push(Overlay{View: modal, Dismiss: "esc"})
	return a, modal.Init()
}

// handleMetricToggled reloads the project either way so the table and the
// open settings modal show what the server stored.
func (a *appModelAdapter) handleMetricToggled(msg MetricToggledMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.setStatus(fmt.Sprintf("Update metric: %v", msg.Err), true)
	} else {
		state := "hidden"
		if msg.Setting.Enabled {
			state = "shown"
		}
		a.setStatus(fmt.Sprintf("%s %s", msg.Setting.Name, state), false)
	}
	return a, loadProjectCmd(a.Backend, msg.ProjectID)
}
