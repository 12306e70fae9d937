package ui

import (
	"chronology/internal/export"
	"chronology/internal/model"
	"chronology/internal/table"
)

// SelectProjectMsg opens a project in the detail view.
type SelectProjectMsg struct {
	ID string
}

// ProjectsLoadedMsg carries the dashboard's project list.
type ProjectsLoadedMsg struct {
	Projects []model.Project
	Err      error
}

// ProjectLoadedMsg carries a freshly fetched project for the detail view.
type ProjectLoadedMsg struct {
	Project *model.Project
	Err     error
}

// CreateProjectMsg is sent by the create modal.
type CreateProjectMsg struct {
	Name        string
	Description string
}

// ProjectCreatedMsg reports the outcome of a create.
type ProjectCreatedMsg struct {
	Project *model.Project
	Err     error
}

// DeleteProjectMsg is sent when the user confirms a project delete.
type DeleteProjectMsg struct {
	ID   string
	Name string
}

// ProjectDeletedMsg reports the outcome of a delete.
type ProjectDeletedMsg struct {
	Name string
	Err  error
}

// ShowCreateProjectMsg opens the create-project modal (SPC p c).
type ShowCreateProjectMsg struct{}

// ShowDeleteProjectMsg asks to delete the selected project (SPC p d).
type ShowDeleteProjectMsg struct{}

// ShowProjectSwitcherMsg opens the project switcher (SPC p s).
type ShowProjectSwitcherMsg struct{}

// ExportMsg exports the open project (SPC e ...).
type ExportMsg struct {
	Format export.Format
}

// ExportedMsg reports where an export was written.
type ExportedMsg struct {
	Path string
	Err  error
}

// CommitChangesMsg applies the staged bulk changes of a project.
type CommitChangesMsg struct {
	ProjectID string
	Changes   table.Changes
}

// ChangesCommittedMsg reports the outcome of a bulk commit.
type ChangesCommittedMsg struct {
	Result *table.Result
	Err    error
}

// ConfirmDiscardMsg asks whether to drop staged changes.
type ConfirmDiscardMsg struct {
	Pending table.Summary
}

// DiscardChangesMsg drops the staged changes of the detail view.
type DiscardChangesMsg struct{}

// RefreshMsg reloads the current view (SPC r).
type RefreshMsg struct{}

// DismissModalMsg closes the top modal.
type DismissModalMsg struct{}

// ShowRecordFormMsg opens a record form prepared by the detail view.
type ShowRecordFormMsg struct {
	Form *RecordFormModal
}

// RecordFormSubmitMsg carries the values of a submitted record form.
type RecordFormSubmitMsg struct {
	Kind     RecordFormKind
	RecordID string
	Index    int
	Values   table.Values
}

// RecordFormCancelMsg closes a record form without saving.
type RecordFormCancelMsg struct {
	Kind RecordFormKind
}

// RecordSavedMsg reports the outcome of a single-row save or add.
type RecordSavedMsg struct {
	Record *model.MetricRecord
	Added  bool
	Err    error
}

// ShowMetricsConfigMsg opens the metric settings of the open project (SPC m).
type ShowMetricsConfigMsg struct{}

// ToggleMetricMsg shows or hides a metric on a project.
type ToggleMetricMsg struct {
	ProjectID string
	MetricID  string
	Enabled   bool
}

// MetricToggledMsg reports the outcome of a metric toggle.
type MetricToggledMsg struct {
	ProjectID string
	Setting   *model.MetricSettings
	Err       error
}
