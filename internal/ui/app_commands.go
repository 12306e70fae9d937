package ui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chronology/internal/export"
	"chronology/internal/model"
	"chronology/internal/service"
	"chronology/internal/table"
)

// requestTimeout bounds every backend call made from a command.
const requestTimeout = 15 * time.Second

func loadProjectsCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		projects, err := b.ListProjects(ctx)
		return ProjectsLoadedMsg{Projects: projects, Err: err}
	}
}

func loadProjectCmd(b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := b.GetProject(ctx, id)
		return ProjectLoadedMsg{Project: p, Err: err}
	}
}

func createProjectCmd(b Backend, msg CreateProjectMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := b.CreateProject(ctx, service.CreateProjectRequest{
			Name:        msg.Name,
			Description: msg.Description,
		})
		return ProjectCreatedMsg{Project: p, Err: err}
	}
}

func deleteProjectCmd(b Backend, id, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return ProjectDeletedMsg{Name: name, Err: b.DeleteProject(ctx, id)}
	}
}

func commitChangesCmd(b Backend, projectID string, changes table.Changes) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := b.Bulk(ctx, projectID, changes)
		return ChangesCommittedMsg{Result: res, Err: err}
	}
}

// exportCmd downloads an export of p into dir. The server's filename is
// used when it sends one.
func exportCmd(b Backend, dir string, p *model.Project, format export.Format, sort *table.SortConfig, now time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var buf bytes.Buffer
		name, err := b.Export(ctx, &buf, p.ID, format, sort)
		if err != nil {
			return ExportedMsg{Err: err}
		}
		if name == "" {
			name = export.Filename(p, format, now)
		}
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return ExportedMsg{Err: fmt.Errorf("failed to write %s: %w", path, err)}
		}
		return ExportedMsg{Path: path}
	}
}

// saveRecordCmd writes the row being edited in s.
func saveRecordCmd(b Backend, s *table.Session, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		r, err := s.Save(ctx, b, projectID)
		return RecordSavedMsg{Record: r, Err: err}
	}
}

// submitAddCmd creates a record from the add form of s.
func submitAddCmd(b Backend, s *table.Session, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		r, err := s.SubmitAdd(ctx, b, projectID)
		return RecordSavedMsg{Record: r, Added: true, Err: err}
	}
}

func toggleMetricCmd(b Backend, msg ToggleMetricMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s, err := b.UpdateDefinition(ctx, msg.ProjectID, msg.MetricID, service.MetricDefinitionPatch{Enabled: &msg.Enabled})
		return MetricToggledMsg{ProjectID: msg.ProjectID, Setting: s, Err: err}
	}
}
