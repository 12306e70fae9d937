package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"chronology/internal/export"
	"chronology/internal/model"
	"chronology/internal/seed"
	"chronology/internal/service"
	"chronology/internal/table"
)

// fakeBackend serves the seed projects from memory.
type fakeBackend struct {
	mu       sync.Mutex
	projects []model.Project
	bulk     []table.Changes
	patches  []model.RecordPatch
	err      error
}

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{projects: seed.Projects()}
}

func (f *fakeBackend) ListProjects(context.Context) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.projects), nil
}

func (f *fakeBackend) GetProject(_ context.Context, id string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) CreateProject(_ context.Context, req service.CreateProjectRequest) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := model.Project{ID: "new", Name: req.Name, Description: req.Description, MetricsConfig: model.DefaultMetricsConfig()}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeBackend) DeleteProject(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = slices.DeleteFunc(f.projects, func(p model.Project) bool { return p.ID == id })
	return nil
}

func (f *fakeBackend) Bulk(_ context.Context, projectID string, ch table.Changes) (*table.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk = append(f.bulk, ch)
	for i := range f.projects {
		if f.projects[i].ID != projectID {
			continue
		}
		f.projects[i].Records = slices.DeleteFunc(slices.Clone(f.projects[i].Records), func(r model.MetricRecord) bool {
			return slices.Contains(ch.Deletes, r.ID)
		})
	}
	return &table.Result{Deleted: ch.Deletes, Updated: []string{}}, nil
}

func (f *fakeBackend) project(id string) (*model.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			return &f.projects[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) CreateRecord(_ context.Context, projectID string, patch model.RecordPatch) (*model.MetricRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, err := f.project(projectID)
	if err != nil {
		return nil, err
	}
	f.patches = append(f.patches, patch)
	r := model.MetricRecord{ID: fmt.Sprintf("%s-new-%d", projectID, len(p.Records)+1), ProjectID: projectID}
	if err := patch.Apply(&r); err != nil {
		return nil, err
	}
	p.Records = append(slices.Clone(p.Records), r)
	return &r, nil
}

func (f *fakeBackend) UpdateRecord(_ context.Context, projectID, recordID string, patch model.RecordPatch) (*model.MetricRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, err := f.project(projectID)
	if err != nil {
		return nil, err
	}
	f.patches = append(f.patches, patch)
	p.Records = slices.Clone(p.Records)
	for i := range p.Records {
		if p.Records[i].ID == recordID {
			if err := patch.Apply(&p.Records[i]); err != nil {
				return nil, err
			}
			r := p.Records[i]
			return &r, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeBackend) DeleteRecord(_ context.Context, projectID, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.project(projectID)
	if err != nil {
		return err
	}
	p.Records = slices.DeleteFunc(slices.Clone(p.Records), func(r model.MetricRecord) bool { return r.ID == recordID })
	return nil
}

func (f *fakeBackend) UpdateDefinition(_ context.Context, projectID, metricID string, patch service.MetricDefinitionPatch) (*model.MetricSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.project(projectID)
	if err != nil {
		return nil, err
	}
	p.MetricsConfig = slices.Clone(p.Config())
	for i := range p.MetricsConfig {
		s := &p.MetricsConfig[i]
		if s.ID != metricID {
			continue
		}
		if patch.Enabled != nil {
			s.Enabled = *patch.Enabled
		}
		out := *s
		return &out, nil
	}
	return nil, fmt.Errorf("metric %s not found", metricID)
}

func (f *fakeBackend) Export(_ context.Context, w io.Writer, projectID string, format export.Format, _ *table.SortConfig) (string, error) {
	_, err := io.Copy(w, bytes.NewBufferString("exported "+projectID))
	return "project-" + projectID + "." + string(format), err
}

func seedProject(id string) *model.Project {
	for _, p := range seed.Projects() {
		if p.ID == id {
			return &p
		}
	}
	return nil
}
