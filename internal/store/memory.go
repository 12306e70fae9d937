package store

import (
	"context"
	"fmt"
	"sync"

	"chronology/internal/model"
)

// Memory is an in-process Store guarded by a single RWMutex.
type Memory struct {
	mu           sync.RWMutex
	projects     map[string]*model.Project         // projectID -> project (no records)
	projectOrder []string                          // creation order
	records      map[string]*model.MetricRecord    // recordID -> record
	recordOrder  map[string][]string               // projectID -> record IDs in insertion order
	settings     map[string][]model.MetricSettings // projectID -> config
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		projects:    make(map[string]*model.Project),
		records:     make(map[string]*model.MetricRecord),
		recordOrder: make(map[string][]string),
		settings:    make(map[string][]model.MetricSettings),
	}
}

func (m *Memory) ListProjects(ctx context.Context) ([]model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Project, 0, len(m.projectOrder))
	for _, id := range m.projectOrder {
		out = append(out, m.projectLocked(id))
	}
	return out, nil
}

func (m *Memory) GetProject(ctx context.Context, id string) (*model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.projects[id]; !ok {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	p := m.projectLocked(id)
	return &p, nil
}

// projectLocked assembles a project copy. Caller must hold m.mu.
func (m *Memory) projectLocked(id string) model.Project {
	p := *m.projects[id]
	p.Records = m.recordsLocked(id)
	p.MetricsConfig = m.settingsLocked(id)
	return p
}

func (m *Memory) recordsLocked(projectID string) []model.MetricRecord {
	ids := m.recordOrder[projectID]
	out := make([]model.MetricRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneRecord(*m.records[id]))
	}
	return out
}

func (m *Memory) settingsLocked(projectID string) []model.MetricSettings {
	src := m.settings[projectID]
	if len(src) == 0 {
		return nil
	}
	out := make([]model.MetricSettings, len(src))
	for i, s := range src {
		out[i] = cloneSetting(s)
	}
	return out
}

func (m *Memory) CreateProject(ctx context.Context, p model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[p.ID]; ok {
		return fmt.Errorf("project %s: %w", p.ID, ErrConflict)
	}
	stored := p
	stored.Records = nil
	stored.MetricsConfig = nil
	m.projects[p.ID] = &stored
	m.projectOrder = append(m.projectOrder, p.ID)
	for _, s := range p.MetricsConfig {
		m.settings[p.ID] = append(m.settings[p.ID], cloneSetting(s))
	}
	return nil
}

func (m *Memory) UpdateProject(ctx context.Context, p model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.projects[p.ID]
	if !ok {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Color = p.Color
	existing.UpdatedAt = p.UpdatedAt
	return nil
}

func (m *Memory) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	for _, rid := range m.recordOrder[id] {
		delete(m.records, rid)
	}
	delete(m.recordOrder, id)
	delete(m.settings, id)
	delete(m.projects, id)
	for i, pid := range m.projectOrder {
		if pid == id {
			m.projectOrder = append(m.projectOrder[:i], m.projectOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) CountProjects(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.projects), nil
}

func (m *Memory) ListRecords(ctx context.Context, projectID string) ([]model.MetricRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.projects[projectID]; !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return m.recordsLocked(projectID), nil
}

func (m *Memory) GetRecord(ctx context.Context, id string) (*model.MetricRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	out := cloneRecord(*r)
	return &out, nil
}

func (m *Memory) CreateRecord(ctx context.Context, r model.MetricRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[r.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", r.ProjectID, ErrNotFound)
	}
	if _, ok := m.records[r.ID]; ok {
		return fmt.Errorf("record %s: %w", r.ID, ErrConflict)
	}
	stored := cloneRecord(r)
	m.records[r.ID] = &stored
	m.recordOrder[r.ProjectID] = append(m.recordOrder[r.ProjectID], r.ID)
	return nil
}

func (m *Memory) UpdateRecord(ctx context.Context, r model.MetricRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[r.ID]
	if !ok {
		return fmt.Errorf("record %s: %w", r.ID, ErrNotFound)
	}
	stored := cloneRecord(r)
	stored.ProjectID = existing.ProjectID
	m.records[r.ID] = &stored
	return nil
}

func (m *Memory) DeleteRecord(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	ids := m.recordOrder[r.ProjectID]
	for i, rid := range ids {
		if rid == id {
			m.recordOrder[r.ProjectID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) ListSettings(ctx context.Context, projectID string) ([]model.MetricSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.projects[projectID]; !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return m.settingsLocked(projectID), nil
}

func (m *Memory) ReplaceSettings(ctx context.Context, projectID string, settings []model.MetricSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[projectID]; !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	replaced := make([]model.MetricSettings, 0, len(settings))
	for _, s := range settings {
		replaced = append(replaced, cloneSetting(s))
	}
	m.settings[projectID] = replaced
	return nil
}

func (m *Memory) CreateSetting(ctx context.Context, projectID string, s model.MetricSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[projectID]; !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	for _, existing := range m.settings[projectID] {
		if existing.ID == s.ID {
			return fmt.Errorf("metric %s: %w", s.ID, ErrConflict)
		}
	}
	m.settings[projectID] = append(m.settings[projectID], cloneSetting(s))
	return nil
}

func (m *Memory) UpdateSetting(ctx context.Context, projectID string, s model.MetricSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.settings[projectID]
	idx := -1
	for i, existing := range list {
		if existing.ID == s.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("metric %s: %w", s.ID, ErrNotFound)
	}
	list[idx] = cloneSetting(s)
	return nil
}

func (m *Memory) DeleteSetting(ctx context.Context, projectID, metricID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.settings[projectID]
	idx := -1
	for i, existing := range list {
		if existing.ID == metricID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("metric %s: %w", metricID, ErrNotFound)
	}
	m.settings[projectID] = append(list[:idx], list[idx+1:]...)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
