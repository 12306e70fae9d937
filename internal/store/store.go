// Package store persists projects, metric records and metric settings.
//
// Two implementations share the Store interface: SQLite for the service
// and Memory for tests and throwaway sessions. Both return copies, so
// callers may mutate what they get back.
package store

import (
	"context"
	"errors"

	"chronology/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a row with the same key already exists.
	ErrConflict = errors.New("already exists")
)

// Store is the persistence boundary used by the service layer.
type Store interface {
	// ListProjects returns every project with its records and settings,
	// in creation order.
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	// CreateProject inserts the project and its MetricsConfig. Records on
	// p are ignored.
	CreateProject(ctx context.Context, p model.Project) error
	// UpdateProject writes name, description, color and updatedAt.
	UpdateProject(ctx context.Context, p model.Project) error
	// DeleteProject removes the project, its records and its settings.
	DeleteProject(ctx context.Context, id string) error
	CountProjects(ctx context.Context) (int, error)

	ListRecords(ctx context.Context, projectID string) ([]model.MetricRecord, error)
	GetRecord(ctx context.Context, id string) (*model.MetricRecord, error)
	CreateRecord(ctx context.Context, r model.MetricRecord) error
	UpdateRecord(ctx context.Context, r model.MetricRecord) error
	DeleteRecord(ctx context.Context, id string) error

	ListSettings(ctx context.Context, projectID string) ([]model.MetricSettings, error)
	// ReplaceSettings atomically swaps the project's whole configuration.
	ReplaceSettings(ctx context.Context, projectID string, settings []model.MetricSettings) error
	CreateSetting(ctx context.Context, projectID string, s model.MetricSettings) error
	UpdateSetting(ctx context.Context, projectID string, s model.MetricSettings) error
	DeleteSetting(ctx context.Context, projectID, metricID string) error

	Close() error
}

func cloneRecord(r model.MetricRecord) model.MetricRecord {
	out := r
	out.Accuracy = cloneFloat(r.Accuracy)
	out.Loss = cloneFloat(r.Loss)
	out.Precision = cloneFloat(r.Precision)
	out.Recall = cloneFloat(r.Recall)
	out.F1Score = cloneFloat(r.F1Score)
	if r.AdditionalMetrics != nil {
		out.AdditionalMetrics = make(map[string]any, len(r.AdditionalMetrics))
		for k, v := range r.AdditionalMetrics {
			out.AdditionalMetrics[k] = v
		}
	}
	return out
}

func cloneSetting(s model.MetricSettings) model.MetricSettings {
	out := s
	out.Min = cloneFloat(s.Min)
	out.Max = cloneFloat(s.Max)
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
