package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"chronology/internal/model"
)

// MetricDefinitionRequest creates a metric definition on a project.
type MetricDefinitionRequest struct {
	MetricID    string                `json:"metricId"`
	Name        string                `json:"name"`
	Type        model.MetricValueType `json:"type"`
	Color       string                `json:"color"`
	Unit        string                `json:"unit,omitempty"`
	Enabled     *bool                 `json:"enabled,omitempty"`
	Min         *float64              `json:"min,omitempty"`
	Max         *float64              `json:"max,omitempty"`
	Description string                `json:"description,omitempty"`
}

// Settings returns the definition described by the request. Enabled
// defaults to true.
func (r MetricDefinitionRequest) Settings() model.MetricSettings {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return model.MetricSettings{
		ID:          r.MetricID,
		Name:        r.Name,
		Type:        r.Type,
		Color:       r.Color,
		Unit:        r.Unit,
		Enabled:     enabled,
		Min:         r.Min,
		Max:         r.Max,
		Description: r.Description,
	}
}

// MetricDefinitionPatch partially updates a metric definition.
type MetricDefinitionPatch struct {
	Name        *string                `json:"name,omitempty"`
	Type        *model.MetricValueType `json:"type,omitempty"`
	Color       *string                `json:"color,omitempty"`
	Unit        *string                `json:"unit,omitempty"`
	Enabled     *bool                  `json:"enabled,omitempty"`
	Min         *float64               `json:"min,omitempty"`
	Max         *float64               `json:"max,omitempty"`
	Description *string                `json:"description,omitempty"`
}

// EnabledOnly reports whether the patch does nothing but show or hide
// the metric.
func (p MetricDefinitionPatch) EnabledOnly() bool {
	return p.Enabled != nil && p.Name == nil && p.Type == nil && p.Color == nil &&
		p.Unit == nil && p.Min == nil && p.Max == nil && p.Description == nil
}

func (p MetricDefinitionPatch) apply(s *model.MetricSettings) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Type != nil {
		s.Type = *p.Type
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	if p.Unit != nil {
		s.Unit = *p.Unit
	}
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.Min != nil {
		s.Min = p.Min
	}
	if p.Max != nil {
		s.Max = p.Max
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
}

func validateConfig(config []model.MetricSettings) error {
	seen := make(map[string]bool, len(config))
	for i, s := range config {
		if err := s.Validate(); err != nil {
			return &ValidationError{Field: fmt.Sprintf("metricsConfig[%d]", i), Message: err.Error()}
		}
		if seen[s.ID] {
			return &ValidationError{Field: fmt.Sprintf("metricsConfig[%d]", i), Message: fmt.Sprintf("duplicate metric id %q", s.ID)}
		}
		seen[s.ID] = true
	}
	return nil
}

// Settings returns the stored metric configuration of a project.
func (s *Service) Settings(ctx context.Context, projectID string) (_ []model.MetricSettings, err error) {
	ctx, span := s.start(ctx, "Settings", attribute.String("chronology.project.id", projectID))
	defer func() { finish(span, err) }()

	settings, err := s.store.ListSettings(ctx, projectID)
	if err != nil {
		return nil, translate(err, "Project", projectID)
	}
	return settings, nil
}

// ReplaceConfig swaps the project's whole metric configuration.
func (s *Service) ReplaceConfig(ctx context.Context, projectID string, config []model.MetricSettings) (err error) {
	ctx, span := s.start(ctx, "ReplaceConfig", attribute.String("chronology.project.id", projectID))
	defer func() { finish(span, err) }()

	if err := validateConfig(config); err != nil {
		return err
	}
	if err := s.store.ReplaceSettings(ctx, projectID, config); err != nil {
		return translate(err, "Project", projectID)
	}
	s.logger.Info("Replaced metric configuration",
		zap.String("project_id", projectID), zap.Int("metrics", len(config)))
	return nil
}

// CreateDefinition adds one metric definition to a project.
func (s *Service) CreateDefinition(ctx context.Context, projectID string, req MetricDefinitionRequest) (_ *model.MetricSettings, err error) {
	ctx, span := s.start(ctx, "CreateDefinition",
		attribute.String("chronology.project.id", projectID),
		attribute.String("chronology.metric.id", req.MetricID))
	defer func() { finish(span, err) }()

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, translate(err, "Project", projectID)
	}
	setting := req.Settings()
	if err := setting.Validate(); err != nil {
		return nil, &ValidationError{Field: "metric", Message: err.Error()}
	}
	if err := s.store.CreateSetting(ctx, projectID, setting); err != nil {
		return nil, translate(err, "Metric", setting.ID)
	}
	s.logger.Info("Created metric definition",
		zap.String("project_id", projectID), zap.String("metric_id", setting.ID))
	return &setting, nil
}

// UpdateDefinition partially updates a metric definition.
func (s *Service) UpdateDefinition(ctx context.Context, projectID, metricID string, patch MetricDefinitionPatch) (_ *model.MetricSettings, err error) {
	ctx, span := s.start(ctx, "UpdateDefinition",
		attribute.String("chronology.project.id", projectID),
		attribute.String("chronology.metric.id", metricID))
	defer func() { finish(span, err) }()

	settings, err := s.settingsForUpdate(ctx, projectID, metricID)
	if err != nil {
		return nil, err
	}
	var current *model.MetricSettings
	for i := range settings {
		if settings[i].ID == metricID {
			current = &settings[i]
			break
		}
	}
	if current == nil {
		return nil, metricNotFound(metricID)
	}

	patch.apply(current)
	if err := current.Validate(); err != nil {
		return nil, &ValidationError{Field: "metric", Message: err.Error()}
	}
	if err := s.store.UpdateSetting(ctx, projectID, *current); err != nil {
		return nil, translate(err, "Metric", metricID)
	}
	return current, nil
}

// settingsForUpdate lists the stored settings of a project. A project
// still on the implicit default configuration gets it written out first
// when a built-in metric is addressed, so the built-ins it displays can be
// changed.
func (s *Service) settingsForUpdate(ctx context.Context, projectID, metricID string) ([]model.MetricSettings, error) {
	settings, err := s.store.ListSettings(ctx, projectID)
	if err != nil {
		return nil, translate(err, "Project", projectID)
	}
	if len(settings) > 0 || !model.IsDefaultMetric(metricID) {
		return settings, nil
	}
	settings = model.DefaultMetricsConfig()
	if err := s.store.ReplaceSettings(ctx, projectID, settings); err != nil {
		return nil, translate(err, "Project", projectID)
	}
	s.logger.Debug("Materialized default metric configuration", zap.String("project_id", projectID))
	return settings, nil
}

// SetEnabled shows or hides a metric on a project.
func (s *Service) SetEnabled(ctx context.Context, projectID, metricID string, enabled bool) (_ *model.MetricSettings, err error) {
	ctx, span := s.start(ctx, "SetEnabled",
		attribute.String("chronology.project.id", projectID),
		attribute.String("chronology.metric.id", metricID),
		attribute.Bool("chronology.metric.enabled", enabled))
	defer func() { finish(span, err) }()

	return s.UpdateDefinition(ctx, projectID, metricID, MetricDefinitionPatch{Enabled: &enabled})
}

// DeleteDefinition removes a metric definition from a project.
func (s *Service) DeleteDefinition(ctx context.Context, projectID, metricID string) (err error) {
	ctx, span := s.start(ctx, "DeleteDefinition",
		attribute.String("chronology.project.id", projectID),
		attribute.String("chronology.metric.id", metricID))
	defer func() { finish(span, err) }()

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return translate(err, "Project", projectID)
	}
	if err := s.store.DeleteSetting(ctx, projectID, metricID); err != nil {
		return translate(err, "Metric", metricID)
	}
	s.logger.Info("Deleted metric definition",
		zap.String("project_id", projectID), zap.String("metric_id", metricID))
	return nil
}
