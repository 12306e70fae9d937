package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"chronology/internal/model"
)

// CreateProjectRequest is the body of a project create.
type CreateProjectRequest struct {
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Color         string                 `json:"color,omitempty"`
	MetricsConfig []model.MetricSettings `json:"metricsConfig,omitempty"`
}

// UpdateProjectRequest is the body of a project update. Nil fields are
// left unchanged; a non-nil MetricsConfig replaces the whole configuration.
type UpdateProjectRequest struct {
	Name          *string                 `json:"name,omitempty"`
	Description   *string                 `json:"description,omitempty"`
	Color         *string                 `json:"color,omitempty"`
	MetricsConfig *[]model.MetricSettings `json:"metricsConfig,omitempty"`
}

func (s *Service) stamp() model.Timestamp {
	return model.NewTimestamp(s.now().UTC().Truncate(time.Microsecond))
}

// ListProjects returns all projects with their records and settings.
func (s *Service) ListProjects(ctx context.Context) (_ []model.Project, err error) {
	ctx, span := s.start(ctx, "ListProjects")
	defer func() { finish(span, err) }()

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// GetProject returns one project with its records and settings.
func (s *Service) GetProject(ctx context.Context, id string) (_ *model.Project, err error) {
	ctx, span := s.start(ctx, "GetProject", attribute.String("chronology.project.id", id))
	defer func() { finish(span, err) }()

	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, translate(err, "Project", id)
	}
	return p, nil
}

// CreateProject creates a project. Without a metrics config the project
// starts with the default metrics.
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (_ *model.Project, err error) {
	ctx, span := s.start(ctx, "CreateProject")
	defer func() { finish(span, err) }()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	config := req.MetricsConfig
	if len(config) == 0 {
		config = model.DefaultMetricsConfig()
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	now := s.stamp()
	p := model.Project{
		ID:            s.newID(),
		Name:          name,
		Description:   req.Description,
		Color:         req.Color,
		CreatedAt:     now,
		UpdatedAt:     now,
		MetricsConfig: config,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, translate(err, "Project", p.ID)
	}
	span.SetAttributes(attribute.String("chronology.project.id", p.ID))
	s.logger.Info("Created project", zap.String("project_id", p.ID), zap.String("name", p.Name))
	return s.GetProject(ctx, p.ID)
}

// UpdateProject applies a partial update and bumps UpdatedAt.
func (s *Service) UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (_ *model.Project, err error) {
	ctx, span := s.start(ctx, "UpdateProject", attribute.String("chronology.project.id", id))
	defer func() { finish(span, err) }()

	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, translate(err, "Project", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Message: "must not be empty"}
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Color != nil {
		p.Color = *req.Color
	}
	if req.MetricsConfig != nil {
		if err := validateConfig(*req.MetricsConfig); err != nil {
			return nil, err
		}
	}

	p.UpdatedAt = s.stamp()
	if err := s.store.UpdateProject(ctx, *p); err != nil {
		return nil, translate(err, "Project", id)
	}
	if req.MetricsConfig != nil {
		if err := s.store.ReplaceSettings(ctx, id, *req.MetricsConfig); err != nil {
			return nil, translate(err, "Project", id)
		}
	}
	s.logger.Info("Updated project", zap.String("project_id", id))
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project with its records and settings.
func (s *Service) DeleteProject(ctx context.Context, id string) (err error) {
	ctx, span := s.start(ctx, "DeleteProject", attribute.String("chronology.project.id", id))
	defer func() { finish(span, err) }()

	if err := s.store.DeleteProject(ctx, id); err != nil {
		return translate(err, "Project", id)
	}
	s.logger.Info("Deleted project", zap.String("project_id", id))
	return nil
}

// Models returns the distinct model names recorded in a project.
func (s *Service) Models(ctx context.Context, projectID string) (_ []string, err error) {
	ctx, span := s.start(ctx, "Models", attribute.String("chronology.project.id", projectID))
	defer func() { finish(span, err) }()

	records, err := s.store.ListRecords(ctx, projectID)
	if err != nil {
		return nil, translate(err, "Project", projectID)
	}
	models := model.UniqueModels(records)
	if models == nil {
		models = []string{}
	}
	return models, nil
}
