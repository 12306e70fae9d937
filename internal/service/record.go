package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"chronology/internal/model"
)

// ListRecords returns a project's metric records in insertion order.
func (s *Service) ListRecords(ctx context.Context, projectID string) (_ []model.MetricRecord, err error) {
	ctx, span := s.start(ctx, "ListRecords", attribute.String("chronology.project.id", projectID))
	defer func() { finish(span, err) }()

	records, err := s.store.ListRecords(ctx, projectID)
	if err != nil {
		return nil, translate(err, "Project", projectID)
	}
	return records, nil
}

// CreateRecord adds a metric record to a project. The record id is
// "<projectID>-<uuid>".
func (s *Service) CreateRecord(ctx context.Context, projectID string, patch model.RecordPatch) (_ *model.MetricRecord, err error) {
	ctx, span := s.start(ctx, "CreateRecord", attribute.String("chronology.project.id", projectID))
	defer func() { finish(span, err) }()

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, translate(err, "Project", projectID)
	}
	if patch.Timestamp == nil || strings.TrimSpace(*patch.Timestamp) == "" {
		return nil, &ValidationError{Field: "timestamp", Message: "is required"}
	}
	if patch.ModelName == nil || strings.TrimSpace(*patch.ModelName) == "" {
		return nil, &ValidationError{Field: "modelName", Message: "is required"}
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	r := model.MetricRecord{
		ID:        projectID + "-" + s.newID(),
		ProjectID: projectID,
	}
	if err := patch.Apply(&r); err != nil {
		return nil, &ValidationError{Field: "timestamp", Message: err.Error()}
	}
	r.ModelName = strings.TrimSpace(r.ModelName)

	if err := s.store.CreateRecord(ctx, r); err != nil {
		return nil, translate(err, "Metric", r.ID)
	}
	span.SetAttributes(attribute.String("chronology.record.id", r.ID))
	s.logger.Debug("Created record", zap.String("project_id", projectID), zap.String("record_id", r.ID))
	return &r, nil
}

// UpdateRecord applies a partial update to a record belonging to projectID.
func (s *Service) UpdateRecord(ctx context.Context, projectID, recordID string, patch model.RecordPatch) (_ *model.MetricRecord, err error) {
	ctx, span := s.start(ctx, "UpdateRecord",
		attribute.String("chronology.project.id", projectID),
		attribute.String("chronology.record.id", recordID))
	defer func() { finish(span, err) }()

	r, err := s.ownedRecord(ctx, projectID, recordID)
	if err != nil {
		return nil, err
	}
	if patch.ModelName != nil && strings.TrimSpace(*patch.ModelName) == "" {
		return nil, &ValidationError{Field: "modelName", Message: "must not be empty"}
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if err := patch.Apply(r); err != nil {
		return nil, &ValidationError{Field: "timestamp", Message: err.Error()}
	}

	if err := s.store.UpdateRecord(ctx, *r); err != nil {
		return nil, translate(err, "Metric", recordID)
	}
	s.logger.Debug("Updated record", zap.String("project_id", projectID), zap.String("record_id", recordID))
	return r, nil
}

// DeleteRecord removes a record belonging to projectID.
func (s *Service) DeleteRecord(ctx context.Context, projectID, recordID string) (err error) {
	ctx, span := s.start(ctx, "DeleteRecord",
		attribute.String("chronology.project.id", projectID),
		attribute.String("chronology.record.id", recordID))
	defer func() { finish(span, err) }()

	if _, err := s.ownedRecord(ctx, projectID, recordID); err != nil {
		return err
	}
	if err := s.store.DeleteRecord(ctx, recordID); err != nil {
		return translate(err, "Metric", recordID)
	}
	s.logger.Debug("Deleted record", zap.String("project_id", projectID), zap.String("record_id", recordID))
	return nil
}

// ownedRecord loads a record and checks that both the project exists and
// the record belongs to it.
func (s *Service) ownedRecord(ctx context.Context, projectID, recordID string) (*model.MetricRecord, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, translate(err, "Project", projectID)
	}
	r, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, translate(err, "Metric", recordID)
	}
	if r.ProjectID != projectID {
		return nil, metricNotFound(recordID)
	}
	return r, nil
}

func validatePatch(p model.RecordPatch) error {
	if p.Timestamp != nil {
		if _, err := model.ParseTimestamp(*p.Timestamp); err != nil {
			return &ValidationError{Field: "timestamp", Message: err.Error()}
		}
	}
	if p.AdditionalMetrics != nil {
		if _, err := json.Marshal(p.AdditionalMetrics); err != nil {
			return &ValidationError{Field: "additionalMetrics", Message: "Invalid additional metrics format: " + err.Error()}
		}
	}
	return nil
}
