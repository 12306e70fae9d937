package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chronology/internal/model"
	"chronology/internal/store"
	"chronology/internal/table"
)

var _ table.Applier = (*Service)(nil)

func newTestService(t *testing.T) *Service {
	t.Helper()
	n := 0
	clock := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	return New(store.NewMemory(), zap.NewNop(),
		WithClock(func() time.Time { return clock }),
		WithIDGenerator(func() string {
			n++
			return "id" + strconv.Itoa(n)
		}),
	)
}

func mustProject(t *testing.T, s *Service, name string) *model.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), CreateProjectRequest{Name: name, Description: "d"})
	require.NoError(t, err)
	return p
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	p, err := s.CreateProject(ctx, CreateProjectRequest{Name: "  Vision  ", Description: "CV"})
	require.NoError(t, err)
	assert.Equal(t, "id1", p.ID)
	assert.Equal(t, "Vision", p.Name)
	assert.Equal(t, "2024-07-01T09:00:00", p.CreatedAt.String())
	assert.Empty(t, p.Records)
	if diff := cmp.Diff(model.DefaultMetricsConfig(), p.MetricsConfig); diff != "" {
		t.Errorf("MetricsConfig mismatch (-want +got):\n%s", diff)
	}

	_, err = s.CreateProject(ctx, CreateProjectRequest{Name: " "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = s.CreateProject(ctx, CreateProjectRequest{
		Name: "dup",
		MetricsConfig: []model.MetricSettings{
			{ID: "a", Name: "A", Type: model.TypeFloat, Color: "#fff"},
			{ID: "a", Name: "A", Type: model.TypeFloat, Color: "#fff"},
		},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "duplicate")
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestService(t)
	_, err := s.GetProject(context.Background(), "nope")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Project with id 'nope' not found", err.Error())
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListProjectsEmpty(t *testing.T) {
	s := newTestService(t)
	got, err := s.ListProjects(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")

	name := "Vision v2"
	config := []model.MetricSettings{{ID: "auc", Name: "AUC", Type: model.TypeFloat, Color: "#123456", Enabled: true}}
	got, err := s.UpdateProject(ctx, p.ID, UpdateProjectRequest{Name: &name, MetricsConfig: &config})
	require.NoError(t, err)
	assert.Equal(t, "Vision v2", got.Name)
	assert.Equal(t, "d", got.Description)
	assert.Equal(t, config, got.MetricsConfig)

	empty := ""
	_, err = s.UpdateProject(ctx, p.ID, UpdateProjectRequest{Name: &empty})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = s.UpdateProject(ctx, "missing", UpdateProjectRequest{Name: &name})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	err := s.DeleteProject(ctx, p.ID)
	assert.EqualError(t, err, "Project with id 'id1' not found")
}

func TestRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")

	r, err := s.CreateRecord(ctx, p.ID, model.RecordPatch{
		Timestamp:         model.String("2024-05-01"),
		ModelName:         model.String(" ResNet "),
		Accuracy:          model.Float(0.8),
		AdditionalMetrics: map[string]any{"auc": 0.9},
	})
	require.NoError(t, err)
	assert.Equal(t, "id1-id2", r.ID)
	assert.Equal(t, "ResNet", r.ModelName)
	assert.Equal(t, "2024-05-01T00:00:00", r.Timestamp.String())

	updated, err := s.UpdateRecord(ctx, p.ID, r.ID, model.RecordPatch{Loss: model.Float(0.1)})
	require.NoError(t, err)
	assert.Equal(t, 0.8, *updated.Accuracy)
	assert.Equal(t, 0.1, *updated.Loss)
	assert.Equal(t, map[string]any{"auc": 0.9}, updated.AdditionalMetrics)

	records, err := s.ListRecords(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.1, *records[0].Loss)

	models, err := s.Models(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ResNet"}, models)

	require.NoError(t, s.DeleteRecord(ctx, p.ID, r.ID))
	err = s.DeleteRecord(ctx, p.ID, r.ID)
	assert.EqualError(t, err, "Metric with id 'id1-id2' not found")

	models, err = s.Models(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, models)
	assert.Empty(t, models)
}

func TestCreateRecordValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")

	tests := []struct {
		name  string
		patch model.RecordPatch
		field string
	}{
		{"missing timestamp", model.RecordPatch{ModelName: model.String("m")}, "timestamp"},
		{"missing model", model.RecordPatch{Timestamp: model.String("2024-01-01")}, "modelName"},
		{"bad timestamp", model.RecordPatch{Timestamp: model.String("yesterday"), ModelName: model.String("m")}, "timestamp"},
		{"bad additional", model.RecordPatch{
			Timestamp:         model.String("2024-01-01"),
			ModelName:         model.String("m"),
			AdditionalMetrics: map[string]any{"f": func() {}},
		}, "additionalMetrics"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateRecord(ctx, p.ID, tt.patch)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := s.CreateRecord(ctx, "missing", model.RecordPatch{})
	assert.EqualError(t, err, "Project with id 'missing' not found")
}

func TestRecordOwnership(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p1 := mustProject(t, s, "One")
	p2 := mustProject(t, s, "Two")

	r, err := s.CreateRecord(ctx, p1.ID, model.RecordPatch{
		Timestamp: model.String("2024-01-01"),
		ModelName: model.String("m"),
	})
	require.NoError(t, err)

	_, err = s.UpdateRecord(ctx, p2.ID, r.ID, model.RecordPatch{Loss: model.Float(1)})
	assert.EqualError(t, err, "Metric with id '"+r.ID+"' not found")
	assert.EqualError(t, s.DeleteRecord(ctx, p2.ID, r.ID), "Metric with id '"+r.ID+"' not found")
}

func TestMetricDefinitions(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")

	def, err := s.CreateDefinition(ctx, p.ID, MetricDefinitionRequest{
		MetricID: "auc", Name: "AUC", Type: model.TypeFloat, Color: "#123456",
	})
	require.NoError(t, err)
	assert.True(t, def.Enabled, "enabled defaults to true")

	_, err = s.CreateDefinition(ctx, p.ID, MetricDefinitionRequest{
		MetricID: "auc", Name: "AUC", Type: model.TypeFloat, Color: "#123456",
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = s.CreateDefinition(ctx, p.ID, MetricDefinitionRequest{MetricID: "x", Name: "X", Type: "bogus", Color: "#000"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	unit := "%"
	got, err := s.UpdateDefinition(ctx, p.ID, "auc", MetricDefinitionPatch{Unit: &unit})
	require.NoError(t, err)
	assert.Equal(t, "%", got.Unit)
	assert.Equal(t, "AUC", got.Name)

	_, err = s.UpdateDefinition(ctx, p.ID, "nope", MetricDefinitionPatch{Unit: &unit})
	assert.EqualError(t, err, "Metric with id 'nope' not found")

	off, err := s.SetEnabled(ctx, p.ID, "loss", false)
	require.NoError(t, err)
	assert.False(t, off.Enabled)

	require.NoError(t, s.DeleteDefinition(ctx, p.ID, "auc"))
	assert.EqualError(t, s.DeleteDefinition(ctx, p.ID, "auc"), "Metric with id 'auc' not found")

	settings, err := s.Settings(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, settings, len(model.DefaultMetricIDs))
}

func TestSetEnabledMaterializesDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")
	require.NoError(t, s.ReplaceConfig(ctx, p.ID, nil))

	got, err := s.SetEnabled(ctx, p.ID, "recall", false)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	settings, err := s.Settings(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, settings, len(model.DefaultMetricIDs))

	_, err = s.SetEnabled(ctx, p.ID, "custom", true)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUpdateDefinitionOnImplicitDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")
	require.NoError(t, s.ReplaceConfig(ctx, p.ID, nil))

	color := "#ff0000"
	got, err := s.UpdateDefinition(ctx, p.ID, "f1Score", MetricDefinitionPatch{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", got.Color)
	assert.True(t, got.Enabled)

	settings, err := s.Settings(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, settings, len(model.DefaultMetricIDs))
}

func TestMetricDefinitionPatchEnabledOnly(t *testing.T) {
	off, name := false, "Loss"
	assert.True(t, MetricDefinitionPatch{Enabled: &off}.EnabledOnly())
	assert.False(t, MetricDefinitionPatch{Enabled: &off, Name: &name}.EnabledOnly())
	assert.False(t, MetricDefinitionPatch{}.EnabledOnly())
}

func TestReplaceConfigValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")

	err := s.ReplaceConfig(ctx, p.ID, []model.MetricSettings{{ID: "a"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "metricsConfig[0]", verr.Field)

	err = s.ReplaceConfig(ctx, "missing", model.DefaultMetricsConfig())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestBulkThroughService(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := mustProject(t, s, "Vision")
	r1, err := s.CreateRecord(ctx, p.ID, model.RecordPatch{Timestamp: model.String("2024-01-01"), ModelName: model.String("a")})
	require.NoError(t, err)
	r2, err := s.CreateRecord(ctx, p.ID, model.RecordPatch{Timestamp: model.String("2024-01-02"), ModelName: model.String("b")})
	require.NoError(t, err)

	res := table.Apply(ctx, s, p.ID, table.Changes{
		Deletes:   []string{r1.ID},
		Updates:   map[string]model.RecordPatch{r2.ID: {Accuracy: model.Float(0.5)}},
		Additions: []model.RecordPatch{{Timestamp: model.String("2024-01-03"), ModelName: model.String("c")}},
	})
	require.NoError(t, res.Err())

	records, err := s.ListRecords(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 0.5, *records[0].Accuracy)
	assert.Equal(t, "c", records[1].ModelName)
}
