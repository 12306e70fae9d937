package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chronology/internal/api"
	"chronology/internal/chart"
	"chronology/internal/config"
	"chronology/internal/dataset"
	"chronology/internal/export"
	"chronology/internal/model"
	"chronology/internal/seed"
	"chronology/internal/service"
	"chronology/internal/store"
	"chronology/internal/table"
)

var _ table.Applier = (*Client)(nil)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	st := store.NewMemory()
	_, err := seed.Apply(context.Background(), st, zap.NewNop())
	require.NoError(t, err)
	datasets, err := dataset.NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	h := api.NewHandler(service.New(st, nil), datasets, nil, api.Options{
		Now: func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) },
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+config.APIPrefix+"/", WithHTTPClient(srv.Client()))
}

func TestAPIError(t *testing.T) {
	err := &APIError{Status: http.StatusNotFound, Message: "Project with id 'x' not found"}
	assert.True(t, err.IsNotFound())
	assert.False(t, err.IsValidation())
	assert.Equal(t, "chronology api: 404 Project with id 'x' not found", err.Error())

	bare := &APIError{Status: http.StatusConflict}
	assert.True(t, bare.IsConflict())
	assert.Equal(t, "Conflict", bare.UserMessage())

	wrapped := errors.Join(errors.New("context"), err)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestProjects(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)

	p, err := c.CreateProject(ctx, service.CreateProjectRequest{Name: "Speech"})
	require.NoError(t, err)

	name := "Speech v2"
	p, err = c.UpdateProject(ctx, p.ID, service.UpdateProjectRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Speech v2", p.Name)

	require.NoError(t, c.DeleteProject(ctx, p.ID))
	_, err = c.GetProject(ctx, p.ID)
	assert.True(t, IsNotFound(err))

	_, err = c.CreateProject(ctx, service.CreateProjectRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, "name: is required", apiErr.Message)
}

func TestRecordsAndBulk(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	r, err := c.CreateRecord(ctx, "2", model.RecordPatch{
		Timestamp: model.String("2024-06-01"),
		ModelName: model.String("XLNet"),
		Accuracy:  model.Float(0.9),
	})
	require.NoError(t, err)

	r, err = c.UpdateRecord(ctx, "2", r.ID, model.RecordPatch{ModelVersion: model.String("v2")})
	require.NoError(t, err)
	assert.Equal(t, "v2", r.ModelVersion)

	records, err := c.ListRecords(ctx, "2", &table.SortConfig{Key: "accuracy", Direction: table.Desc})
	require.NoError(t, err)
	require.Len(t, records, 10)
	assert.Equal(t, r.ID, records[0].ID)

	require.NoError(t, c.DeleteRecord(ctx, "2", r.ID))
	err = c.DeleteRecord(ctx, "2", r.ID)
	assert.True(t, IsNotFound(err))

	res, err := c.Bulk(ctx, "2", table.Changes{Deletes: []string{"2-1", "2-2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2-1", "2-2"}, res.Deleted)

	// The client drives table.Apply directly as well.
	local := table.Apply(ctx, c, "2", table.Changes{
		Additions: []model.RecordPatch{{Timestamp: model.String("2024-07-01"), ModelName: model.String("T5")}},
	})
	require.NoError(t, local.Err())
	require.Len(t, local.Created, 1)
	assert.Equal(t, "T5", local.Created[0].ModelName)
}

func TestSettings(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	id, err := c.CreateDefinition(ctx, "1", service.MetricDefinitionRequest{
		MetricID: "latency", Name: "Latency", Type: model.TypeFloat, Color: "hsl(30, 80%, 50%)", Unit: "ms",
	})
	require.NoError(t, err)
	assert.Equal(t, "latency", id)

	_, err = c.CreateDefinition(ctx, "1", service.MetricDefinitionRequest{
		MetricID: "latency", Name: "Latency", Type: model.TypeFloat, Color: "hsl(30, 80%, 50%)",
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())

	enabled := false
	s, err := c.UpdateDefinition(ctx, "1", "latency", service.MetricDefinitionPatch{Enabled: &enabled})
	require.NoError(t, err)
	assert.False(t, s.Enabled)

	require.NoError(t, c.DeleteDefinition(ctx, "1", "latency"))
	require.NoError(t, c.ReplaceConfig(ctx, "1", model.DefaultMetricsConfig()[:3]))

	p, err := c.GetProject(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"accuracy", "loss", "precision"}, p.Enabled())
}

func TestViews(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	models, err := c.Models(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"LSTM", "GRU", "Transformer"}, models)

	summary, err := c.Stats(ctx, "3", []string{"loss"})
	require.NoError(t, err)
	require.Len(t, summary.Stats, 1)
	assert.Equal(t, "loss", summary.Stats[0].Key)
	assert.Equal(t, 9, summary.TotalRecords)

	data, err := c.Chart(ctx, "3", chart.Selection{Mode: chart.ModelWise, Models: []string{"GRU"}, Comparison: "f1Score"})
	require.NoError(t, err)
	require.Len(t, data.Series, 1)
	assert.Equal(t, "GRU", data.Series[0].ID)
	assert.Equal(t, chart.ModelWise, data.Selection.Mode)

	var buf bytes.Buffer
	name, err := c.Export(ctx, &buf, "3", export.JSON, nil)
	require.NoError(t, err)
	assert.Equal(t, "time-series-forecasting-metrics-2024-07-01.json", name)
	assert.Contains(t, buf.String(), `"LSTM"`)

	_, err = c.Export(ctx, &buf, "3", export.Format("pdf"), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsBadRequest())
}

func TestDatasets(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	list, err := c.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = c.GetDataset(ctx, "deadbeef")
	assert.True(t, IsNotFound(err))

	_, err = c.DatasetContent(ctx, "deadbeef", 5)
	assert.True(t, IsNotFound(err))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.ListProjects(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
