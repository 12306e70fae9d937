package store

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronology/internal/model"
)

// backends returns a fresh instance of each Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "sub", "chronology.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func ts(s string) model.Timestamp {
	t, err := model.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return model.NewTimestamp(t)
}

func sampleProject(id string) model.Project {
	return model.Project{
		ID:            id,
		Name:          "Project " + id,
		Description:   "desc",
		CreatedAt:     ts("2024-01-01"),
		UpdatedAt:     ts("2024-01-02T03:04:05"),
		Color:         "hsl(200, 100%, 50%)",
		MetricsConfig: model.DefaultMetricsConfig(),
	}
}

func sampleRecord(projectID, id string) model.MetricRecord {
	return model.MetricRecord{
		ID:                id,
		ProjectID:         projectID,
		Timestamp:         ts("2024-02-01"),
		ModelName:         "ResNet-50",
		ModelVersion:      "v1",
		Accuracy:          model.Float(0.8),
		Loss:              model.Float(0.4),
		AdditionalMetrics: map[string]any{"auc": 0.9, "notes": "baseline"},
	}
}

func TestProjectLifecycle(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := sampleProject("p1")
			require.NoError(t, s.CreateProject(ctx, p))

			got, err := s.GetProject(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, "Project p1", got.Name)
			assert.True(t, got.CreatedAt.Equal(p.CreatedAt.Time))
			assert.True(t, got.UpdatedAt.Equal(p.UpdatedAt.Time))
			assert.Empty(t, got.Records)
			if diff := cmp.Diff(model.DefaultMetricsConfig(), got.MetricsConfig); diff != "" {
				t.Errorf("MetricsConfig mismatch (-want +got):\n%s", diff)
			}

			n, err := s.CountProjects(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			got.Name = "Renamed"
			got.Color = ""
			got.UpdatedAt = ts("2024-05-01")
			require.NoError(t, s.UpdateProject(ctx, *got))

			updated, err := s.GetProject(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, "Renamed", updated.Name)
			assert.Equal(t, "", updated.Color)
			assert.Equal(t, "2024-05-01", updated.UpdatedAt.Date())

			require.NoError(t, s.DeleteProject(ctx, "p1"))
			_, err = s.GetProject(ctx, "p1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestProjectErrors(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateProject(ctx, sampleProject("p1")))

			assert.ErrorIs(t, s.CreateProject(ctx, sampleProject("p1")), ErrConflict)
			assert.ErrorIs(t, s.UpdateProject(ctx, sampleProject("missing")), ErrNotFound)
			assert.ErrorIs(t, s.DeleteProject(ctx, "missing"), ErrNotFound)
			_, err := s.ListRecords(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.ListSettings(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestListProjectsOrder(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"b", "a", "c"} {
				require.NoError(t, s.CreateProject(ctx, sampleProject(id)))
			}
			require.NoError(t, s.CreateRecord(ctx, sampleRecord("a", "a-1")))

			projects, err := s.ListProjects(ctx)
			require.NoError(t, err)
			require.Len(t, projects, 3)
			assert.Equal(t, "b", projects[0].ID)
			assert.Equal(t, "a", projects[1].ID)
			assert.Equal(t, "c", projects[2].ID)
			assert.Len(t, projects[1].Records, 1)
		})
	}
}

func TestRecordLifecycle(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateProject(ctx, sampleProject("p1")))

			r := sampleRecord("p1", "p1-a")
			require.NoError(t, s.CreateRecord(ctx, r))
			require.NoError(t, s.CreateRecord(ctx, sampleRecord("p1", "p1-b")))

			got, err := s.GetRecord(ctx, "p1-a")
			require.NoError(t, err)
			assert.Equal(t, "ResNet-50", got.ModelName)
			assert.Equal(t, "v1", got.ModelVersion)
			require.NotNil(t, got.Accuracy)
			assert.Equal(t, 0.8, *got.Accuracy)
			assert.Nil(t, got.Precision)
			assert.Equal(t, 0.9, got.AdditionalMetrics["auc"])
			assert.Equal(t, "baseline", got.AdditionalMetrics["notes"])

			got.Accuracy = model.Float(0.85)
			got.Loss = nil
			got.AdditionalMetrics = nil
			require.NoError(t, s.UpdateRecord(ctx, *got))

			updated, err := s.GetRecord(ctx, "p1-a")
			require.NoError(t, err)
			assert.Equal(t, 0.85, *updated.Accuracy)
			assert.Nil(t, updated.Loss)
			assert.Empty(t, updated.AdditionalMetrics)

			records, err := s.ListRecords(ctx, "p1")
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "p1-a", records[0].ID)

			require.NoError(t, s.DeleteRecord(ctx, "p1-a"))
			_, err = s.GetRecord(ctx, "p1-a")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.DeleteRecord(ctx, "p1-a"), ErrNotFound)
			assert.ErrorIs(t, s.UpdateRecord(ctx, r), ErrNotFound)
		})
	}
}

func TestCreateRecordErrors(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.ErrorIs(t, s.CreateRecord(ctx, sampleRecord("missing", "x")), ErrNotFound)

			require.NoError(t, s.CreateProject(ctx, sampleProject("p1")))
			require.NoError(t, s.CreateRecord(ctx, sampleRecord("p1", "dup")))
			assert.ErrorIs(t, s.CreateRecord(ctx, sampleRecord("p1", "dup")), ErrConflict)
		})
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateProject(ctx, sampleProject("p1")))
			require.NoError(t, s.CreateRecord(ctx, sampleRecord("p1", "p1-a")))

			require.NoError(t, s.DeleteProject(ctx, "p1"))
			_, err := s.GetRecord(ctx, "p1-a")
			assert.ErrorIs(t, err, ErrNotFound)

			// Recreating the id starts from a clean slate.
			p := sampleProject("p1")
			p.MetricsConfig = nil
			require.NoError(t, s.CreateProject(ctx, p))
			settings, err := s.ListSettings(ctx, "p1")
			require.NoError(t, err)
			assert.Empty(t, settings)
		})
	}
}

func TestSettings(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateProject(ctx, sampleProject("p1")))

			custom := model.MetricSettings{ID: "auc", Name: "AUC", Type: model.TypeFloat, Color: "red", Enabled: true, Max: model.Float(1)}
			require.NoError(t, s.CreateSetting(ctx, "p1", custom))
			assert.ErrorIs(t, s.CreateSetting(ctx, "p1", custom), ErrConflict)
			assert.ErrorIs(t, s.CreateSetting(ctx, "missing", custom), ErrNotFound)

			settings, err := s.ListSettings(ctx, "p1")
			require.NoError(t, err)
			require.Len(t, settings, 6)
			assert.Equal(t, "auc", settings[5].ID)
			assert.Nil(t, settings[5].Min)

			custom.Enabled = false
			require.NoError(t, s.UpdateSetting(ctx, "p1", custom))
			settings, err = s.ListSettings(ctx, "p1")
			require.NoError(t, err)
			assert.False(t, settings[5].Enabled)

			require.NoError(t, s.DeleteSetting(ctx, "p1", "auc"))
			assert.ErrorIs(t, s.DeleteSetting(ctx, "p1", "auc"), ErrNotFound)
			assert.ErrorIs(t, s.UpdateSetting(ctx, "p1", custom), ErrNotFound)

			replacement := []model.MetricSettings{
				{ID: "bleu", Name: "BLEU", Type: model.TypeFloat, Color: "blue", Enabled: true},
			}
			require.NoError(t, s.ReplaceSettings(ctx, "p1", replacement))
			settings, err = s.ListSettings(ctx, "p1")
			require.NoError(t, err)
			if diff := cmp.Diff(replacement, settings); diff != "" {
				t.Errorf("ReplaceSettings mismatch (-want +got):\n%s", diff)
			}
			assert.ErrorIs(t, s.ReplaceSettings(ctx, "missing", replacement), ErrNotFound)
		})
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateProject(ctx, sampleProject("p1")))
			require.NoError(t, s.CreateRecord(ctx, sampleRecord("p1", "p1-a")))

			got, err := s.GetRecord(ctx, "p1-a")
			require.NoError(t, err)
			*got.Accuracy = 0
			got.AdditionalMetrics["auc"] = 0.0

			again, err := s.GetRecord(ctx, "p1-a")
			require.NoError(t, err)
			assert.Equal(t, 0.8, *again.Accuracy)
			assert.Equal(t, 0.9, again.AdditionalMetrics["auc"])
		})
	}
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronology.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateProject(ctx, sampleProject("p1")))
	require.NoError(t, s.CreateRecord(ctx, sampleRecord("p1", "p1-a")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, path, reopened.Path())

	p, err := reopened.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, p.Records, 1)
	assert.Len(t, p.MetricsConfig, 5)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateProject(ctx, sampleProject("p1")))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			r := sampleRecord("p1", "p1-"+strconv.Itoa(i))
			_ = m.CreateRecord(ctx, r)
		}
	}()
	for i := 0; i < 100; i++ {
		_, _ = m.ListProjects(ctx)
	}
	<-done

	records, err := m.ListRecords(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, records, 100)
}
