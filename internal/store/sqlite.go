package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"chronology/internal/jsonutil"
	"chronology/internal/model"
)

// SQLite implements Store on a single SQLite database file.
type SQLite struct {
	db     *sql.DB
	dbPath string
}

// NewSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps PRAGMA state and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initialize() error {
	projectsTable := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		color TEXT
	);
	`

	metricsTable := `
	CREATE TABLE IF NOT EXISTS project_metrics (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		timestamp TEXT NOT NULL,
		model_name TEXT NOT NULL,
		model_version TEXT,
		accuracy REAL,
		loss REAL,
		precision REAL,
		recall REAL,
		f1_score REAL,
		additional_metrics TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_metrics_project ON project_metrics(project_id);
	`

	settingsTable := `
	CREATE TABLE IF NOT EXISTS metric_settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		metric_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		color TEXT NOT NULL,
		unit TEXT,
		enabled INTEGER NOT NULL DEFAULT 1,
		min_value REAL,
		max_value REAL,
		description TEXT,
		UNIQUE(project_id, metric_id)
	);
	`

	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	for _, table := range []string{projectsTable, metricsTable, settingsTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.dbPath
}

// ========== Projects ==========

const projectColumns = `id, name, description, created_at, updated_at, color`

func (s *SQLite) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		projects = append(projects, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	for i := range projects {
		if err := s.loadChildren(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (s *SQLite) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLite) loadChildren(ctx context.Context, p *model.Project) error {
	records, err := s.queryRecords(ctx, p.ID)
	if err != nil {
		return err
	}
	settings, err := s.querySettings(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Records = records
	p.MetricsConfig = settings
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var (
		p                model.Project
		created, updated string
		color            sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &created, &updated, &color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	var err error
	if p.CreatedAt.Time, err = model.ParseTimestamp(created); err != nil {
		return nil, fmt.Errorf("project %s created_at: %w", p.ID, err)
	}
	if p.UpdatedAt.Time, err = model.ParseTimestamp(updated); err != nil {
		return nil, fmt.Errorf("project %s updated_at: %w", p.ID, err)
	}
	p.Color = color.String
	p.Records = []model.MetricRecord{}
	return &p, nil
}

func (s *SQLite) CreateProject(ctx context.Context, p model.Project) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, p.ID).Scan(&exists)
		if err == nil {
			return fmt.Errorf("project %s: %w", p.ID, ErrConflict)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check project: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO projects (id, name, description, created_at, updated_at, color) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.CreatedAt.String(), p.UpdatedAt.String(), nullString(p.Color))
		if err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}
		for _, setting := range p.MetricsConfig {
			if err := insertSetting(ctx, tx, p.ID, setting); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) UpdateProject(ctx context.Context, p model.Project) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, color = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, nullString(p.Color), p.UpdatedAt.String(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireAffected(res, "project", p.ID)
}

func (s *SQLite) DeleteProject(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_metrics WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete project records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM metric_settings WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete project settings: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return requireAffected(res, "project", id)
	})
}

func (s *SQLite) CountProjects(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// ========== Records ==========

const recordColumns = `id, project_id, timestamp, model_name, model_version, accuracy, loss, precision, recall, f1_score, additional_metrics`

func (s *SQLite) ListRecords(ctx context.Context, projectID string) ([]model.MetricRecord, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.queryRecords(ctx, projectID)
}

func (s *SQLite) queryRecords(ctx context.Context, projectID string) ([]model.MetricRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM project_metrics WHERE project_id = ? ORDER BY rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []model.MetricRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

func scanRecord(row rowScanner) (*model.MetricRecord, error) {
	var (
		r                                     model.MetricRecord
		ts                                    string
		version, additional                   sql.NullString
		accuracy, loss, precision, recall, f1 sql.NullFloat64
	)
	err := row.Scan(&r.ID, &r.ProjectID, &ts, &r.ModelName, &version,
		&accuracy, &loss, &precision, &recall, &f1, &additional)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	if r.Timestamp.Time, err = model.ParseTimestamp(ts); err != nil {
		return nil, fmt.Errorf("record %s timestamp: %w", r.ID, err)
	}
	r.ModelVersion = version.String
	r.Accuracy = floatPtr(accuracy)
	r.Loss = floatPtr(loss)
	r.Precision = floatPtr(precision)
	r.Recall = floatPtr(recall)
	r.F1Score = floatPtr(f1)
	if r.AdditionalMetrics, err = jsonutil.UnmarshalMap(additional.String, "record "+r.ID+" additional metrics"); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLite) GetRecord(ctx context.Context, id string) (*model.MetricRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM project_metrics WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *SQLite) CreateRecord(ctx context.Context, r model.MetricRecord) error {
	additional, err := jsonutil.MarshalMap(r.AdditionalMetrics)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireProjectTx(ctx, tx, r.ProjectID); err != nil {
			return err
		}
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM project_metrics WHERE id = ?`, r.ID).Scan(&exists)
		if err == nil {
			return fmt.Errorf("record %s: %w", r.ID, ErrConflict)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check record: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_metrics (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.ProjectID, r.Timestamp.String(), r.ModelName, nullString(r.ModelVersion),
			nullFloat(r.Accuracy), nullFloat(r.Loss), nullFloat(r.Precision), nullFloat(r.Recall), nullFloat(r.F1Score),
			nullString(additional))
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		return nil
	})
}

func (s *SQLite) UpdateRecord(ctx context.Context, r model.MetricRecord) error {
	additional, err := jsonutil.MarshalMap(r.AdditionalMetrics)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE project_metrics SET timestamp = ?, model_name = ?, model_version = ?, accuracy = ?, loss = ?,
		precision = ?, recall = ?, f1_score = ?, additional_metrics = ? WHERE id = ?`,
		r.Timestamp.String(), r.ModelName, nullString(r.ModelVersion),
		nullFloat(r.Accuracy), nullFloat(r.Loss), nullFloat(r.Precision), nullFloat(r.Recall), nullFloat(r.F1Score),
		nullString(additional), r.ID)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return requireAffected(res, "record", r.ID)
}

func (s *SQLite) DeleteRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM project_metrics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return requireAffected(res, "record", id)
}

// ========== Settings ==========

const settingColumns = `metric_id, name, type, color, unit, enabled, min_value, max_value, description`

func (s *SQLite) ListSettings(ctx context.Context, projectID string) ([]model.MetricSettings, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.querySettings(ctx, projectID)
}

func (s *SQLite) querySettings(ctx context.Context, projectID string) ([]model.MetricSettings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+settingColumns+` FROM metric_settings WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var settings []model.MetricSettings
	for rows.Next() {
		var (
			ms                model.MetricSettings
			typ               string
			unit, description sql.NullString
			enabled           int
			minV, maxV        sql.NullFloat64
		)
		if err := rows.Scan(&ms.ID, &ms.Name, &typ, &ms.Color, &unit, &enabled, &minV, &maxV, &description); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		ms.Type = model.MetricValueType(typ)
		ms.Unit = unit.String
		ms.Enabled = enabled != 0
		ms.Min = floatPtr(minV)
		ms.Max = floatPtr(maxV)
		ms.Description = description.String
		settings = append(settings, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}
	return settings, nil
}

func insertSetting(ctx context.Context, tx *sql.Tx, projectID string, ms model.MetricSettings) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO metric_settings (project_id, `+settingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, ms.ID, ms.Name, string(ms.Type), ms.Color, nullString(ms.Unit), boolInt(ms.Enabled),
		nullFloat(ms.Min), nullFloat(ms.Max), nullString(ms.Description))
	if err != nil {
		return fmt.Errorf("failed to insert setting %s: %w", ms.ID, err)
	}
	return nil
}

func (s *SQLite) ReplaceSettings(ctx context.Context, projectID string, settings []model.MetricSettings) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireProjectTx(ctx, tx, projectID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM metric_settings WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		for _, ms := range settings {
			if err := insertSetting(ctx, tx, projectID, ms); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) CreateSetting(ctx context.Context, projectID string, ms model.MetricSettings) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireProjectTx(ctx, tx, projectID); err != nil {
			return err
		}
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM metric_settings WHERE project_id = ? AND metric_id = ?`, projectID, ms.ID).Scan(&exists)
		if err == nil {
			return fmt.Errorf("metric %s: %w", ms.ID, ErrConflict)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check setting: %w", err)
		}
		return insertSetting(ctx, tx, projectID, ms)
	})
}

func (s *SQLite) UpdateSetting(ctx context.Context, projectID string, ms model.MetricSettings) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE metric_settings SET name = ?, type = ?, color = ?, unit = ?, enabled = ?, min_value = ?, max_value = ?,
		description = ? WHERE project_id = ? AND metric_id = ?`,
		ms.Name, string(ms.Type), ms.Color, nullString(ms.Unit), boolInt(ms.Enabled),
		nullFloat(ms.Min), nullFloat(ms.Max), nullString(ms.Description), projectID, ms.ID)
	if err != nil {
		return fmt.Errorf("failed to update setting: %w", err)
	}
	return requireAffected(res, "metric", ms.ID)
}

func (s *SQLite) DeleteSetting(ctx context.Context, projectID, metricID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM metric_settings WHERE project_id = ? AND metric_id = ?`, projectID, metricID)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return requireAffected(res, "metric", metricID)
}

// ========== Helpers ==========

func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLite) requireProject(ctx context.Context, id string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	return nil
}

func requireProjectTx(ctx context.Context, tx *sql.Tx, id string) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLite)(nil)
