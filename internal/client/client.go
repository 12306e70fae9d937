// Package client is a typed HTTP client for the Chronology API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"chronology/internal/chart"
	"chronology/internal/config"
	"chronology/internal/dataset"
	"chronology/internal/export"
	"chronology/internal/logging"
	"chronology/internal/model"
	"chronology/internal/service"
	"chronology/internal/table"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chronology api: %d %s", e.Status, e.UserMessage())
}

func (e *APIError) IsNotFound() bool   { return e.Status == http.StatusNotFound }
func (e *APIError) IsBadRequest() bool { return e.Status == http.StatusBadRequest }
func (e *APIError) IsValidation() bool { return e.Status == http.StatusUnprocessableEntity }
func (e *APIError) IsConflict() bool   { return e.Status == http.StatusConflict }

// UserMessage returns the server's detail, or the status text when the
// body carried none.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

// Client talks to one Chronology server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(logger).Named("client") }
}

// New creates a client for the API rooted at baseURL, e.g.
// http://localhost:8000/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig creates a client from cfg's APIURL and ClientTimeout.
func FromConfig(cfg *config.Config, logger *zap.Logger) *Client {
	return New(cfg.APIURL,
		WithHTTPClient(&http.Client{Timeout: cfg.ClientTimeout}),
		WithLogger(logger))
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	resp, err := c.send(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// send performs the request and turns non-2xx responses into *APIError.
// The caller owns the returned body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in any) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, readError(resp)
	}
	return resp, nil
}

func readError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Detail string `json:"detail"`
	}
	msg := ""
	if json.Unmarshal(data, &body) == nil {
		msg = body.Detail
	} else {
		msg = strings.TrimSpace(string(data))
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

func sortQuery(cfg *table.SortConfig) url.Values {
	q := url.Values{}
	if cfg != nil && cfg.Key != "" {
		q.Set("sort", cfg.Key)
		q.Set("dir", string(cfg.Direction))
	}
	return q
}

// ListProjects returns every project with its records.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodGet, projectPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, req service.CreateProjectRequest) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, req service.UpdateProjectRequest) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPut, projectPath(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, projectPath(id), nil, nil, nil)
}

// ListRecords returns a project's records, server-sorted when sort is set.
func (c *Client) ListRecords(ctx context.Context, projectID string, sort *table.SortConfig) ([]model.MetricRecord, error) {
	var out []model.MetricRecord
	if err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/metrics", sortQuery(sort), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRecord(ctx context.Context, projectID string, patch model.RecordPatch) (*model.MetricRecord, error) {
	var out model.MetricRecord
	if err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/metrics", nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRecord(ctx context.Context, projectID, recordID string, patch model.RecordPatch) (*model.MetricRecord, error) {
	var out model.MetricRecord
	path := projectPath(projectID) + "/metrics/" + url.PathEscape(recordID)
	if err := c.do(ctx, http.MethodPut, path, nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRecord(ctx context.Context, projectID, recordID string) error {
	path := projectPath(projectID) + "/metrics/" + url.PathEscape(recordID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Bulk applies a batch of staged table changes in one request.
func (c *Client) Bulk(ctx context.Context, projectID string, changes table.Changes) (*table.Result, error) {
	var out table.Result
	if err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/metrics/bulk", nil, changes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplaceConfig replaces the project's whole metric configuration.
func (c *Client) ReplaceConfig(ctx context.Context, projectID string, settings []model.MetricSettings) error {
	return c.do(ctx, http.MethodPut, projectPath(projectID)+"/metrics-config", nil, settings, nil)
}

// CreateDefinition adds a metric definition and returns its id.
func (c *Client) CreateDefinition(ctx context.Context, projectID string, req service.MetricDefinitionRequest) (string, error) {
	var out struct {
		MetricID string `json:"metricId"`
	}
	if err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/metrics-definitions", nil, req, &out); err != nil {
		return "", err
	}
	return out.MetricID, nil
}

func (c *Client) UpdateDefinition(ctx context.Context, projectID, metricID string, patch service.MetricDefinitionPatch) (*model.MetricSettings, error) {
	var out model.MetricSettings
	path := projectPath(projectID) + "/metrics-definitions/" + url.PathEscape(metricID)
	if err := c.do(ctx, http.MethodPatch, path, nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDefinition(ctx context.Context, projectID, metricID string) error {
	path := projectPath(projectID) + "/metrics-definitions/" + url.PathEscape(metricID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Models returns the distinct model names of a project.
func (c *Client) Models(ctx context.Context, projectID string) ([]string, error) {
	var out struct {
		Models []string `json:"models"`
	}
	if err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/models", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// Stats returns the summary cards for metrics, or for every enabled
// metric when metrics is empty.
func (c *Client) Stats(ctx context.Context, projectID string, metrics []string) (*chart.Summary, error) {
	q := url.Values{}
	if len(metrics) > 0 {
		q.Set("metrics", strings.Join(metrics, ","))
	}
	var out chart.Summary
	if err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/stats", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChartData is the resolved selection and the series drawn for it.
type ChartData struct {
	Selection chart.Selection `json:"selection"`
	Series    []chart.Series  `json:"series"`
}

func chartQuery(sel chart.Selection) url.Values {
	q := url.Values{}
	if sel.Mode != "" {
		q.Set("mode", string(sel.Mode))
	}
	if len(sel.Metrics) > 0 {
		q.Set("metrics", strings.Join(sel.Metrics, ","))
	}
	if len(sel.Models) > 0 {
		q.Set("models", strings.Join(sel.Models, ","))
	}
	if sel.Comparison != "" {
		q.Set("metric", sel.Comparison)
	}
	return q
}

// Chart fetches chart series for sel.
func (c *Client) Chart(ctx context.Context, projectID string, sel chart.Selection) (*ChartData, error) {
	var out ChartData
	if err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/chart", chartQuery(sel), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export streams a project export to w and returns the server's filename.
func (c *Client) Export(ctx context.Context, w io.Writer, projectID string, format export.Format, sort *table.SortConfig) (string, error) {
	q := sortQuery(sort)
	q.Set("format", string(format))
	resp, err := c.send(ctx, http.MethodGet, projectPath(projectID)+"/export", q, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("failed to read export: %w", err)
	}
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return "", nil
	}
	return params["filename"], nil
}

func (c *Client) ListDatasets(ctx context.Context) ([]dataset.Dataset, error) {
	var out []dataset.Dataset
	if err := c.do(ctx, http.MethodGet, "/datasets", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDataset(ctx context.Context, id string) (*dataset.Dataset, error) {
	var out dataset.Dataset
	if err := c.do(ctx, http.MethodGet, "/datasets/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DatasetContent returns the first rows of a dataset. A limit of 0 uses
// the server default.
func (c *Client) DatasetContent(ctx context.Context, id string, limit int) (*dataset.Content, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out dataset.Content
	if err := c.do(ctx, http.MethodGet, "/datasets/"+url.PathEscape(id)+"/content", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
