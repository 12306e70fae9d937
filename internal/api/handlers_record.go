package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chronology/internal/model"
	"chronology/internal/table"
)

// sortConfig reads ?sort=<key>&dir=asc|desc. No sort key means stored
// order.
func sortConfig(r *http.Request) (*table.SortConfig, error) {
	key := r.URL.Query().Get("sort")
	if key == "" {
		return nil, nil
	}
	dir := table.Direction(r.URL.Query().Get("dir"))
	switch dir {
	case "":
		dir = table.Asc
	case table.Asc, table.Desc:
	default:
		return nil, fmt.Errorf("Invalid sort direction %q: must be asc or desc", dir)
	}
	return &table.SortConfig{Key: key, Direction: dir}, nil
}

// sortedRecords returns the project's records, ordered per the request.
func sortedRecords(r *http.Request, p *model.Project) ([]model.MetricRecord, error) {
	cfg, err := sortConfig(r)
	if err != nil {
		return nil, err
	}
	records := p.Records
	if records == nil {
		records = []model.MetricRecord{}
	}
	if cfg == nil {
		return records, nil
	}
	return table.Sort(records, cfg, table.SplitMetrics(p.Config())), nil
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := sortedRecords(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var patch model.RecordPatch
	if !decode(w, r, &patch) {
		return
	}
	rec, err := h.svc.CreateRecord(r.Context(), chi.URLParam(r, "projectID"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var patch model.RecordPatch
	if !decode(w, r, &patch) {
		return
	}
	rec, err := h.svc.UpdateRecord(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "metricID"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteRecord(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "metricID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Metric record deleted successfully")
}

// handleBulk applies a staged bulk edit: deletions, then updates, then
// additions. Per-item failures are reported in the result.
func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	var changes table.Changes
	if !decode(w, r, &changes) {
		return
	}
	if _, err := h.svc.GetProject(r.Context(), projectID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table.Apply(r.Context(), h.svc, projectID, changes))
}
