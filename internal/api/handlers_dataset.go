package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"chronology/internal/dataset"
)

func (h *Handler) datasetError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, dataset.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Dataset with id '%s' not found", id))
		return
	}
	h.fail(w, r, err)
}

func (h *Handler) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := h.datasets.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	d, err := h.datasets.Get(r.Context(), id)
	if err != nil {
		h.datasetError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleDatasetContent returns up to ?limit= rows, capped at the
// configured maximum.
func (h *Handler) handleDatasetContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	limit := h.opts.DatasetRowLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusUnprocessableEntity, "limit: must be a positive integer")
			return
		}
		limit = min(n, h.opts.MaxDatasetRows)
	}

	content, err := h.datasets.Content(r.Context(), id, limit)
	if err != nil {
		h.datasetError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}
