package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chronology/internal/model"
	"chronology/internal/service"
)

func (h *Handler) handleReplaceConfig(w http.ResponseWriter, r *http.Request) {
	var config []model.MetricSettings
	if !decode(w, r, &config) {
		return
	}
	if err := h.svc.ReplaceConfig(r.Context(), chi.URLParam(r, "projectID"), config); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Metric configuration updated successfully")
}

type definitionCreated struct {
	Message  string `json:"message"`
	MetricID string `json:"metricId"`
}

func (h *Handler) handleCreateDefinition(w http.ResponseWriter, r *http.Request) {
	var req service.MetricDefinitionRequest
	if !decode(w, r, &req) {
		return
	}
	def, err := h.svc.CreateDefinition(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, definitionCreated{
		Message:  "Metric definition created successfully",
		MetricID: def.ID,
	})
}

func (h *Handler) handleUpdateDefinition(w http.ResponseWriter, r *http.Request) {
	var patch service.MetricDefinitionPatch
	if !decode(w, r, &patch) {
		return
	}
	projectID, metricID := chi.URLParam(r, "projectID"), chi.URLParam(r, "metricID")
	var (
		def *model.MetricSettings
		err error
	)
	if patch.EnabledOnly() {
		def, err = h.svc.SetEnabled(r.Context(), projectID, metricID, *patch.Enabled)
	} else {
		def, err = h.svc.UpdateDefinition(r.Context(), projectID, metricID, patch)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *Handler) handleDeleteDefinition(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteDefinition(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "metricID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Metric definition deleted successfully")
}
