package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"chronology/internal/chart"
	"chronology/internal/export"
)

// csvParam splits a comma-separated query parameter, dropping blanks.
func csvParam(r *http.Request, name string) []string {
	var out []string
	for _, part := range strings.Split(r.URL.Query().Get(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type modelsBody struct {
	Models []string `json:"models"`
}

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.Models(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modelsBody{Models: models})
}

// handleStats reports the latest value and last change of ?metrics=, or
// of every enabled metric.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics := csvParam(r, "metrics")
	if len(metrics) == 0 {
		metrics = p.Enabled()
	}
	writeJSON(w, http.StatusOK, chart.Stats(p, metrics))
}

type chartBody struct {
	Selection chart.Selection `json:"selection"`
	Series    []chart.Series  `json:"series"`
}

// handleChart builds chart series from ?mode=, ?metrics=, ?models= and
// ?metric= (the model-wise comparison metric). ?format=html renders a page.
func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := chart.ParseViewMode(q.Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format := q.Get("format")
	if format != "" && format != "json" && format != "html" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported chart format %q", format))
		return
	}

	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sel := chart.Selection{
		Metrics:    csvParam(r, "metrics"),
		Models:     csvParam(r, "models"),
		Comparison: q.Get("metric"),
	}
	sel.SetMode(mode, p.Enabled(), p.AvailableModels())
	if sel.Metrics == nil {
		sel.Metrics = []string{}
	}
	if sel.Models == nil {
		sel.Models = []string{}
	}
	series := chart.Build(p, sel)

	if format == "html" {
		var buf bytes.Buffer
		if err := chart.RenderHTML(&buf, p, sel, series); err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}
	writeJSON(w, http.StatusOK, chartBody{Selection: sel, Series: series})
}

// handleExport downloads the project's records. It honors the same sort
// parameters as the record list.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
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

	var buf bytes.Buffer
	if err := export.Write(&buf, format, p, records); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(p, format, h.opts.Now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
