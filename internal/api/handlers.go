package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mubench-review/internal/aggregate"
	"mubench-review/internal/db"
	"mubench-review/internal/logger"
)

func (a *App) handleHits(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	index, err := a.processor.GetPotentialHitsIndex(r.Context(), table)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, index)
}

func (a *App) handleDatasets(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		http.Error(w, "missing query parameter prefix", http.StatusBadRequest)
		return
	}
	names, err := a.processor.GetDatasets(r.Context(), prefix)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, names)
}

func (a *App) handleDetectors(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		http.Error(w, "missing query parameter prefix", http.StatusBadRequest)
		return
	}
	names, err := a.processor.GetDetectors(r.Context(), prefix)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, names)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(r.Context()); err != nil {
		logger.Log.Errorw("healthcheck falhou", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// statusFor mapeia os erros conhecidos para códigos HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrInvalidTableName):
		return http.StatusBadRequest
	case errors.Is(err, aggregate.ErrMissingVersionContext):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger.Log.Errorw("erro na requisição",
		"path", r.URL.Path,
		"request_id", w.Header().Get(requestIDHeader),
		"status", status,
		"error", err,
	)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
