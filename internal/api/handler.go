package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kartoza/premium-estimator/internal/config"
	"github.com/kartoza/premium-estimator/internal/estimator"
	"github.com/kartoza/premium-estimator/internal/model"
)

// Handler provides the operational HTTP endpoints
type Handler struct {
	handle    *model.Handle
	estimator *estimator.Estimator
	cfg       config.Config
}

// NewHandler creates a new API handler
func NewHandler(
	handle *model.Handle,
	est *estimator.Estimator,
	cfg config.Config,
) *Handler {
	return &Handler{
		handle:    handle,
		estimator: est,
		cfg:       cfg,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", slog.Any("error", err))
	}
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo reports version, model state and request counters
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":      h.cfg.Version,
		"model_path":   h.cfg.ModelPath,
		"model_loaded": false,
	}

	if h.handle != nil {
		if p, err := h.handle.Get(); err != nil {
			info["model_error"] = err.Error()
		} else {
			info["model_loaded"] = true
			info["strategy"] = p.Strategy().String()
		}
	}

	if h.estimator != nil {
		info["estimates"] = h.estimator.Stats()
	}

	respondJSON(w, http.StatusOK, info)
}
