package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"vesseltrack/internal/store"
)

type HealthHandler struct {
	store *store.Store
}

func NewHealthHandler(s *store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready        bool      `json:"ready"`
	DatasetCount int       `json:"datasetCount"`
	ServerTime   time.Time `json:"serverTime"`
}

// Readyz reports readiness. The service keeps no external state it must wait
// for on boot, so it is ready as soon as it serves requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ReadyResponse{
		Ready:        true,
		DatasetCount: h.store.Count(),
		ServerTime:   time.Now(),
	})
}
