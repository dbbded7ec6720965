// Package handlers contains the write-API route handlers mounted under
// the configured write prefix. Only write operations live here; the
// service exposes no read API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"watchtower-hq/janus/pkg/server/respond"
	"watchtower-hq/janus/pkg/store"
)

// maxBodyBytes caps observation payloads. They are a domain and a
// timestamp; anything bigger is malformed.
const maxBodyBytes = 4 << 10

// observationRequest is the write payload for a single IdP observation.
type observationRequest struct {
	Domain     string    `json:"domain"`
	ObservedAt time.Time `json:"observed_at"`
}

// observationResponse acknowledges a recorded observation.
type observationResponse struct {
	Recorded   bool      `json:"recorded"`
	Domain     string    `json:"domain"`
	ObservedAt time.Time `json:"observed_at"`
}

// ObservationsHandler records externally submitted IdP observations.
type ObservationsHandler struct {
	store  store.Store
	logger *slog.Logger
}

// NewObservationsHandler creates the handler writing to st.
func NewObservationsHandler(st store.Store) *ObservationsHandler {
	return &ObservationsHandler{
		store:  st,
		logger: slog.Default().With("component", "handlers.observations"),
	}
}

// ServeHTTP handles POST: validate the payload, upsert the record, and
// acknowledge. All responses go through the respond package.
func (h *ObservationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req observationRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "malformed observation payload")
		return
	}

	req.Domain = strings.TrimSpace(strings.ToLower(req.Domain))
	if req.Domain == "" {
		respond.Error(w, http.StatusBadRequest, "domain is required")
		return
	}
	if req.ObservedAt.IsZero() {
		req.ObservedAt = time.Now()
	}

	if err := h.store.UpsertLastSeen(r.Context(), req.Domain, req.ObservedAt); err != nil {
		h.logger.Error("failed to record submitted observation",
			"domain", req.Domain, "error", err)
		respond.Error(w, http.StatusServiceUnavailable, "store unavailable, retry shortly")
		return
	}

	respond.JSON(w, http.StatusAccepted, observationResponse{
		Recorded:   true,
		Domain:     req.Domain,
		ObservedAt: req.ObservedAt,
	})
}
