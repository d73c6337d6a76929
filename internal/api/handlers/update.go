package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/how3io/how3-backend/internal/ingest"
	"github.com/how3io/how3-backend/internal/pipeline"
	"github.com/how3io/how3-backend/internal/store"
	"github.com/how3io/how3-backend/pkg/logger"
)

// UpdateHandler triggers data refreshes and scoring passes on demand
type UpdateHandler struct {
	runner    *pipeline.Runner
	collector *ingest.Collector
	store     *store.Store
	logger    *logger.Logger
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(runner *pipeline.Runner, collector *ingest.Collector, s *store.Store, log *logger.Logger) *UpdateHandler {
	return &UpdateHandler{runner: runner, collector: collector, store: s, logger: log}
}

type updateRequest struct {
	ProtocolIDs []int64 `json:"protocol_ids,omitempty"`
}

// TriggerPass runs a scoring pass for the requested protocols, or the whole
// catalog when the body is empty.
// POST /api/update
func (h *UpdateHandler) TriggerPass(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	// Detach from the request context so a client disconnect does not
	// abort a pass already in flight.
	result, err := h.runner.RunScoringPass(context.WithoutCancel(r.Context()), req.ProtocolIDs)
	if err != nil {
		h.logger.WithError(err).Error("Manual scoring pass failed")
		respondError(w, http.StatusInternalServerError, "Scoring pass failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   result.RunID,
		"scored":   result.Scored,
		"failed":   result.Failed,
		"degraded": result.Degraded,
		"duration": result.Duration.String(),
	})
}

// TriggerUpdate refreshes one protocol's metric tables and rescores it.
// POST /api/protocols/{id}/update
func (h *UpdateHandler) TriggerUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid protocol id")
		return
	}

	ctx := context.WithoutCancel(r.Context())

	p, err := h.store.Protocols.GetProtocol(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Protocol not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load protocol")
		respondError(w, http.StatusInternalServerError, "Failed to load protocol")
		return
	}

	if err := h.collector.Refresh(ctx, p); err != nil {
		h.logger.WithFields(map[string]interface{}{
			"protocol": p.Symbol,
			"error":    err.Error(),
		}).Error("Manual refresh failed")
		respondError(w, http.StatusBadGateway, "Data refresh failed")
		return
	}

	result, err := h.runner.RunScoringPass(ctx, []int64{id})
	if err != nil {
		h.logger.WithError(err).Error("Manual scoring pass failed")
		respondError(w, http.StatusInternalServerError, "Scoring pass failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  result.RunID,
		"scored":  result.Scored,
		"failed":  result.Failed,
		"records": result.Records,
	})
}
