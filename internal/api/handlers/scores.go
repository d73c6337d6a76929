package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/how3io/how3-backend/internal/store"
	"github.com/how3io/how3-backend/pkg/logger"
)

const defaultHistoryLimit = 30

// ScoreHandler serves score records and rankings
type ScoreHandler struct {
	store  *store.Store
	logger *logger.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(s *store.Store, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{store: s, logger: log}
}

// Rankings returns the latest score per protocol, ranked by composite
// GET /api/scores
func (h *ScoreHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.store.Scores.ListLatest(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list latest scores")
		respondError(w, http.StatusInternalServerError, "Failed to list scores")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(records),
		"scores": records,
	})
}

// Latest returns the most recent score record for a protocol
// GET /api/protocols/{id}/scores/latest
func (h *ScoreHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid protocol id")
		return
	}

	record, err := h.store.Scores.GetLatest(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "No scores for protocol")
			return
		}
		h.logger.WithError(err).Error("Failed to get latest score")
		respondError(w, http.StatusInternalServerError, "Failed to get score")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// History returns score records for a protocol, newest first
// GET /api/protocols/{id}/scores?limit=30
func (h *ScoreHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid protocol id")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	records, err := h.store.Scores.GetHistory(ctx, id, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get score history")
		respondError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"protocol_id": id,
		"count":       len(records),
		"scores":      records,
	})
}
