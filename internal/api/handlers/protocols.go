package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/how3io/how3-backend/internal/contracts"
	"github.com/how3io/how3-backend/internal/store"
	"github.com/how3io/how3-backend/pkg/logger"
)

// ProtocolHandler serves the protocol catalog
type ProtocolHandler struct {
	store  *store.Store
	logger *logger.Logger
}

// NewProtocolHandler creates a new protocol handler
func NewProtocolHandler(s *store.Store, log *logger.Logger) *ProtocolHandler {
	return &ProtocolHandler{store: s, logger: log}
}

// List returns all tracked protocols, optionally filtered by category
// GET /api/protocols?category=DEX
func (h *ProtocolHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.URL.Query().Get("category")

	protocols, err := h.listProtocols(ctx, category)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list protocols")
		respondError(w, http.StatusInternalServerError, "Failed to list protocols")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(protocols),
		"protocols": protocols,
	})
}

// detailWindowMonths bounds the metric tables returned by the detail endpoint
const detailWindowMonths = 12

// Get returns one protocol with its metric tables and latest score
// GET /api/protocols/{id}
func (h *ProtocolHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid protocol id")
		return
	}

	protocol, err := h.store.GetProtocol(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Protocol not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get protocol")
		respondError(w, http.StatusInternalServerError, "Failed to get protocol")
		return
	}

	revenue, err := h.store.RevenueTable(ctx, id, detailWindowMonths)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load revenue table")
		respondError(w, http.StatusInternalServerError, "Failed to get protocol")
		return
	}

	users, err := h.store.UserTable(ctx, id, detailWindowMonths)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user table")
		respondError(w, http.StatusInternalServerError, "Failed to get protocol")
		return
	}

	// A protocol may not have been scored yet
	latest, err := h.store.Scores.GetLatest(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.logger.WithError(err).Error("Failed to load latest score")
		respondError(w, http.StatusInternalServerError, "Failed to get protocol")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"protocol":     protocol,
		"revenue":      revenue,
		"users":        users,
		"latest_score": latest,
	})
}

// Categories returns the distinct protocol categories with member counts
// GET /api/categories
func (h *ProtocolHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	protocols, err := h.store.ListProtocols(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list protocols")
		respondError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	counts := make(map[string]int)
	for _, p := range protocols {
		counts[p.Category]++
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": counts,
	})
}

func (h *ProtocolHandler) listProtocols(ctx context.Context, category string) ([]*contracts.Protocol, error) {
	if category != "" {
		return h.store.Protocols.ListByCategory(ctx, category)
	}
	return h.store.ListProtocols(ctx)
}
