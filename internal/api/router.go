package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/how3io/how3-backend/internal/api/handlers"
	"github.com/how3io/how3-backend/internal/api/ws"
	"github.com/how3io/how3-backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	protocolHandler *handlers.ProtocolHandler,
	scoreHandler *handlers.ScoreHandler,
	updateHandler *handlers.UpdateHandler,
	hub *ws.Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Protocol catalog
	api.HandleFunc("/protocols", protocolHandler.List).Methods("GET")
	api.HandleFunc("/protocols/{id:[0-9]+}", protocolHandler.Get).Methods("GET")
	api.HandleFunc("/categories", protocolHandler.Categories).Methods("GET")

	// Scores
	api.HandleFunc("/scores", scoreHandler.Rankings).Methods("GET")
	api.HandleFunc("/protocols/{id:[0-9]+}/scores", scoreHandler.History).Methods("GET")
	api.HandleFunc("/protocols/{id:[0-9]+}/scores/latest", scoreHandler.Latest).Methods("GET")

	// Manual triggers
	api.HandleFunc("/update", updateHandler.TriggerPass).Methods("POST")
	api.HandleFunc("/protocols/{id:[0-9]+}/update", updateHandler.TriggerUpdate).Methods("POST")

	// Score updates stream
	r.HandleFunc("/ws/scores", hub.HandleSubscribe)

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "how3-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
