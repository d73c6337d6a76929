package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/how3io/how3-backend/internal/api"
	"github.com/how3io/how3-backend/internal/api/handlers"
	"github.com/how3io/how3-backend/internal/api/ws"
	"github.com/how3io/how3-backend/pkg/metrics"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST and websocket API server.

This command:
- Serves the protocol catalog and score endpoints
- Streams freshly computed scores over websocket
- Exposes Prometheus metrics on a separate port

Endpoints:
  GET  /health                            - Health check
  GET  /api/protocols                     - Protocol catalog
  GET  /api/protocols/{id}                - One protocol
  GET  /api/categories                    - Category counts
  GET  /api/scores                        - Latest rankings
  GET  /api/protocols/{id}/scores         - Score history
  GET  /api/protocols/{id}/scores/latest  - Latest score
  POST /api/update                        - Trigger a scoring pass
  GET  /ws/scores                         - Score updates stream

Example:
  go run ./cmd/how3 api
  go run ./cmd/how3 api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== How3 API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// Websocket hub receives every score the pipeline persists
	hub := ws.NewHub(a.log)
	a.runner.SetPublisher(hub)

	// Handlers and router
	protocolHandler := handlers.NewProtocolHandler(a.store, a.log)
	scoreHandler := handlers.NewScoreHandler(a.store, a.log)
	updateHandler := handlers.NewUpdateHandler(a.runner, a.collector, a.store, a.log)

	router := api.NewRouter(protocolHandler, scoreHandler, updateHandler, hub, a.log)
	server := api.New(a.cfg, a.log, router)

	// Metrics endpoint runs alongside the API server
	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	defer stopMetrics()
	go func() {
		if err := metrics.Serve(metricsCtx, a.cfg, a.metrics, a.log); err != nil {
			a.log.WithError(err).Error("Metrics endpoint failed")
		}
	}()

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	a.log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
