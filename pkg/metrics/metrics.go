package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/logger"
)

// Metrics holds Prometheus metrics for the scoring pipeline
type Metrics struct {
	ScoringRuns     *prometheus.CounterVec
	ScoringDuration prometheus.Histogram
	ProtocolsScored prometheus.Gauge
	UpstreamErrors  *prometheus.CounterVec
	DegradedUGS     prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers the pipeline metrics on a private registry
func New() *Metrics {
	m := &Metrics{
		ScoringRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "how3_scoring_runs_total",
				Help: "Total number of per-protocol scoring runs",
			},
			[]string{"status"},
		),
		ScoringDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "how3_scoring_pass_duration_seconds",
				Help:    "Duration of a full scoring pass",
				Buckets: prometheus.DefBuckets,
			},
		),
		ProtocolsScored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "how3_protocols_scored",
				Help: "Number of protocols scored in the last pass",
			},
		),
		UpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "how3_upstream_errors_total",
				Help: "Total number of upstream data source errors",
			},
			[]string{"source"},
		),
		DegradedUGS: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "how3_ugs_degraded_total",
				Help: "UGS computations that fell back to absolute-scale estimates",
			},
		),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.ScoringRuns,
		m.ScoringDuration,
		m.ProtocolsScored,
		m.UpstreamErrors,
		m.DegradedUGS,
	)

	return m
}

// Handler returns an HTTP handler exposing the registered metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a metrics endpoint on the configured port when enabled.
// Blocks until the context is cancelled.
func Serve(ctx context.Context, cfg *config.Config, m *Metrics, log *logger.Logger) error {
	if !cfg.MetricsEnabled {
		log.Info("Metrics endpoint disabled")
		<-ctx.Done()
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.MetricsPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.MetricsPort).Info("Starting metrics endpoint")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
