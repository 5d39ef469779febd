package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Catalog API traffic
var (
	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "popcorn_catalog_requests_total",
		Help: "Catalog API requests by result status.",
	}, []string{"status"})

	CatalogRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "popcorn_catalog_request_duration_seconds",
		Help:    "Catalog API request latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// CacheLookups counts response cache lookups by result (hit, miss, expired, shared).
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "popcorn_cache_lookups_total",
	Help: "Response cache lookups by result.",
}, []string{"result"})

// FetchIntents counts fetch intents by how the coordinator handled them.
var FetchIntents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "popcorn_fetch_intents_total",
	Help: "Fetch intents by outcome.",
}, []string{"outcome"})

// ObserveRequest records one catalog request.
func ObserveRequest(status string, started time.Time) {
	CatalogRequests.WithLabelValues(status).Inc()
	CatalogRequestDuration.Observe(time.Since(started).Seconds())
}

// Serve exposes /metrics on addr until ctx is done.
// An empty addr disables the listener.
func Serve(ctx context.Context, addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("metrics listener started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", "error", err)
		}
	}()
}
