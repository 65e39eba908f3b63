package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Endpoint serves /metrics and /healthz for the lifetime of a CLI run when
// metrics are enabled. The core pipeline itself owns no listener; this is
// purely an operational surface of the command layer.
type Endpoint struct {
	server *http.Server
	logger *slog.Logger
}

// NewEndpoint builds the metrics HTTP endpoint on the given listen address.
func NewEndpoint(addr string, m *Metrics, logger *slog.Logger) *Endpoint {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Endpoint{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves the endpoint in the background.
func (e *Endpoint) Start() {
	go func() {
		e.logger.Info("metrics endpoint listening", "addr", e.server.Addr)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Error("metrics endpoint failed", "error", err)
		}
	}()
}

// Shutdown stops the endpoint gracefully.
func (e *Endpoint) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
