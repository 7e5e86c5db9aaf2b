// Package ops serves the operational HTTP surface for long-running
// ingest invocations: liveness and Prometheus metrics. One-shot cron
// runs never start it.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goodrec/nyc-ingest/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server wires the operational routes.
type Server struct {
	job     string
	started time.Time
	log     logger.Logger
}

// NewServer creates an ops server tagged with the job it reports for.
func NewServer(job string) *Server {
	return &Server{
		job:     job,
		started: time.Now(),
		log:     logger.Get().Named("ops"),
	}
}

// Register attaches the operational routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metricsHandler())
}

// Serve blocks serving the operational surface on addr until ctx ends,
// then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.Register(ctx, mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "ops server listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
