package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
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

// marketplacePages is how many listing pages carry items; later pages
// come back empty, which is how the crawler knows to stop.
const marketplacePages = 3

const listingPageShell = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>New York, NY Events | Page %d</title>
%s</head>
<body>
<main id="listings">Listings render client side.</main>
</body>
</html>
`

// Server serves the fixture routes.
type Server struct {
	cfg Config
	log logger.Logger
}

// NewServer builds a fixture server, filling zero config fields with
// defaults.
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Events <= 0 {
		cfg.Events = DefaultEvents
	}
	if cfg.Days <= 0 {
		cfg.Days = DefaultDays
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	return &Server{cfg: cfg, log: logger.Get().Named("fixtures")}
}

// generate builds a fresh dataset for one request. Regenerating per
// request keeps dates tracking today on a long-lived server, while the
// seed keeps each day's dataset stable.
func (s *Server) generate() *generator {
	return newGenerator(s.cfg.Seed, time.Now(), s.cfg.Days)
}

// Register attaches the fixture routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/permitted", s.handlePermitted)
	mux.HandleFunc("/parks", s.handleParks)
	mux.HandleFunc("/marketplace", s.handleMarketplace)
	mux.HandleFunc("/ticketing", s.handleTicketing)
}

func (s *Server) handlePermitted(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r, w, s.generate().permittedRows(s.cfg.Events))
}

func (s *Server) handleParks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r, w, s.generate().parksRows(s.cfg.Events))
}

func (s *Server) handleMarketplace(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	script := ""
	if page <= marketplacePages {
		items := s.generate().marketplaceItems(s.cfg.Events)
		per := (len(items) + marketplacePages - 1) / marketplacePages
		lo := (page - 1) * per
		hi := lo + per
		if hi > len(items) {
			hi = len(items)
		}
		doc, err := json.Marshal(ldDocument{
			Context: "https://schema.org",
			Type:    "ItemList",
			Items:   items[lo:hi],
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		script = `<script type="application/ld+json">` + string(doc) + "</script>\n"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, listingPageShell, page, script)
	s.log.Debug(r.Context(), "served marketplace page", logger.Int("page", page))
}

func (s *Server) handleTicketing(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}

	payload := ticketingPayload{Page: ticketingPageInfo{TotalPages: 1}}
	if page == 0 {
		payload.Embedded.Events = s.generate().ticketingEvents(s.cfg.Events)
	}
	s.writeJSON(r, w, payload)
}

func (s *Server) writeJSON(r *http.Request, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn(r.Context(), "fixture encode failed", logger.Error(err))
	}
}

// Serve blocks serving the fixture routes until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	s.Register(mux)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "fixture server listening",
			logger.String("addr", s.cfg.Addr),
			logger.Int("events", s.cfg.Events),
			logger.Int("days", s.cfg.Days))
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
