// Command dev-fixtures serves synthetic upstream payloads for the
// ingestion jobs, so they can run end to end with no network access to
// the real origins.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodrec/nyc-ingest/internal/fixtures"
	"github.com/goodrec/nyc-ingest/pkg/logger"
)

func main() {
	var (
		addr   = flag.String("addr", fixtures.DefaultAddr, "Listen address")
		events = flag.Int("events", fixtures.DefaultEvents, "Rows generated per origin")
		days   = flag.Int("days", fixtures.DefaultDays, "Calendar spread of generated dates, starting today")
		seed   = flag.Int64("seed", fixtures.DefaultSeed, "Generator seed; the same seed reproduces a dataset")
		help   = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fixtures.ShowHelp()
		return
	}

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := fixtures.NewServer(fixtures.Config{
		Addr:   *addr,
		Events: *events,
		Days:   *days,
		Seed:   *seed,
	})
	if err := srv.Serve(ctx); err != nil {
		os.Stderr.WriteString("dev-fixtures: " + err.Error() + "\n")
		os.Exit(1)
	}
}
