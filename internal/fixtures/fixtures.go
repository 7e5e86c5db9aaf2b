// Package fixtures serves synthetic upstream payloads so the ingestion
// jobs can run end to end without touching the real origins. One local
// server stands in for all four sources: point the *_URL settings at it
// and run any job dry or against a scratch database.
package fixtures

import "os"

// Default server configuration constants.
const (
	DefaultAddr   = "127.0.0.1:8701"
	DefaultEvents = 40
	DefaultDays   = 14
	DefaultSeed   = 1
)

// Config holds configuration for the fixture server.
type Config struct {
	Addr   string // listen address
	Events int    // rows generated per origin
	Days   int    // calendar spread of generated dates, starting today
	Seed   int64  // generator seed; the same seed reproduces a dataset
}

// ShowHelp prints usage information for the fixture server.
func ShowHelp() {
	os.Stdout.WriteString(`GoodRec Fixture Server
======================

Serves synthetic upstream payloads for the ingestion jobs: permitted
events, the parks feed, marketplace listing pages, and the ticketing
discovery API, all on one local address.

Usage:
  go run cmd/dev-fixtures/main.go [options]

Options:
  -addr string
        Listen address (default "127.0.0.1:8701")
  -events int
        Rows generated per origin (default 40)
  -days int
        Calendar spread of generated dates, starting today (default 14)
  -seed int
        Generator seed; the same seed reproduces a dataset (default 1)
  -help
        Show this help message

Routes:
  /permitted     permitted-events dataset rows (JSON)
  /parks         parks feed entries (JSON)
  /marketplace   listing pages with embedded JSON-LD (HTML, ?page=N)
  /ticketing     discovery API pages (JSON, ?page=N)

Examples:
  # Serve fixtures, then run the event job against them
  go run cmd/dev-fixtures/main.go &
  GOODREC_PERMITTED_URL=http://127.0.0.1:8701/permitted \
  GOODREC_PARKS_URL=http://127.0.0.1:8701/parks \
  GOODREC_MARKETPLACE_URL=http://127.0.0.1:8701/marketplace \
  GOODREC_TICKETMASTER_URL=http://127.0.0.1:8701/ticketing \
  TICKETMASTER_API_KEY=dev \
  go run cmd/ingest-events/main.go

  # A bigger dataset on a different port
  go run cmd/dev-fixtures/main.go -addr 127.0.0.1:9701 -events 200
`)
}
