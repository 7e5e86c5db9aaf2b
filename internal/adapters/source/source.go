// Package source contains the ingestion source adapters. Each adapter
// wraps one upstream origin and turns its records into canonical
// events. Adapters are error-isolated: a fetch that fails upstream is
// logged and yields whatever was collected, never a run failure.
package source

import (
	"context"

	"github.com/goodrec/nyc-ingest/internal/config"
	"github.com/goodrec/nyc-ingest/internal/domain/model"
)

// Source is one ingestion origin.
type Source interface {
	// Name is the short identifier used in logs and metrics.
	Name() string
	// Platform is the canonical platform tag stamped on this source's
	// events.
	Platform() string
	// Fetch retrieves and normalizes the origin's current listings.
	// Implementations skip bad records and return what they have; a
	// non-nil error means the whole fetch failed and the result is
	// partial or empty.
	Fetch(ctx context.Context) ([]model.Event, error)
}

// FromConfig builds the adapters in dedup priority order. Cross-source
// dedup is first-seen-wins, so this order decides which platform keeps
// a contested (name, date) slot: permitted, parks, marketplace,
// ticketing.
func FromConfig(cfg *config.Config) []Source {
	return []Source{
		NewPermitted(WithBaseURL(cfg.PermittedURL)),
		NewParks(WithBaseURL(cfg.ParksURL)),
		NewMarketplace(WithBaseURL(cfg.MarketplaceURL)),
		NewTicketing(WithBaseURL(cfg.TicketmasterURL), WithAPIKey(cfg.TicketmasterAPIKey)),
	}
}
