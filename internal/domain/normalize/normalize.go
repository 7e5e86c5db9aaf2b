// Package normalize holds the shared rules that turn source-shaped
// records into canonical events: the publish window, date and clock
// formatting, location composition, price mapping, and description
// sanitation. Everything here is a pure function so adapters stay thin
// and the rules stay testable in isolation.
package normalize

import (
	"strings"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
)

// Canonical applies the rules every published event obeys regardless of
// origin. It is a fixpoint: Canonical(Canonical(e)) == Canonical(e).
func Canonical(e model.Event) model.Event {
	e.Name = Sanitize(e.Name)
	e.Location = Sanitize(e.Location)
	e.Description = Describe(e.Description, e.Name, e.Platform)
	if e.Time != nil && strings.TrimSpace(*e.Time) == "" {
		e.Time = nil
	}
	if e.Price == "" {
		e.Price = model.PriceCheckSource
	}
	e.Source = model.Source
	e.IsActive = true
	return e
}
