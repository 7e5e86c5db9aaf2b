package normalize

import (
	"strconv"
	"strings"

	"github.com/goodrec/nyc-ingest/internal/domain/model"
)

// OfferPrice maps a marketplace offer to the price enum. Zero-valued
// offers ("0.00", "0") read as free; numeric offers keep their value;
// missing or junk offers defer to the listing.
func OfferPrice(raw string) string {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if raw == "" {
		return model.PriceCheckSite
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return model.PriceCheckSite
	}
	if v == 0 {
		return model.PriceFree
	}
	return "$" + raw
}

// RangePrice maps a ticketing price range to the price enum:
// "$<min>" when the range is a point, "$<min> - $<max>" otherwise.
func RangePrice(min, max float64) string {
	if min == max {
		return "$" + formatAmount(min)
	}
	return "$" + formatAmount(min) + " - $" + formatAmount(max)
}

// formatAmount renders an amount the way the feeds do: no trailing
// zeros, so 35 stays "35" and 35.5 stays "35.5".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
