package normalize

import (
	"html"
	"regexp"
	"strings"
)

// Description bounds.
const (
	descriptionMax  = 150
	descriptionTrim = 147
	ellipsis        = "..."
)

// tagPattern matches HTML tags for stripping; descriptions arrive as
// fragments, so a full parser buys nothing over this.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize decodes entities, strips HTML tags, and collapses runs of
// whitespace to single spaces. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = html.UnescapeString(s)
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Truncate caps s at descriptionMax runes, replacing the tail with an
// ellipsis when it overflows. Already-truncated strings pass unchanged.
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= descriptionMax {
		return s
	}
	return string(runes[:descriptionTrim]) + ellipsis
}

// Describe produces the canonical description: sanitized, bounded, and
// synthesized from the event name when the source gives nothing.
func Describe(desc, name, platform string) string {
	desc = Sanitize(desc)
	if desc == "" {
		desc = name + ". Check " + platform + " for full details."
	}
	return Truncate(desc)
}
