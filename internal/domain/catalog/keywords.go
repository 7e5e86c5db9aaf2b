package catalog

import (
	"regexp"
	"sort"
	"strings"
)

// Keyword extraction bounds.
const (
	keywordMinLength = 4
	keywordMinCount  = 3
	keywordLimit     = 100
)

var wordPattern = regexp.MustCompile(`[a-z]+`)

// stopWords holds glue words plus the boilerplate our own pipeline injects
// into descriptions ("Check <platform> for full details.", "Free event at
// NYC Parks."). Entries shorter than keywordMinLength never reach the
// lookup but keep the list readable.
var stopWords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"along": {}, "also": {}, "among": {}, "because": {}, "been": {},
	"before": {}, "being": {}, "below": {}, "between": {}, "both": {},
	"come": {}, "does": {}, "down": {}, "during": {}, "each": {},
	"even": {}, "every": {}, "from": {}, "have": {}, "here": {},
	"into": {}, "itself": {}, "join": {}, "just": {}, "like": {},
	"made": {}, "make": {}, "more": {}, "most": {}, "much": {},
	"must": {}, "only": {}, "onto": {}, "other": {}, "over": {},
	"please": {}, "same": {}, "should": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "under": {}, "until": {}, "upon": {}, "very": {},
	"well": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "will": {}, "with": {}, "within": {},
	"would": {}, "your": {},

	"check": {}, "city": {}, "data": {}, "details": {}, "event": {},
	"events": {}, "free": {}, "full": {}, "information": {}, "open": {},
	"parks": {}, "site": {}, "source": {}, "visit": {}, "york": {},
}

// TopKeywords ranks the informative vocabulary of the given descriptions.
// A word counts when it is longer than three characters and not a stop
// word; words seen fewer than three times are dropped and at most the top
// hundred survive, ordered by frequency with alphabetical tie-breaks.
func TopKeywords(descriptions []string) []string {
	counts := make(map[string]int)
	for _, d := range descriptions {
		for _, w := range wordPattern.FindAllString(strings.ToLower(d), -1) {
			if len(w) < keywordMinLength {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w, n := range counts {
		if n >= keywordMinCount {
			words = append(words, w)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > keywordLimit {
		words = words[:keywordLimit]
	}
	return words
}
