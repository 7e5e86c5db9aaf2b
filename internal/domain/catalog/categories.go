package catalog

import (
	"regexp"
	"sort"
	"strings"
)

// categoryGroup pairs a browse category with the keyword pattern that
// assigns text to it. Patterns are lowercase; matching happens over
// lowercased text.
type categoryGroup struct {
	name    string
	pattern *regexp.Regexp
}

func group(name, words string) categoryGroup {
	return categoryGroup{name: name, pattern: regexp.MustCompile(`\b(?:` + words + `)\b`)}
}

var categoryGroups = []categoryGroup{
	group("sports", `yoga|fitness|run|running|marathon|basketball|soccer|tennis|swim|swimming|bike|biking|cycling|skate|skating|hike|hiking|volleyball|baseball|softball|pickleball|workout|bootcamp`),
	group("music", `music|concert|jazz|band|orchestra|symphony|choir|chorus|karaoke|acoustic|opera|hip hop|blues|vinyl|singalong|drumming`),
	group("comedy", `comedy|comedian|stand[- ]up|improv|open mic|sketch`),
	group("theater", `theater|theatre|broadway|play|musical|drama|shakespeare|cabaret|puppet`),
	group("art", `art|arts|artist|gallery|exhibit|exhibition|painting|sculpture|craft|crafts|drawing|mural|pottery|photography`),
	group("film", `film|movie|movies|cinema|screening|documentary|shorts`),
	group("dance", `dance|dancing|ballet|salsa|swing|tango|ballroom|bachata|breakdance`),
	group("food", `food|tasting|dinner|brunch|culinary|wine|beer|cocktail|cocktails|restaurant|supper|chef|barbecue|bbq|dessert`),
	group("market", `market|markets|flea|farmers|bazaar|fair|vendors|pop[- ]up`),
	group("education", `workshop|class|classes|lecture|seminar|course|learn|learning|book|books|reading|author|literacy|history`),
	group("networking", `networking|meetup|mixer|professionals|career|founders`),
	group("family", `family|kids|children|toddler|toddlers|teen|teens|youth|storytime|all ages`),
	group("outdoor", `park|parks|outdoor|outdoors|garden|nature|beach|waterfront|picnic|birding|kayak|kayaking|trail`),
	group("nightlife", `nightlife|party|club|rooftop|lounge|late night|bar crawl|rave`),
	group("wellness", `wellness|meditation|mindfulness|health|healing|spa|tai chi|breathwork|sound bath`),
	group("special", `festival|parade|celebration|holiday|annual|anniversary|gala|fireworks|ceremony|block party`),
}

// Categorize scans the texts against every category group. It returns the
// flat sorted vocabulary of matched tokens plus the per-group breakdown;
// groups that matched nothing are omitted.
func Categorize(texts []string) ([]string, map[string][]string) {
	lowered := strings.ToLower(strings.Join(texts, "\n"))

	grouped := make(map[string][]string, len(categoryGroups))
	flat := make(map[string]struct{})
	for _, g := range categoryGroups {
		matches := g.pattern.FindAllString(lowered, -1)
		if len(matches) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(matches))
		for _, m := range matches {
			set[m] = struct{}{}
			flat[m] = struct{}{}
		}
		grouped[g.name] = sortedSet(set)
	}
	return sortedSet(flat), grouped
}

// GroupNames lists every category group in declaration order.
func GroupNames() []string {
	names := make([]string, len(categoryGroups))
	for i, g := range categoryGroups {
		names[i] = g.name
	}
	return names
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
