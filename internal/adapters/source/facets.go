package source

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goodrec/nyc-ingest/pkg/logger"
)

const facetRowLimit = 1000

// FacetVocabularies are the upstream filter vocabularies surfaced to
// the browse UI: what can be picked, straight from the origin data.
type FacetVocabularies struct {
	EventTypes      []string `json:"eventTypes"`
	Boroughs        []string `json:"boroughs"`
	Agencies        []string `json:"agencies"`
	ClosureTypes    []string `json:"closureTypes"`
	CommunityBoards []string `json:"communityBoards"`
	PolicePrecincts []string `json:"policePrecincts"`
	ParkCategories  []string `json:"parkCategories"`
	ParkNames       []string `json:"parkNames"`
}

// facetRow carries the permitted-events columns the vocabularies come
// from, including the street-closure fields absent from the ingest row.
type facetRow struct {
	EventType      string `json:"event_type"`
	EventBorough   string `json:"event_borough"`
	EventAgency    string `json:"event_agency"`
	ClosureType    string `json:"street_closure_type"`
	CommunityBoard string `json:"community_board"`
	PolicePrecinct string `json:"police_precinct"`
}

// Facets pulls filter vocabularies from the permitted-events dataset
// and the parks feed.
type Facets struct {
	permittedURL string
	parksURL     string
	client       *http.Client
	log          logger.Logger
}

// NewFacets builds the facet vocabulary fetcher.
func NewFacets(permittedURL, parksURL string, opts ...Option) *Facets {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := o.client
	if client == nil {
		client = newHTTPClient(requestTimeout)
	}
	return &Facets{
		permittedURL: permittedURL,
		parksURL:     parksURL,
		client:       client,
		log:          logger.Get().Named("source.facets"),
	}
}

// Fetch collects the vocabularies from both origins. Every list is
// sorted unique; community boards and police precincts sort their
// numeric entries numerically.
func (f *Facets) Fetch(ctx context.Context) (FacetVocabularies, error) {
	var out FacetVocabularies

	q := url.Values{}
	q.Set("$limit", strconv.Itoa(facetRowLimit))

	var rows []facetRow
	if err := getJSON(ctx, f.client, f.permittedURL+"?"+q.Encode(), &rows); err != nil {
		return out, err
	}

	types := make(map[string]struct{})
	boroughs := make(map[string]struct{})
	agencies := make(map[string]struct{})
	closures := make(map[string]struct{})
	boards := make(map[string]struct{})
	precincts := make(map[string]struct{})
	for _, row := range rows {
		collect(types, row.EventType)
		collect(boroughs, row.EventBorough)
		collect(agencies, row.EventAgency)
		collect(closures, row.ClosureType)
		collect(boards, row.CommunityBoard)
		collect(precincts, row.PolicePrecinct)
	}

	var parks []parksRow
	if err := getJSON(ctx, f.client, f.parksURL, &parks); err != nil {
		return out, err
	}

	categories := make(map[string]struct{})
	names := make(map[string]struct{})
	for _, row := range parks {
		for _, cat := range strings.Split(row.Categories, ",") {
			collect(categories, cat)
		}
		collect(names, row.Location)
	}

	out.EventTypes = sortedKeys(types)
	out.Boroughs = sortedKeys(boroughs)
	out.Agencies = sortedKeys(agencies)
	out.ClosureTypes = sortedKeys(closures)
	out.CommunityBoards = sortedKeys(boards)
	out.PolicePrecincts = sortedKeys(precincts)
	sortNumericAware(out.CommunityBoards)
	sortNumericAware(out.PolicePrecincts)
	out.ParkCategories = sortedKeys(categories)
	out.ParkNames = sortedKeys(names)

	f.log.Info(ctx, "fetched facet vocabularies",
		logger.Int("event_types", len(out.EventTypes)),
		logger.Int("park_categories", len(out.ParkCategories)))
	return out, nil
}

func collect(set map[string]struct{}, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	set[v] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// sortNumericAware orders numeric entries by value ahead of the
// remaining lexical entries, so community board "2" sorts before "10".
func sortNumericAware(vals []string) {
	sort.Slice(vals, func(i, j int) bool {
		a, aerr := strconv.Atoi(strings.TrimSpace(vals[i]))
		b, berr := strconv.Atoi(strings.TrimSpace(vals[j]))
		switch {
		case aerr == nil && berr == nil:
			if a != b {
				return a < b
			}
			return vals[i] < vals[j]
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return vals[i] < vals[j]
		}
	})
}
