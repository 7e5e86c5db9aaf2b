package normalize

import "strings"

// boroughs maps single-letter codes and lowercased full names to the
// canonical borough name. Unknown values pass through untouched.
var boroughs = map[string]string{
	"M":             "Manhattan",
	"B":             "Brooklyn",
	"Q":             "Queens",
	"X":             "Bronx",
	"R":             "Staten Island",
	"manhattan":     "Manhattan",
	"brooklyn":      "Brooklyn",
	"queens":        "Queens",
	"bronx":         "Bronx",
	"the bronx":     "Bronx",
	"staten island": "Staten Island",
}

// Borough normalizes a borough code or name. Unknown values are
// returned as-is so odd upstream data stays visible downstream.
func Borough(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if name, ok := boroughs[v]; ok {
		return name
	}
	if name, ok := boroughs[strings.ToLower(v)]; ok {
		return name
	}
	return v
}

// stateNoise are values suppressed at the borough slot; "Blue Room —
// East Village, NY" should read "Blue Room — East Village".
func stateNoise(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "ny", "new york":
		return true
	}
	return false
}

// ComposeLocation builds "<venue> — <neighborhood>, <borough>" with
// empty slots collapsed: a missing neighborhood promotes the borough,
// a missing venue leaves the area alone. Returns "" when every part is
// empty; callers supply their own fallback.
func ComposeLocation(venue, neighborhood, borough string) string {
	venue = strings.TrimSpace(venue)
	neighborhood = strings.TrimSpace(neighborhood)
	borough = strings.TrimSpace(borough)
	if stateNoise(borough) {
		borough = ""
	}

	var area []string
	if neighborhood != "" {
		area = append(area, neighborhood)
	}
	if borough != "" && !strings.EqualFold(borough, neighborhood) {
		area = append(area, borough)
	}

	switch {
	case venue != "" && len(area) > 0:
		return venue + " — " + strings.Join(area, ", ")
	case venue != "":
		return venue
	default:
		return strings.Join(area, ", ")
	}
}
