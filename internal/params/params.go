// Package params normalizes the advanced property-search query dialect.
// Invalid input never produces an error: each bad value degrades to a usable
// default and the parameter name is reported in Ignored so the caller can see
// what was dropped.
package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500

	DefaultSortBy    = "ModificationTimestamp"
	DefaultSortOrder = "desc"

	MinYearBuilt = 1800
)

var boolTrue = map[string]bool{"true": true, "1": true, "yes": true, "y": true}

var statusAliases = map[string]string{
	"active":    "Active",
	"pending":   "Pending",
	"closed":    "Closed",
	"sold":      "Closed",
	"canceled":  "Canceled",
	"cancelled": "Canceled",
	"expired":   "Expired",
}

var sortFields = map[string]bool{
	"ListPrice":             true,
	"ClosePrice":            true,
	"DaysOnMarket":          true,
	"LivingArea":            true,
	"YearBuilt":             true,
	"ModificationTimestamp": true,
}

// Applied holds every accepted filter with its normalized value. Pointer
// fields distinguish "absent" from a zero value.
type Applied struct {
	MinSqft         *float64 `json:"min_sqft,omitempty"`
	MaxSqft         *float64 `json:"max_sqft,omitempty"`
	MinYearBuilt    *float64 `json:"min_year_built,omitempty"`
	MaxYearBuilt    *float64 `json:"max_year_built,omitempty"`
	Statuses        []string `json:"statuses,omitempty"`
	Waterfront      *bool    `json:"waterfront,omitempty"`
	NewConstruction *bool    `json:"new_construction,omitempty"`
	PhotoOnly       *bool    `json:"photo_only,omitempty"`
	MinGarage       *float64 `json:"min_garage,omitempty"`
	SortBy          string   `json:"sort_by"`
	SortOrder       string   `json:"sort_order"`
	Limit           int      `json:"limit"`
	City            string   `json:"city,omitempty"`
	Subdivision     string   `json:"subdivision,omitempty"`
	PropertyType    string   `json:"property_type,omitempty"`
}

type Result struct {
	Applied Applied
	Ignored []string
}

// ParseBool accepts the loose truthy set {"true","1","yes","y"} regardless of
// case. Any other non-empty string is false. nil means the parameter was
// absent, which is distinct from an explicit false.
func ParseBool(vals []string) *bool {
	if len(vals) == 0 {
		return nil
	}
	b := boolTrue[strings.ToLower(vals[0])]
	return &b
}

// ParseNumber returns nil for empty input and for anything that does not
// parse to a finite float.
func ParseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

func clamp(n *float64, min, max float64) *float64 {
	if n == nil {
		return nil
	}
	v := math.Min(math.Max(*n, min), max)
	return &v
}

// SplitStatuses accepts both a comma-separated value and repeated parameters.
func SplitStatuses(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// NormalizeStatuses canonicalizes each token through the alias table and
// deduplicates preserving first-seen order. Unknown tokens pass through
// untouched.
func NormalizeStatuses(list []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, raw := range list {
		norm := raw
		if canon, ok := statusAliases[strings.ToLower(raw)]; ok {
			norm = canon
		}
		if !seen[norm] {
			seen[norm] = true
			out = append(out, norm)
		}
	}
	return out
}

// Parse normalizes the full advanced-search dialect from raw query values.
func Parse(q url.Values) Result {
	return parseAt(q, time.Now())
}

func parseAt(q url.Values, now time.Time) Result {
	var res Result
	a := &res.Applied
	ignore := func(name string) { res.Ignored = append(res.Ignored, name) }

	currentYear := float64(now.Year())

	minSqft := ParseNumber(q.Get("min_sqft"))
	maxSqft := ParseNumber(q.Get("max_sqft"))
	minYear := clamp(ParseNumber(q.Get("min_year_built")), MinYearBuilt, currentYear)
	maxYear := clamp(ParseNumber(q.Get("max_year_built")), MinYearBuilt, currentYear)

	if minSqft != nil {
		a.MinSqft = minSqft
	}
	if maxSqft != nil {
		if minSqft == nil || *maxSqft >= *minSqft {
			a.MaxSqft = maxSqft
		} else {
			ignore("max_sqft")
		}
	}
	if minYear != nil {
		a.MinYearBuilt = minYear
	}
	if maxYear != nil {
		if minYear == nil || *maxYear >= *minYear {
			a.MaxYearBuilt = maxYear
		} else {
			ignore("max_year_built")
		}
	}

	if statuses := NormalizeStatuses(SplitStatuses(q["status"])); len(statuses) > 0 {
		a.Statuses = statuses
	}

	a.Waterfront = ParseBool(q["waterfront"])
	a.NewConstruction = ParseBool(q["new_construction"])
	a.PhotoOnly = ParseBool(q["photo_only"])

	if g := ParseNumber(q.Get("min_garage")); g != nil {
		if *g >= 0 {
			a.MinGarage = g
		} else {
			ignore("min_garage")
		}
	}

	a.SortBy = DefaultSortBy
	if s := q.Get("sort_by"); s != "" {
		if sortFields[s] {
			a.SortBy = s
		} else {
			ignore("sort_by")
		}
	}
	a.SortOrder = DefaultSortOrder
	if s := q.Get("sort_order"); s != "" {
		switch strings.ToLower(s) {
		case "asc", "desc":
			a.SortOrder = strings.ToLower(s)
		default:
			ignore("sort_order")
		}
	}

	a.Limit = DefaultLimit
	if l := ParseNumber(q.Get("limit")); l != nil {
		a.Limit = int(*l)
	}
	if a.Limit > MaxLimit {
		a.Limit = MaxLimit
	}
	if a.Limit < 1 {
		a.Limit = 1
	}

	if v := q.Get("city"); v != "" {
		a.City = v
	}
	if v := q.Get("subdivision"); v != "" {
		a.Subdivision = v
	}
	if v := q.Get("property_type"); v != "" {
		a.PropertyType = v
	}

	return res
}
