package paragon

import (
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/internal/params"
)

// Filter builders map normalized query parameters onto upstream field names.
// Each concern yields zero or one expression; concerns are AND-combined by
// the caller, while alternatives within a concern (list price vs close
// price) are OR-combined here.

type priceBucket struct {
	min float64 // 0 means unbounded below
	max float64 // 0 means unbounded above
}

var priceBuckets = map[string]priceBucket{
	"under_200k": {max: 200_000},
	"200k_300k":  {min: 200_000, max: 300_000},
	"300k_400k":  {min: 300_000, max: 400_000},
	"400k_500k":  {min: 400_000, max: 500_000},
	"500k_750k":  {min: 500_000, max: 750_000},
	"750k_1m":    {min: 750_000, max: 1_000_000},
	"over_1m":    {min: 1_000_000},
}

func bucketExpr(field string, b priceBucket) odata.Expr {
	switch {
	case b.min > 0 && b.max > 0:
		return odata.And(odata.Ge(field, b.min), odata.Lt(field, b.max))
	case b.min > 0:
		return odata.Ge(field, b.min)
	default:
		return odata.Lt(field, b.max)
	}
}

// PriceBucketExpr maps a named bucket ("under_200k", ..., "over_1m") onto a
// bound that may match either list price or close price. Unknown names yield
// nil.
func PriceBucketExpr(name string) odata.Expr {
	b, ok := priceBuckets[name]
	if !ok {
		return nil
	}
	return odata.Or(bucketExpr("ListPrice", b), bucketExpr("ClosePrice", b))
}

// parseK turns "500k" or "500" into a dollar amount. The k suffix multiplies
// by 1000.
func parseK(tok string) (float64, bool) {
	tok = strings.TrimSpace(tok)
	mult := 1.0
	if strings.HasSuffix(strings.ToLower(tok), "k") {
		mult = 1000
		tok = tok[:len(tok)-1]
	}
	n, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return n * mult, true
}

// PriceShorthandExpr parses the "500k+" and "300k-500k" dialects. A "+"
// suffix emits a lower bound; a hyphen emits a closed interval. Either list
// price or close price may satisfy the bound, since status is ambiguous at
// filter time.
func PriceShorthandExpr(shorthand string) odata.Expr {
	shorthand = strings.TrimSpace(shorthand)
	if strings.HasSuffix(shorthand, "+") {
		min, ok := parseK(strings.TrimSuffix(shorthand, "+"))
		if !ok {
			return nil
		}
		return odata.Or(odata.Ge("ListPrice", min), odata.Ge("ClosePrice", min))
	}
	if lo, hi, found := strings.Cut(shorthand, "-"); found {
		min, ok1 := parseK(lo)
		max, ok2 := parseK(hi)
		if !ok1 || !ok2 {
			return nil
		}
		return odata.Or(
			odata.And(odata.Ge("ListPrice", min), odata.Le("ListPrice", max)),
			odata.And(odata.Ge("ClosePrice", min), odata.Le("ClosePrice", max)),
		)
	}
	return nil
}

// PriceBoundsExpr handles explicit min/max price values, matching either
// list or close price.
func PriceBoundsExpr(min, max *float64) odata.Expr {
	switch {
	case min != nil && max != nil:
		return odata.Or(
			odata.And(odata.Ge("ListPrice", *min), odata.Le("ListPrice", *max)),
			odata.And(odata.Ge("ClosePrice", *min), odata.Le("ClosePrice", *max)),
		)
	case min != nil:
		return odata.Or(odata.Ge("ListPrice", *min), odata.Ge("ClosePrice", *min))
	case max != nil:
		return odata.Or(odata.Le("ListPrice", *max), odata.Le("ClosePrice", *max))
	default:
		return nil
	}
}

var lotBuckets = map[string]odata.Expr{
	"under_quarter": odata.Lt("LotSizeAcres", 0.25),
	"quarter_half":  odata.And(odata.Ge("LotSizeAcres", 0.25), odata.Lt("LotSizeAcres", 0.5)),
	"half_one":      odata.And(odata.Ge("LotSizeAcres", 0.5), odata.Lt("LotSizeAcres", 1.0)),
	"over_one":      odata.Ge("LotSizeAcres", 1.0),
}

// LotSizeExpr maps a named lot-size bucket; unknown names yield nil.
func LotSizeExpr(name string) odata.Expr {
	return lotBuckets[name]
}

// AreasExpr matches any of the comma-separated area names against either the
// subdivision or the address.
func AreasExpr(csv string) odata.Expr {
	var groups []odata.Expr
	for _, area := range strings.Split(csv, ",") {
		area = strings.TrimSpace(area)
		if area == "" {
			continue
		}
		groups = append(groups, odata.Or(
			odata.Contains("SubdivisionName", area),
			odata.Contains("UnparsedAddress", area),
		))
	}
	return odata.Or(groups...)
}

// ClosedWithinExpr restricts to closed sales in the trailing window.
func ClosedWithinExpr(monthsBack int, now time.Time) odata.Expr {
	cutoff := now.AddDate(0, -monthsBack, 0).Format("2006-01-02")
	return odata.And(
		odata.Eq("StandardStatus", "Closed"),
		odata.Raw("CloseDate", "ge", cutoff),
	)
}

// StatusListExpr ORs exact matches over a canonical status list.
func StatusListExpr(statuses []string) odata.Expr {
	var exprs []odata.Expr
	for _, s := range statuses {
		exprs = append(exprs, odata.Eq("StandardStatus", s))
	}
	return odata.Or(exprs...)
}

// BedsShorthandExpr parses "5" (exact) and "5+" (at least).
func BedsShorthandExpr(beds string) odata.Expr {
	beds = strings.TrimSpace(beds)
	if strings.HasSuffix(beds, "+") {
		if n, err := strconv.Atoi(strings.TrimSuffix(beds, "+")); err == nil {
			return odata.Ge("BedroomsTotal", n)
		}
		return nil
	}
	if n, err := strconv.Atoi(beds); err == nil {
		return odata.Eq("BedroomsTotal", n)
	}
	return nil
}

// AdvancedFilter compiles the accepted advanced-search parameters into one
// filter expression. Concerns are AND-combined; photo_only cannot be
// expressed upstream and is applied locally after the fetch.
func AdvancedFilter(a params.Applied) odata.Expr {
	var exprs []odata.Expr

	if a.City != "" {
		exprs = append(exprs, odata.EqFold("City", a.City))
	}
	if a.Subdivision != "" {
		exprs = append(exprs, odata.Contains("SubdivisionName", a.Subdivision))
	}
	if a.PropertyType != "" && a.PropertyType != "All" {
		exprs = append(exprs, odata.Eq("PropertyType", a.PropertyType))
	}
	if a.MinSqft != nil {
		exprs = append(exprs, odata.Ge("LivingArea", *a.MinSqft))
	}
	if a.MaxSqft != nil {
		exprs = append(exprs, odata.Le("LivingArea", *a.MaxSqft))
	}
	if a.MinYearBuilt != nil {
		exprs = append(exprs, odata.Ge("YearBuilt", *a.MinYearBuilt))
	}
	if a.MaxYearBuilt != nil {
		exprs = append(exprs, odata.Le("YearBuilt", *a.MaxYearBuilt))
	}
	if len(a.Statuses) > 0 {
		exprs = append(exprs, StatusListExpr(a.Statuses))
	}
	if a.Waterfront != nil {
		exprs = append(exprs, odata.Eq("WaterfrontYN", *a.Waterfront))
	}
	if a.NewConstruction != nil {
		exprs = append(exprs, odata.Eq("NewConstructionYN", *a.NewConstruction))
	}
	if a.MinGarage != nil {
		exprs = append(exprs, odata.Ge("GarageSpaces", *a.MinGarage))
	}

	return odata.And(exprs...)
}
