package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/internal/params"
	"github.com/yourorg/cma-api/paragon"
)

type SearchDeps struct {
	Paragon   *paragon.Client
	Bus       events.Publisher
	Sanitizer *paragon.PriceSanitizer
}

// RegisterSearch serves the comprehensive search dialect: direct MLS
// lookups, location, shorthand price ranges, bed/bath bounds, and the
// "For Sale"/"Sold" status pair. With no status given all statuses come back,
// so an MLS lookup can find expired and canceled listings too.
func RegisterSearch(r chi.Router, d SearchDeps) {
	r.Get("/api/property-search", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		var filters []odata.Expr

		// Direct lookups search all statuses.
		if v := q.Get("mls_number"); v != "" {
			filters = append(filters, odata.Eq("ListingId", v))
		}
		if v := q.Get("listing_id"); v != "" {
			filters = append(filters, odata.Eq("ListingId", v))
		}
		if v := q.Get("id"); v != "" {
			filters = append(filters, odata.Eq("ListingKey", v))
		}

		if v := q.Get("city"); v != "" {
			filters = append(filters, odata.EqFold("City", v))
		}
		if v := q.Get("zip_code"); v != "" {
			filters = append(filters, odata.Eq("PostalCode", v))
		}

		// Price legs are OR-combined into one group: at filter time the status
		// is ambiguous, so either list price or close price may satisfy a bound.
		var priceLegs []odata.Expr
		if v := q.Get("price_range"); v != "" {
			priceLegs = append(priceLegs, paragon.PriceShorthandExpr(v))
		}
		minPrice := params.ParseNumber(q.Get("min_price"))
		maxPrice := params.ParseNumber(q.Get("max_price"))
		priceLegs = append(priceLegs, paragon.PriceBoundsExpr(minPrice, maxPrice))
		filters = append(filters, odata.Or(priceLegs...))

		if v := q.Get("property_type"); v != "" && v != "All" {
			filters = append(filters, odata.Eq("PropertyType", v))
		}

		if n := params.ParseNumber(q.Get("min_sqft")); n != nil {
			filters = append(filters, odata.Ge("AboveGradeFinishedArea", *n))
		}
		if n := params.ParseNumber(q.Get("max_sqft")); n != nil {
			filters = append(filters, odata.Le("AboveGradeFinishedArea", *n))
		}

		if v := q.Get("beds"); v != "" {
			filters = append(filters, paragon.BedsShorthandExpr(v))
		}
		if n := params.ParseNumber(q.Get("min_beds")); n != nil {
			filters = append(filters, odata.Ge("BedroomsTotal", *n))
		}
		if n := params.ParseNumber(q.Get("max_beds")); n != nil {
			filters = append(filters, odata.Le("BedroomsTotal", *n))
		}
		if n := params.ParseNumber(q.Get("min_baths")); n != nil {
			filters = append(filters, odata.Ge("BathroomsTotalInteger", *n))
		}
		if n := params.ParseNumber(q.Get("max_baths")); n != nil {
			filters = append(filters, odata.Le("BathroomsTotalInteger", *n))
		}

		status := q.Get("status")
		switch status {
		case "For Sale":
			filters = append(filters, odata.Eq("StandardStatus", "Active"))
		case "Sold":
			filters = append(filters, paragon.ClosedWithinExpr(12, time.Now()))
		}

		if n := params.ParseNumber(q.Get("min_year_built")); n != nil {
			filters = append(filters, odata.Ge("YearBuilt", *n))
		}
		if n := params.ParseNumber(q.Get("max_year_built")); n != nil {
			filters = append(filters, odata.Le("YearBuilt", *n))
		}
		if n := params.ParseNumber(q.Get("garage_spaces")); n != nil {
			filters = append(filters, odata.Ge("GarageSpaces", *n))
		}
		if q.Get("waterfront") == "true" {
			filters = append(filters, odata.Eq("WaterfrontYN", true))
		}
		if q.Get("new_construction") == "true" {
			filters = append(filters, odata.Eq("NewConstructionYN", true))
		}

		query := paragon.Query{
			Filter:  odata.And(filters...),
			OrderBy: searchOrderBy(q.Get("sort_by"), q.Get("sort_order"), status),
			Top:     intParam(q.Get("limit"), 50),
			Skip:    intParam(q.Get("offset"), 0),
		}

		env, err := d.Paragon.Search(req.Context(), query)
		if err != nil {
			failUpstream(w, req, err)
			return
		}
		publishSnapshot(req.Context(), d.Bus, "property-search", q.Get("mls_number"), env)

		properties := paragon.NormalizeAll(env.Value, paragon.NormalizeOptions{Sanitizer: d.Sanitizer})

		total := len(properties)
		if env.Count != nil {
			total = *env.Count
		}
		render.JSON(w, req, map[string]any{
			"success":        true,
			"count":          len(properties),
			"totalAvailable": total,
			"properties":     properties,
			"searchCriteria": q,
			"apiUrl":         paragon.RedactURL(d.Paragon.BuildURL(query)),
		})
	})
}

// searchOrderBy maps the friendly sort names onto upstream fields. "date"
// sorts by close date for sold searches and on-market date otherwise.
func searchOrderBy(sortBy, sortOrder, status string) string {
	order := "asc"
	if sortOrder == "desc" {
		order = "desc"
	}
	field := "ListPrice"
	switch sortBy {
	case "", "price":
	case "sqft":
		field = "AboveGradeFinishedArea"
	case "beds":
		field = "BedroomsTotal"
	case "date", "newest":
		if status == "Sold" {
			field = "CloseDate"
		} else {
			field = "OnMarketDate"
		}
	}
	return field + " " + order
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
