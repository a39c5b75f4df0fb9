package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/geo"
	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/internal/params"
	"github.com/yourorg/cma-api/paragon"
)

type WildcardDeps struct {
	Paragon   *paragon.Client
	Bus       events.Publisher
	Sanitizer *paragon.PriceSanitizer
}

// RegisterWildcard serves the contains-heavy dialect with agent filters.
// It deliberately applies no status filter: consumers want active, sold,
// expired and canceled records in one result set.
func RegisterWildcard(r chi.Router, d WildcardDeps) {
	r.Get("/api/property-search-new", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		var filters []odata.Expr

		if v := q.Get("mls_number"); v != "" {
			filters = append(filters, odata.Eq("ListingId", v))
		}
		if v := q.Get("listing_id"); v != "" {
			filters = append(filters, odata.Eq("ListingId", v))
		}

		if v := q.Get("buyer_agent_mls_id"); v != "" {
			filters = append(filters, odata.Eq("BuyerAgentMlsId", v))
		}
		if v := q.Get("buyer_agent_name"); v != "" {
			filters = append(filters, odata.Contains("BuyerAgentFullName", v))
		}
		if v := q.Get("listing_agent_mls_id"); v != "" {
			filters = append(filters, odata.Eq("ListAgentMlsId", v))
		}
		if v := q.Get("listing_agent_name"); v != "" {
			filters = append(filters, odata.Contains("ListAgentFullName", v))
		}

		city := q.Get("city")
		// When a city is given the address names a subject property, not a
		// search term, so the comparable search ignores it.
		if v := q.Get("address"); v != "" && city == "" {
			filters = append(filters, odata.Contains("UnparsedAddress", v))
		}
		if city != "" {
			filters = append(filters, odata.EqFold("City", city))
		}
		state := q.Get("state")
		if state == "" {
			state = "NE"
		}
		filters = append(filters, odata.EqFold("StateOrProvince", state))
		if v := q.Get("zip_code"); v != "" {
			filters = append(filters, odata.Eq("PostalCode", v))
		}
		if v := q.Get("subdivision"); v != "" {
			filters = append(filters, odata.Contains("SubdivisionName", v))
		}

		// Keep a fixed parameter order so the upstream URL is deterministic.
		numeric := []struct {
			param string
			field string
			op    func(string, any) odata.Expr
		}{
			{"min_sqft", "LivingArea", odata.Ge},
			{"max_sqft", "LivingArea", odata.Le},
			{"above_grade_sqft", "AboveGradeFinishedArea", odata.Eq},
			{"basement_sqft", "BelowGradeFinishedArea", odata.Eq},
			{"total_sqft", "BuildingAreaTotal", odata.Eq},
			{"min_price", "ListPrice", odata.Ge},
			{"max_price", "ListPrice", odata.Le},
			{"min_year_built", "YearBuilt", odata.Ge},
			{"max_year_built", "YearBuilt", odata.Le},
			{"bedrooms", "BedroomsTotal", odata.Eq},
			{"min_bedrooms", "BedroomsTotal", odata.Ge},
			{"max_bedrooms", "BedroomsTotal", odata.Le},
			{"bathrooms", "BathroomsTotalInteger", odata.Eq},
			{"min_bathrooms", "BathroomsTotalInteger", odata.Ge},
			{"max_bathrooms", "BathroomsTotalInteger", odata.Le},
			{"garage_spaces", "GarageSpaces", odata.Eq},
		}
		for _, f := range numeric {
			if n := params.ParseNumber(q.Get(f.param)); n != nil {
				filters = append(filters, f.op(f.field, *n))
			}
		}

		if b := params.ParseBool(q["waterfront"]); b != nil {
			filters = append(filters, odata.Eq("WaterfrontYN", *b))
		}
		if b := params.ParseBool(q["new_construction"]); b != nil {
			filters = append(filters, odata.Eq("NewConstructionYN", *b))
		}
		if v := q.Get("property_type"); v != "" {
			filters = append(filters, odata.Eq("PropertyType", v))
		}
		if v := q.Get("property_condition"); v != "" {
			filters = append(filters, odata.Contains("PropertyCondition", v))
		}

		sortBy := q.Get("sort_by")
		if sortBy == "" {
			sortBy = "ListPrice"
		}
		sortOrder := q.Get("sort_order")
		if sortOrder != "asc" {
			sortOrder = "desc"
		}

		query := paragon.Query{
			Filter:  odata.And(filters...),
			OrderBy: sortBy + " " + sortOrder,
			Top:     intParam(q.Get("limit"), 200),
			Skip:    intParam(q.Get("offset"), 0),
		}
		env, err := d.Paragon.Search(req.Context(), query)
		if err != nil {
			failUpstream(w, req, err)
			return
		}
		publishSnapshot(req.Context(), d.Bus, "property-search-new", "", env)

		opts := paragon.NormalizeOptions{Sanitizer: d.Sanitizer}
		lat := params.ParseNumber(q.Get("latitude"))
		lon := params.ParseNumber(q.Get("longitude"))
		if lat != nil && lon != nil {
			opts.Reference = &geo.Point{Lat: *lat, Lon: *lon}
		}
		properties := paragon.NormalizeAll(env.Value, opts)

		total := len(properties)
		if env.Count != nil {
			total = *env.Count
		}
		render.JSON(w, req, map[string]any{
			"success":        true,
			"count":          len(properties),
			"totalAvailable": total,
			"properties":     properties,
			"searchFilters":  q,
			"apiUrl":         paragon.RedactURL(d.Paragon.BuildURL(query)),
		})
	})
}
