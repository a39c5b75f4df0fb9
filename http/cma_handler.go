package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/geo"
	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/internal/params"
	"github.com/yourorg/cma-api/paragon"
)

const cmaLegTop = 150

type CMADeps struct {
	Paragon   *paragon.Client
	Bus       events.Publisher
	Sanitizer *paragon.PriceSanitizer
}

// RegisterCMA serves the comparables endpoint: one shared filter set is run
// as two concurrent legs, active listings and sales closed inside the
// trailing window. Either leg failing fails the request; a silently empty
// closed leg would misrepresent the market.
func RegisterCMA(r chi.Router, d CMADeps) {
	r.Get("/api/cma-comparables", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		now := time.Now()

		monthsBack := intParam(q.Get("months_back"), 12)
		sqftDelta := intParam(q.Get("sqft_delta"), 1200)
		radiusMiles := 5.0
		if n := params.ParseNumber(q.Get("radius_miles")); n != nil && *n > 0 {
			radiusMiles = *n
		}

		var base []odata.Expr

		if v := q.Get("city"); v != "" {
			base = append(base, odata.EqFold("City", v))
		}
		if sqft := params.ParseNumber(q.Get("sqft")); sqft != nil {
			base = append(base,
				odata.Ge("AboveGradeFinishedArea", *sqft-float64(sqftDelta)),
				odata.Le("AboveGradeFinishedArea", *sqft+float64(sqftDelta)),
			)
		}
		if v := q.Get("residential_area"); v != "" {
			base = append(base, paragon.AreasExpr(v))
			if q.Get("same_subdivision") == "true" {
				base = append(base, odata.EqFold("SubdivisionName", v))
			}
		}
		if v := q.Get("price_range"); v != "" && v != "any" {
			base = append(base, paragon.PriceBucketExpr(v))
		}
		base = append(base, paragon.PriceBoundsExpr(
			params.ParseNumber(q.Get("min_price")),
			params.ParseNumber(q.Get("max_price")),
		))
		if v := q.Get("lot_size"); v != "" && v != "any" {
			base = append(base, paragon.LotSizeExpr(v))
		}
		if q.Get("waterfront") == "true" {
			base = append(base, odata.Eq("WaterfrontYN", true))
		}
		if q.Get("new_construction") == "true" {
			base = append(base, odata.Eq("NewConstructionYN", true))
		}
		if v := q.Get("property_type"); v != "" && v != "All" {
			base = append(base, odata.Eq("PropertyType", v))
		}

		activeQuery := paragon.Query{
			Filter:  odata.And(append(base[:len(base):len(base)], odata.Eq("StandardStatus", "Active"))...),
			OrderBy: "ListPrice asc",
			Top:     cmaLegTop,
		}
		closedQuery := paragon.Query{
			Filter:  odata.And(append(base[:len(base):len(base)], paragon.ClosedWithinExpr(monthsBack, now))...),
			OrderBy: "CloseDate desc",
			Top:     cmaLegTop,
		}

		activeEnv, closedEnv, err := d.Paragon.SearchActiveAndClosed(req.Context(), activeQuery, closedQuery)
		if err != nil {
			failUpstream(w, req, err)
			return
		}
		publishSnapshot(req.Context(), d.Bus, "cma-comparables/active", "", activeEnv)
		publishSnapshot(req.Context(), d.Bus, "cma-comparables/closed", "", closedEnv)

		opts := paragon.NormalizeOptions{Sanitizer: d.Sanitizer, Now: now}
		lat := params.ParseNumber(q.Get("latitude"))
		lon := params.ParseNumber(q.Get("longitude"))
		haveRef := lat != nil && lon != nil
		if haveRef {
			opts.Reference = &geo.Point{Lat: *lat, Lon: *lon}
		}

		active := paragon.NormalizeAll(activeEnv.Value, opts)
		closed := paragon.NormalizeAll(closedEnv.Value, opts)

		if haveRef {
			active = withinRadius(active, radiusMiles)
			closed = withinRadius(closed, radiusMiles)
		}

		combined := make([]paragon.NormalizedProperty, 0, len(active)+len(closed))
		combined = append(combined, active...)
		combined = append(combined, closed...)

		dateFilter := now.AddDate(0, -monthsBack, 0).Format("2006-01-02")
		render.JSON(w, req, map[string]any{
			"success":    true,
			"query":      q,
			"dateFilter": dateFilter,
			"counts": map[string]int{
				"active": len(active),
				"closed": len(closed),
				"total":  len(combined),
			},
			"active":     active,
			"closed":     closed,
			"combined":   combined,
			"properties": combined,
			"meta": map[string]any{
				"activeQuery": paragon.RedactURL(d.Paragon.BuildURL(activeQuery)),
				"closedQuery": paragon.RedactURL(d.Paragon.BuildURL(closedQuery)),
				"searchCriteria": map[string]any{
					"city":         q.Get("city"),
					"sqft":         q.Get("sqft"),
					"radius_miles": radiusMiles,
					"sqft_delta":   sqftDelta,
					"months_back":  monthsBack,
					"dateFilter":   dateFilter,
				},
			},
		})
	})
}

// withinRadius keeps records inside the radius and records with unknown
// distance. Dropping unlocated listings here would hide real comparables, so
// only a known out-of-radius distance excludes.
func withinRadius(props []paragon.NormalizedProperty, radiusMiles float64) []paragon.NormalizedProperty {
	out := props[:0]
	for _, p := range props {
		if p.DistanceMiles == nil || *p.DistanceMiles <= radiusMiles {
			out = append(out, p)
		}
	}
	return out
}
