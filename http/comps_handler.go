package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/geo"
	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/internal/params"
	"github.com/yourorg/cma-api/internal/resolve"
	"github.com/yourorg/cma-api/paragon"
)

type CompsDeps struct {
	Paragon   *paragon.Client
	Bus       events.Publisher
	Sanitizer *paragon.PriceSanitizer
}

func RegisterComps(r chi.Router, d CompsDeps) {
	// Legacy closed-comps search by city and sqft window. Returns the bare
	// comp array, which is the shape its last remaining consumer expects.
	r.Get("/api/comps", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		city := q.Get("city")
		sqftMin := params.ParseNumber(q.Get("sqft_min"))
		sqftMax := params.ParseNumber(q.Get("sqft_max"))
		if city == "" || sqftMin == nil || sqftMax == nil {
			fail(w, req, http.StatusBadRequest, "missing_parameters", "city, sqft_min and sqft_max are required")
			return
		}

		query := paragon.Query{
			Filter: odata.And(
				odata.Eq("StandardStatus", "Closed"),
				odata.Eq("City", city),
				odata.Ge("LivingArea", *sqftMin),
				odata.Le("LivingArea", *sqftMax),
			),
			Top: 50,
		}
		env, err := d.Paragon.Search(req.Context(), query)
		if err != nil {
			failUpstream(w, req, err)
			return
		}
		publishSnapshot(req.Context(), d.Bus, "comps", city, env)

		render.JSON(w, req, paragon.NormalizeAll(env.Value, paragon.NormalizeOptions{Sanitizer: d.Sanitizer}))
	})

	// Comps anchored on a free-text address: resolve the subject, fetch
	// closed sales around its size, then expand the radius until enough
	// comparables fall inside or the ceiling is hit.
	r.Get("/api/comps-from-address", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		address := q.Get("address")
		if address == "" {
			fail(w, req, http.StatusBadRequest, "missing_parameters", "address is required")
			return
		}
		city := q.Get("city")
		monthsBack := intParam(q.Get("months_back"), 12)
		sqftDelta := intParam(q.Get("sqft_delta"), 1200)
		minResults := intParam(q.Get("min_results"), 5)
		if minResults < 1 {
			minResults = 1
		}
		initialRadius := 2.0
		if n := params.ParseNumber(q.Get("radius_miles")); n != nil && *n > 0 {
			initialRadius = *n
		}

		resolver := &resolve.Resolver{Client: d.Paragon}
		subject, ok := resolver.Resolve(req.Context(), address, city)
		if !ok {
			fail(w, req, http.StatusNotFound, "subject_not_found",
				fmt.Sprintf("no property found matching %q; try the full street suffix (Street, Avenue) or include the city", address))
			return
		}

		filters := []odata.Expr{paragon.ClosedWithinExpr(monthsBack, time.Now())}
		if subject.City != "" {
			filters = append(filters, odata.EqFold("City", subject.City))
		}
		if subject.Sqft > 0 {
			filters = append(filters,
				odata.Ge("AboveGradeFinishedArea", float64(subject.Sqft-sqftDelta)),
				odata.Le("AboveGradeFinishedArea", float64(subject.Sqft+sqftDelta)),
			)
		}
		query := paragon.Query{
			Filter:  odata.And(filters...),
			OrderBy: "CloseDate desc",
			Top:     200,
		}
		env, err := d.Paragon.Search(req.Context(), query)
		if err != nil {
			failUpstream(w, req, err)
			return
		}
		publishSnapshot(req.Context(), d.Bus, "comps-from-address", subject.Address, env)

		ref := geo.Point{Lat: subject.Latitude, Lon: subject.Longitude}
		candidates := paragon.NormalizeAll(env.Value, paragon.NormalizeOptions{
			Sanitizer: d.Sanitizer,
			Reference: &ref,
		})

		var comps []paragon.NormalizedProperty
		finalRadius := initialRadius
		if ref.Zero() {
			// No subject coordinates: geo filtering is impossible, return the
			// head of the candidate list in upstream order.
			if len(candidates) > geo.NoCoordsCap {
				candidates = candidates[:geo.NoCoordsCap]
			}
			comps = candidates
			finalRadius = 0
		} else {
			cands := make([]geo.Candidate, len(candidates))
			for i, p := range candidates {
				cands[i] = geo.Candidate{
					Index:     i,
					Point:     geo.Point{Lat: p.Latitude, Lon: p.Longitude},
					HasCoords: p.Latitude != 0 || p.Longitude != 0,
				}
			}
			ranked, radius := geo.Expand(ref, cands, initialRadius, minResults)
			finalRadius = radius
			comps = make([]paragon.NormalizedProperty, 0, len(ranked))
			for _, rk := range ranked {
				comps = append(comps, candidates[rk.Index])
			}
		}

		render.JSON(w, req, map[string]any{
			"success": true,
			"subject": subject,
			"params": map[string]any{
				"radius_miles":   finalRadius,
				"initial_radius": initialRadius,
				"sqft_delta":     sqftDelta,
				"months_back":    monthsBack,
				"min_results":    minResults,
			},
			"comps": comps,
		})
	})
}
