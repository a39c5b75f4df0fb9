package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/params"
	"github.com/yourorg/cma-api/paragon"
)

type AdvancedDeps struct {
	Paragon   *paragon.Client
	Bus       events.Publisher
	Sanitizer *paragon.PriceSanitizer
}

// RegisterAdvanced serves the strict advanced dialect. Malformed input never
// fails the request; it lands in meta.ignoredParams with a default applied.
func RegisterAdvanced(r chi.Router, d AdvancedDeps) {
	r.Get("/api/property-search-advanced", func(w http.ResponseWriter, req *http.Request) {
		started := time.Now()

		res := params.Parse(req.URL.Query())
		a := res.Applied

		query := paragon.Query{
			Filter:  paragon.AdvancedFilter(a),
			OrderBy: a.SortBy + " " + a.SortOrder,
			Top:     a.Limit,
		}

		env, err := d.Paragon.Search(req.Context(), query)
		if err != nil {
			failUpstream(w, req, err)
			return
		}
		publishSnapshot(req.Context(), d.Bus, "property-search-advanced", "", env)

		properties := paragon.NormalizeAll(env.Value, paragon.NormalizeOptions{Sanitizer: d.Sanitizer})

		// photo_only has no upstream expression; filter locally.
		if a.PhotoOnly != nil && *a.PhotoOnly {
			withPhotos := properties[:0]
			for _, p := range properties {
				if len(p.Images) > 0 {
					withPhotos = append(withPhotos, p)
				}
			}
			properties = withPhotos
		}

		ignored := res.Ignored
		if ignored == nil {
			ignored = []string{}
		}
		render.JSON(w, req, map[string]any{
			"success":    true,
			"count":      len(properties),
			"properties": properties,
			"meta": map[string]any{
				"appliedFilters": a,
				"ignoredParams":  ignored,
				"sort":           map[string]string{"by": a.SortBy, "order": a.SortOrder},
				"timingMs":       time.Since(started).Milliseconds(),
			},
		})
	})
}
