package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/cache"
	"github.com/yourorg/cma-api/internal/lookup"
	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/paragon"
)

type LookupDeps struct {
	Paragon  *paragon.Client
	Tables   *lookup.Tables
	Cache    cache.Cache
	CacheTTL time.Duration
}

type community struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RegisterLookup serves community suggestions and name resolution. Live data
// comes from upstream subdivision names; the embedded tables cover school
// districts and known aliases.
func RegisterLookup(r chi.Router, d LookupDeps) {
	r.Get("/api/communities", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		// District and city lookups answer from the embedded tables without
		// touching upstream.
		if district := q.Get("district"); district != "" {
			names := d.Tables.CommunitiesForDistrict(district)
			if names == nil {
				fail(w, req, http.StatusNotFound, "district_not_found", "no district named "+district)
				return
			}
			render.JSON(w, req, map[string]any{
				"success":     true,
				"district":    district,
				"communities": names,
			})
			return
		}
		if city := q.Get("city"); city != "" && q.Get("q") == "" {
			render.JSON(w, req, map[string]any{
				"success":   true,
				"city":      city,
				"districts": d.Tables.DistrictsForCity(city),
			})
			return
		}

		term := strings.TrimSpace(q.Get("q"))
		if len(term) < 2 {
			fail(w, req, http.StatusBadRequest, "query_too_short", "q must be at least 2 characters")
			return
		}

		cacheKey := "communities:" + strings.ToLower(term)
		if d.Cache != nil {
			if cached, ok := d.Cache.Get(req.Context(), cacheKey); ok {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				_, _ = w.Write([]byte(cached))
				return
			}
		}

		communities, err := d.fetchCommunities(req.Context(), term)
		if err != nil {
			failUpstream(w, req, err)
			return
		}

		body := map[string]any{
			"success":     true,
			"count":       len(communities),
			"communities": communities,
			"query":       term,
		}
		if d.Cache != nil {
			if raw, err := json.Marshal(body); err == nil {
				d.Cache.Set(req.Context(), cacheKey, string(raw), d.CacheTTL)
			}
		}
		render.JSON(w, req, body)
	})

	r.Get("/api/resolve-community-name", func(w http.ResponseWriter, req *http.Request) {
		name := strings.TrimSpace(req.URL.Query().Get("name"))
		if name == "" {
			fail(w, req, http.StatusBadRequest, "missing_parameters", "name is required")
			return
		}

		aliasResolved := d.Tables.ResolveCommunityAlias(name)

		// Probe upstream with the first word; the alias table only knows the
		// names someone already reported.
		firstWord, _, _ := strings.Cut(name, " ")
		matches, err := d.fetchCommunities(req.Context(), firstWord)
		if err != nil {
			failUpstream(w, req, err)
			return
		}

		var exact string
		var partial []string
		lowerName := strings.ToLower(name)
		for _, c := range matches {
			lowerC := strings.ToLower(c.Name)
			if lowerC == lowerName {
				exact = c.Name
			}
			if strings.Contains(lowerC, lowerName) || strings.Contains(lowerName, lowerC) {
				partial = append(partial, c.Name)
			}
		}
		if partial == nil {
			partial = []string{}
		}

		recommended := exact
		if recommended == "" && aliasResolved != name {
			recommended = aliasResolved
		}
		if recommended == "" && len(partial) > 0 {
			recommended = partial[0]
		}

		render.JSON(w, req, map[string]any{
			"success":        true,
			"input":          name,
			"aliasResolved":  aliasResolved,
			"exactMatch":     orNil(exact),
			"partialMatches": partial,
			"recommended":    orNil(recommended),
		})
	})
}

// fetchCommunities pulls subdivision names matching term and folds duplicates
// into per-name listing counts, most common first.
func (d LookupDeps) fetchCommunities(ctx context.Context, term string) ([]community, error) {
	env, err := d.Paragon.Search(ctx, paragon.Query{
		Filter: odata.Contains("SubdivisionName", term),
		Select: []string{"SubdivisionName"},
		Top:    500,
	})
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, p := range env.Value {
		name := strings.TrimSpace(p.SubdivisionName)
		if name != "" {
			counts[name]++
		}
	}
	out := make([]community, 0, len(counts))
	for name, n := range counts {
		out = append(out, community{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
