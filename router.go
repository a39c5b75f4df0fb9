package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/cma-api/http"
	"github.com/yourorg/cma-api/internal/cache"
	"github.com/yourorg/cma-api/internal/config"
	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/lookup"
	"github.com/yourorg/cma-api/internal/teams"
	"github.com/yourorg/cma-api/paragon"
)

type RouterDeps struct {
	Cfg       config.Config
	Paragon   *paragon.Client
	Cache     cache.Cache
	Teams     teams.Repository
	Tables    *lookup.Tables
	Bus       events.Publisher
	Sanitizer *paragon.PriceSanitizer
	Started   time.Time
}

func BuildRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(100, 1*time.Minute)) // protect upstream quota
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"message":"cma-api is running","status":"healthy"}`))
	})

	httpapi.RegisterStatus(r, httpapi.StatusDeps{Cfg: d.Cfg, Started: d.Started})
	httpapi.RegisterSearch(r, httpapi.SearchDeps{Paragon: d.Paragon, Bus: d.Bus, Sanitizer: d.Sanitizer})
	httpapi.RegisterAdvanced(r, httpapi.AdvancedDeps{Paragon: d.Paragon, Bus: d.Bus, Sanitizer: d.Sanitizer})
	httpapi.RegisterWildcard(r, httpapi.WildcardDeps{Paragon: d.Paragon, Bus: d.Bus, Sanitizer: d.Sanitizer})
	httpapi.RegisterCMA(r, httpapi.CMADeps{Paragon: d.Paragon, Bus: d.Bus, Sanitizer: d.Sanitizer})
	httpapi.RegisterComps(r, httpapi.CompsDeps{Paragon: d.Paragon, Bus: d.Bus, Sanitizer: d.Sanitizer})
	httpapi.RegisterAgents(r, httpapi.AgentsDeps{Paragon: d.Paragon, Cache: d.Cache, CacheTTL: d.Cfg.CacheTTL})
	httpapi.RegisterLookup(r, httpapi.LookupDeps{Paragon: d.Paragon, Tables: d.Tables, Cache: d.Cache, CacheTTL: d.Cfg.CacheTTL})
	httpapi.RegisterTeams(r, httpapi.TeamsDeps{Repo: d.Teams, Paragon: d.Paragon, Bus: d.Bus, Sanitizer: d.Sanitizer})

	return r
}
