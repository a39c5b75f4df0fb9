package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/cache"
	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/paragon"
)

type AgentsDeps struct {
	Paragon  *paragon.Client
	Cache    cache.Cache
	CacheTTL time.Duration
}

type agentSuggestion struct {
	Name  string `json:"name"`
	MLSID string `json:"mlsId"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}

// RegisterAgents serves agent-name autocomplete. The same prefixes get typed
// over and over, so responses are cached.
func RegisterAgents(r chi.Router, d AgentsDeps) {
	r.Get("/api/agents/suggestions", func(w http.ResponseWriter, req *http.Request) {
		query := req.URL.Query()
		q := strings.TrimSpace(query.Get("q"))
		agentType := query.Get("type")
		if agentType != "buyer" {
			agentType = "listing"
		}
		limit := intParam(query.Get("limit"), 20)

		if len(q) < 2 {
			render.JSON(w, req, map[string]any{
				"success":     true,
				"suggestions": []agentSuggestion{},
				"message":     "query must be at least 2 characters",
			})
			return
		}

		cacheKey := fmt.Sprintf("agents:%s:%s:%d", agentType, strings.ToLower(q), limit)
		if d.Cache != nil {
			if cached, ok := d.Cache.Get(req.Context(), cacheKey); ok {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				_, _ = w.Write([]byte(cached))
				return
			}
		}

		nameField, mlsField, phoneField := "ListAgentFullName", "ListAgentMlsId", "ListAgentPreferredPhone"
		if agentType == "buyer" {
			nameField, mlsField, phoneField = "BuyerAgentFullName", "BuyerAgentMlsId", "BuyerAgentPreferredPhone"
		}

		// Over-fetch: many listings share an agent, so the distinct set is
		// much smaller than the page.
		env, err := d.Paragon.Search(req.Context(), paragon.Query{
			Filter: odata.Contains(nameField, q),
			Select: []string{nameField, mlsField, phoneField},
			Top:    limit * 3,
		})
		if err != nil {
			failUpstream(w, req, err)
			return
		}

		seen := map[string]bool{}
		var suggestions []agentSuggestion
		for _, p := range env.Value {
			name, mlsID, phone := agentFields(p, agentType)
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name) + "_" + mlsID
			if seen[key] {
				continue
			}
			seen[key] = true
			suggestions = append(suggestions, agentSuggestion{Name: name, MLSID: mlsID, Phone: phone, Type: agentType})
		}
		sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Name < suggestions[j].Name })
		if len(suggestions) > limit {
			suggestions = suggestions[:limit]
		}
		if suggestions == nil {
			suggestions = []agentSuggestion{}
		}

		body := map[string]any{
			"success":     true,
			"count":       len(suggestions),
			"suggestions": suggestions,
			"query":       q,
			"type":        agentType,
		}
		if d.Cache != nil {
			if raw, err := json.Marshal(body); err == nil {
				d.Cache.Set(req.Context(), cacheKey, string(raw), d.CacheTTL)
			}
		}
		render.JSON(w, req, body)
	})
}

func agentFields(p paragon.RawProperty, agentType string) (name, mlsID, phone string) {
	if agentType == "buyer" {
		return p.BuyerAgentFullName, string(p.BuyerAgentMlsId), p.BuyerAgentPreferredPhone
	}
	return p.ListAgentFullName, string(p.ListAgentMlsId), p.ListAgentPreferredPhone
}
