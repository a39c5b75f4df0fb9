package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/internal/teams"
	"github.com/yourorg/cma-api/paragon"
)

type TeamsDeps struct {
	Repo      teams.Repository
	Paragon   *paragon.Client
	Bus       events.Publisher
	Sanitizer *paragon.PriceSanitizer
}

type teamBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type memberBody struct {
	AgentName  string `json:"agent_name"`
	AgentMLSID string `json:"agent_mls_id"`
	AgentPhone string `json:"agent_phone"`
}

func RegisterTeams(r chi.Router, d TeamsDeps) {
	r.Get("/api/teams", func(w http.ResponseWriter, req *http.Request) {
		list := d.Repo.List()
		render.JSON(w, req, map[string]any{"success": true, "count": len(list), "teams": list})
	})

	r.Post("/api/teams", func(w http.ResponseWriter, req *http.Request) {
		var body teamBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			fail(w, req, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		name, desc := "", ""
		if body.Name != nil {
			name = *body.Name
		}
		if body.Description != nil {
			desc = *body.Description
		}
		team, err := d.Repo.Create(name, desc)
		if err != nil {
			failTeams(w, req, err)
			return
		}
		render.Status(req, http.StatusCreated)
		render.JSON(w, req, map[string]any{"success": true, "team": team})
	})

	r.Get("/api/teams/{teamId}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := teamID(w, req)
		if !ok {
			return
		}
		team, err := d.Repo.Get(id)
		if err != nil {
			failTeams(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{"success": true, "team": team})
	})

	r.Put("/api/teams/{teamId}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := teamID(w, req)
		if !ok {
			return
		}
		var body teamBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			fail(w, req, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		team, err := d.Repo.Update(id, body.Name, body.Description)
		if err != nil {
			failTeams(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{"success": true, "team": team})
	})

	r.Delete("/api/teams/{teamId}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := teamID(w, req)
		if !ok {
			return
		}
		team, err := d.Repo.Delete(id)
		if err != nil {
			failTeams(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{"success": true, "deleted": team})
	})

	r.Get("/api/teams/{teamId}/members", func(w http.ResponseWriter, req *http.Request) {
		id, ok := teamID(w, req)
		if !ok {
			return
		}
		team, err := d.Repo.Get(id)
		if err != nil {
			failTeams(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{
			"success": true,
			"teamId":  team.ID,
			"count":   len(team.Members),
			"members": team.Members,
		})
	})

	r.Post("/api/teams/{teamId}/members", func(w http.ResponseWriter, req *http.Request) {
		id, ok := teamID(w, req)
		if !ok {
			return
		}
		var body memberBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			fail(w, req, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		if body.AgentMLSID == "" {
			fail(w, req, http.StatusBadRequest, "agent_mls_id_required", "agent_mls_id is required")
			return
		}
		member, team, err := d.Repo.AddMember(id, body.AgentName, body.AgentMLSID, body.AgentPhone)
		if err != nil {
			failTeams(w, req, err)
			return
		}
		render.Status(req, http.StatusCreated)
		render.JSON(w, req, map[string]any{"success": true, "member": member, "team": team})
	})

	r.Delete("/api/teams/{teamId}/members/{memberId}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := teamID(w, req)
		if !ok {
			return
		}
		memberID, err := strconv.Atoi(chi.URLParam(req, "memberId"))
		if err != nil {
			fail(w, req, http.StatusBadRequest, "invalid_member_id", "member id must be an integer")
			return
		}
		member, team, err := d.Repo.RemoveMember(id, memberID)
		if err != nil {
			failTeams(w, req, err)
			return
		}
		render.JSON(w, req, map[string]any{"success": true, "removed": member, "team": team})
	})

	// Featured listings for a team: every member's active (or recently sold)
	// listings in one fetch, priciest first.
	r.Get("/api/teams/{teamId}/featured-listings", func(w http.ResponseWriter, req *http.Request) {
		id, ok := teamID(w, req)
		if !ok {
			return
		}
		team, err := d.Repo.Get(id)
		if err != nil {
			failTeams(w, req, err)
			return
		}
		if len(team.Members) == 0 {
			render.JSON(w, req, map[string]any{
				"success":        true,
				"teamId":         team.ID,
				"teamName":       team.Name,
				"count":          0,
				"teamProperties": []paragon.NormalizedProperty{},
				"message":        "no team members found",
			})
			return
		}

		q := req.URL.Query()
		status := q.Get("status")
		if status == "" {
			status = "Active"
		}
		limit := intParam(q.Get("limit"), 50)

		agentExprs := make([]odata.Expr, 0, len(team.Members))
		for _, m := range team.Members {
			agentExprs = append(agentExprs, odata.Eq("ListAgentMlsId", m.AgentMLSID))
		}
		filters := []odata.Expr{odata.Or(agentExprs...)}
		if city := q.Get("city"); city != "" {
			filters = append(filters, odata.EqFold("City", city))
		}
		switch status {
		case "Sold":
			filters = append(filters, paragon.ClosedWithinExpr(12, time.Now()))
		default:
			filters = append(filters, odata.Eq("StandardStatus", "Active"))
		}

		query := paragon.Query{
			Filter:  odata.And(filters...),
			OrderBy: "ListPrice desc",
			Top:     limit,
		}
		env, err := d.Paragon.Search(req.Context(), query)
		if err != nil {
			failUpstream(w, req, err)
			return
		}
		publishSnapshot(req.Context(), d.Bus, "featured-listings", strconv.Itoa(team.ID), env)

		properties := paragon.NormalizeAll(env.Value, paragon.NormalizeOptions{Sanitizer: d.Sanitizer})

		render.JSON(w, req, map[string]any{
			"success":        true,
			"teamId":         team.ID,
			"teamName":       team.Name,
			"teamMembers":    len(team.Members),
			"count":          len(properties),
			"teamProperties": properties,
			"searchCriteria": map[string]any{
				"city":   q.Get("city"),
				"status": status,
				"limit":  limit,
			},
		})
	})
}

func teamID(w http.ResponseWriter, req *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(req, "teamId"))
	if err != nil {
		fail(w, req, http.StatusBadRequest, "invalid_team_id", "team id must be an integer")
		return 0, false
	}
	return id, true
}

func failTeams(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, teams.ErrTeamNotFound):
		fail(w, req, http.StatusNotFound, "team_not_found", err.Error())
	case errors.Is(err, teams.ErrMemberNotFound):
		fail(w, req, http.StatusNotFound, "member_not_found", err.Error())
	case errors.Is(err, teams.ErrMemberExists):
		fail(w, req, http.StatusConflict, "agent_already_in_team", err.Error())
	case errors.Is(err, teams.ErrNameRequired):
		fail(w, req, http.StatusBadRequest, "team_name_required", err.Error())
	default:
		fail(w, req, http.StatusInternalServerError, "teams_error", err.Error())
	}
}
