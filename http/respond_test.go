package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/cma-api/internal/teams"
	"github.com/yourorg/cma-api/paragon"
)

func TestFailWritesStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	fail(rec, req, http.StatusBadGateway, "upstream_error", "boom")

	assert.Equal(t, http.StatusBadGateway, rec.Code, "status must reach the wire, not just the render context")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "upstream_error", body["error"])
	assert.Equal(t, "boom", body["detail"])
}

func TestFailUpstreamClassification(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&paragon.UpstreamError{Status: http.StatusForbidden, Body: "quota"}, http.StatusBadGateway, "upstream_error"},
		{fmt.Errorf("decode: %w", paragon.ErrMalformedPayload), http.StatusBadGateway, "upstream_parse_error"},
		{errors.New("dial tcp: timeout"), http.StatusInternalServerError, "upstream_fetch_failed"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)

		failUpstream(rec, req, c.err)

		assert.Equal(t, c.status, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, c.code, body["error"])
	}
}

func TestTeamNotFoundStatus(t *testing.T) {
	r := chi.NewRouter()
	RegisterTeams(r, TeamsDeps{Repo: teams.NewMemoryRepository()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams/99", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}
