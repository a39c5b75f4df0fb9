package paragon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/cma-api/internal/config"
	"github.com/yourorg/cma-api/internal/odata"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	cfg := config.Paragon{APIURL: ts.URL, DatasetID: "bk9", ServerToken: "secret-token"}
	c := NewClient(cfg, config.NewStaticTokenSource("secret-token"), 5*time.Second)
	c.http.RetryMax = 0 // keep failure tests fast
	return c
}

func TestBuildURL(t *testing.T) {
	cfg := config.Paragon{APIURL: "https://api.example.com/OData", DatasetID: "bk9", ServerToken: "tok"}
	c := NewClient(cfg, config.NewStaticTokenSource("tok"), 0)

	u := c.BuildURL(Query{
		Filter:  odata.EqFold("City", "Omaha"),
		OrderBy: "ListPrice asc",
		Top:     50,
		Skip:    100,
	})
	assert.True(t, strings.HasPrefix(u, "https://api.example.com/OData/bk9/Properties?access_token=tok"))
	assert.Contains(t, u, "&$filter=tolower%28City%29+eq+%27omaha%27")
	assert.Contains(t, u, "&$orderby=ListPrice+asc")
	assert.Contains(t, u, "&$top=50")
	assert.Contains(t, u, "&$skip=100")
	assert.Contains(t, u, "&$select=", "select list is always explicit")
}

func TestRedactURL(t *testing.T) {
	u := "https://x/Properties?access_token=tok&$top=5"
	assert.Equal(t, "https://x/Properties?access_token=***&$top=5", RedactURL(u))
	assert.Equal(t, "https://x/Properties?access_token=***", RedactURL("https://x/Properties?access_token=tok"))
	assert.Equal(t, "https://x/Properties", RedactURL("https://x/Properties"))
}

func TestSearchDecodesEnvelope(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.URL.Query().Get("access_token"))
		count := 2
		_ = json.NewEncoder(w).Encode(Envelope{
			Value: []RawProperty{{ListingKey: "L1"}, {ListingKey: "L2"}},
			Count: &count,
		})
	})

	env, err := c.Search(context.Background(), Query{Top: 2})
	require.NoError(t, err)
	require.Len(t, env.Value, 2)
	assert.Equal(t, "L1", string(env.Value[0].ListingKey))
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
}

func TestSearchUpstreamError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := c.Search(context.Background(), Query{})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusForbidden, ue.Status)
	assert.Contains(t, ue.Body, "quota exceeded")
}

func TestSearchMalformedPayload(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.Search(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestSearchAllPagesUntilShortPage(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		page := []RawProperty{{ListingKey: "A"}, {ListingKey: "B"}}
		if n == 3 {
			page = page[:1] // short page ends the loop
		}
		_ = json.NewEncoder(w).Encode(Envelope{Value: page})
	})

	all, err := c.SearchAll(context.Background(), Query{}, 2)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearchActiveAndClosedAllOrNothing(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("$filter")
		if strings.Contains(filter, "Closed") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(Envelope{Value: []RawProperty{{ListingKey: "A1"}}})
	})

	active := Query{Filter: odata.Eq("StandardStatus", "Active")}
	closed := Query{Filter: odata.Eq("StandardStatus", "Closed")}
	a, b, err := c.SearchActiveAndClosed(context.Background(), active, closed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed properties query")
	assert.Nil(t, a, "successful leg is discarded when the other fails")
	assert.Nil(t, b)
}

func TestSearchActiveAndClosedBothSucceed(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope{Value: []RawProperty{{ListingKey: "X"}}})
	})

	a, b, err := c.SearchActiveAndClosed(context.Background(), Query{}, Query{})
	require.NoError(t, err)
	assert.Len(t, a.Value, 1)
	assert.Len(t, b.Value, 1)
}
