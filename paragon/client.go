// Package paragon is the client for the Paragon MLS OData API and the home
// of everything that understands its record shapes.
package paragon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/yourorg/cma-api/internal/config"
	"github.com/yourorg/cma-api/internal/odata"
)

// MaxPageCalls caps the $skip pagination loop so a bad upstream count can
// never drive unbounded fetching.
const MaxPageCalls = 100

// DefaultSelect is the explicit field list sent with every query. Selecting
// fields explicitly bounds response size and makes the schema this service
// depends on auditable in one place.
var DefaultSelect = []string{
	"ListingKey", "ListingId",
	"UnparsedAddress", "City", "StateOrProvince", "PostalCode", "SubdivisionName",
	"StandardStatus", "PropertyType", "PropertySubType",
	"ArchitecturalStyle", "PropertyCondition",
	"BedroomsTotal", "BathroomsTotalInteger", "BathroomsTotalDecimal",
	"StoriesTotal", "GarageSpaces", "YearBuilt",
	"LivingArea", "AboveGradeFinishedArea", "BelowGradeFinishedArea",
	"LotSizeAcres", "LotSizeSquareFeet",
	"ListPrice", "OriginalListPrice", "ClosePrice",
	"Latitude", "Longitude",
	"OnMarketDate", "CloseDate", "ModificationTimestamp", "DaysOnMarket",
	"Media", "PublicRemarks", "InteriorFeatures", "ExteriorFeatures", "Flooring", "Basement",
	"WaterfrontYN", "NewConstructionYN", "PoolPrivateYN", "FireplacesTotal",
	"ListAgentFullName", "ListAgentMlsId", "ListAgentPreferredPhone",
}

// UpstreamError is a non-2xx response from Paragon, with the body kept for
// diagnostics.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("paragon error %d: %s", e.Status, e.Body)
}

// ErrMalformedPayload marks an upstream body that did not decode as the
// expected envelope.
var ErrMalformedPayload = errors.New("paragon returned malformed payload")

// Query is one OData request. Zero-valued fields are omitted from the URL.
type Query struct {
	Filter  odata.Expr
	Select  []string
	OrderBy string
	Top     int
	Skip    int
}

type Client struct {
	cfg    config.Paragon
	tokens config.TokenSource
	http   *retryablehttp.Client
	limit  *rate.Limiter
}

func NewClient(cfg config.Paragon, tokens config.TokenSource, timeout time.Duration) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.Logger = nil
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rc.HTTPClient.Timeout = timeout

	return &Client{
		cfg:    cfg,
		tokens: tokens,
		http:   rc,
		limit:  rate.NewLimiter(rate.Limit(10), 20), // protect upstream quota
	}
}

// BuildURL composes the full request URL including the access token.
func (c *Client) BuildURL(q Query) string {
	var b strings.Builder
	b.WriteString(c.cfg.APIURL)
	b.WriteByte('/')
	b.WriteString(c.cfg.DatasetID)
	b.WriteString("/Properties?access_token=")
	b.WriteString(c.tokens.Token(time.Now()).Value)

	if f := odata.Render(q.Filter); f != "" {
		b.WriteString("&$filter=")
		b.WriteString(url.QueryEscape(f))
	}
	sel := q.Select
	if len(sel) == 0 {
		sel = DefaultSelect
	}
	b.WriteString("&$select=")
	b.WriteString(url.QueryEscape(strings.Join(sel, ",")))
	if q.OrderBy != "" {
		b.WriteString("&$orderby=")
		b.WriteString(url.QueryEscape(q.OrderBy))
	}
	if q.Top > 0 {
		fmt.Fprintf(&b, "&$top=%d", q.Top)
	}
	if q.Skip > 0 {
		fmt.Fprintf(&b, "&$skip=%d", q.Skip)
	}
	return b.String()
}

// RedactURL hides the access token for logging and response metadata.
func RedactURL(u string) string {
	if i := strings.Index(u, "access_token="); i >= 0 {
		end := strings.IndexByte(u[i:], '&')
		if end < 0 {
			return u[:i] + "access_token=***"
		}
		return u[:i] + "access_token=***" + u[i+end:]
	}
	return u
}

// Search runs one query and decodes the OData envelope.
func (c *Client) Search(ctx context.Context, q Query) (*Envelope, error) {
	if err := c.limit.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.BuildURL(q)
	log.Printf("[INFO] paragon query: %s", RedactURL(u))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paragon fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("paragon read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &env, nil
}

// SearchAll pages through results with increasing $skip until a short page
// comes back or the call ceiling is hit.
func (c *Client) SearchAll(ctx context.Context, q Query, pageSize int) ([]RawProperty, error) {
	if pageSize <= 0 {
		pageSize = 200
	}
	var all []RawProperty
	skip := q.Skip
	for calls := 0; calls < MaxPageCalls; calls++ {
		page := q
		page.Top = pageSize
		page.Skip = skip
		env, err := c.Search(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, env.Value...)
		if len(env.Value) < pageSize {
			break
		}
		skip += pageSize
	}
	return all, nil
}

type fetchResult struct {
	env *Envelope
	err error
}

// SearchActiveAndClosed issues the active and closed legs of a CMA query
// concurrently. Either leg failing fails the whole call: mixing a real
// active list with a silently empty closed list would misrepresent the
// market to the end user.
func (c *Client) SearchActiveAndClosed(ctx context.Context, active, closed Query) (activeEnv, closedEnv *Envelope, err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := func(q Query, out chan<- fetchResult) {
		env, err := c.Search(ctx, q)
		out <- fetchResult{env: env, err: err}
	}
	activeCh := make(chan fetchResult, 1)
	closedCh := make(chan fetchResult, 1)
	go run(active, activeCh)
	go run(closed, closedCh)

	a := <-activeCh
	b := <-closedCh
	if a.err != nil {
		return nil, nil, fmt.Errorf("active properties query: %w", a.err)
	}
	if b.err != nil {
		return nil, nil, fmt.Errorf("closed properties query: %w", b.err)
	}
	return a.env, b.env, nil
}
