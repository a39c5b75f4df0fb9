// Command smoketest exercises a running cma-api instance end to end.
// It hits every read endpoint with realistic queries and reports pass/fail.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/yourorg/cma-api/internal/env"
)

type check struct {
	name       string
	path       string
	wantStatus int
}

func main() {
	base := env.Get("API_BASE", "http://localhost:3002")
	client := &http.Client{Timeout: 30 * time.Second}

	checks := []check{
		{"health", "/api/health", 200},
		{"status", "/api/status", 200},
		{"property search basic", "/api/property-search?city=Omaha&status=For%20Sale&limit=5", 200},
		{"property search price shorthand", "/api/property-search?city=Omaha&price_range=500k%2B&beds=5%2B&status=For%20Sale&limit=5", 200},
		{"advanced search", "/api/property-search-advanced?city=Omaha&min_sqft=1500&status=active,sold&limit=10", 200},
		{"wildcard search", "/api/property-search-new?city=Omaha&min_bedrooms=3&limit=5", 200},
		{"cma comparables", "/api/cma-comparables?city=Omaha&sqft=2000&sqft_delta=500&months_back=6", 200},
		{"comps", "/api/comps?city=Omaha&sqft_min=1500&sqft_max=2500", 200},
		{"agent suggestions", "/api/agents/suggestions?q=sm", 200},
		{"communities", "/api/communities?q=ridge", 200},
		{"resolve community name", "/api/resolve-community-name?name=Remington%20Ridge", 200},
		{"teams list", "/api/teams", 200},
	}

	passed := 0
	for _, c := range checks {
		if run(client, base, c) {
			passed++
		}
	}
	fmt.Printf("\n%d/%d checks passed\n", passed, len(checks))
	if passed != len(checks) {
		os.Exit(1)
	}
}

func run(client *http.Client, base string, c check) bool {
	resp, err := client.Get(base + c.path)
	if err != nil {
		fmt.Printf("FAIL %-32s %v\n", c.name, err)
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != c.wantStatus {
		fmt.Printf("FAIL %-32s status %d (want %d)\n", c.name, resp.StatusCode, c.wantStatus)
		return false
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		fmt.Printf("FAIL %-32s non-JSON body\n", c.name)
		return false
	}
	detail := ""
	switch payload := decoded.(type) {
	case map[string]any:
		if props, ok := payload["properties"].([]any); ok {
			detail = fmt.Sprintf("%d properties", len(props))
		} else if count, ok := payload["count"].(float64); ok {
			detail = fmt.Sprintf("count=%d", int(count))
		}
	case []any:
		detail = fmt.Sprintf("%d records", len(payload))
	}
	fmt.Printf("ok   %-32s %s\n", c.name, detail)
	return true
}
