// Package resolve locates a subject property from a free-text address.
// Exact lookups fail constantly in practice (abbreviated suffixes, missing
// directionals, unit numbers), so the resolver walks a ladder of
// progressively looser normalization strategies and stops at the first hit.
package resolve

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/paragon"
)

// strategyTop caps each probe query; the resolver only needs one record.
const strategyTop = 5

var suffixPairs = [][2]string{
	{"st", "street"},
	{"rd", "road"},
	{"ave", "avenue"},
	{"blvd", "boulevard"},
	{"dr", "drive"},
	{"ln", "lane"},
	{"ct", "court"},
	{"cir", "circle"},
	{"ter", "terrace"},
	{"pl", "place"},
}

var directionalPairs = [][2]string{
	{"n", "north"},
	{"s", "south"},
	{"e", "east"},
	{"w", "west"},
}

var leadingNumber = regexp.MustCompile(`^(\d+)\s+(.+)$`)

// Subject is the resolved anchor record for a comparable search.
type Subject struct {
	Address   string              `json:"address"`
	City      string              `json:"city"`
	Sqft      int                 `json:"sqft"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
	YearBuilt int                 `json:"yearBuilt"`
	Beds      int                 `json:"beds"`
	Baths     float64             `json:"baths"`
	Raw       paragon.RawProperty `json:"-"`
}

type searcher interface {
	Search(ctx context.Context, q paragon.Query) (*paragon.Envelope, error)
}

type Resolver struct {
	Client searcher
}

// Resolve tries each strategy in order and returns the first hit. ok=false
// with a nil error is the normal miss outcome, not a failure: callers are
// expected to degrade to a city/size-only search.
func (r *Resolver) Resolve(ctx context.Context, address, city string) (Subject, bool) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Subject{}, false
	}

	type strategy struct {
		name  string
		exprs []odata.Expr
	}

	strategies := []strategy{
		{"exact", []odata.Expr{odata.Eq("UnparsedAddress", address)}},
		{"case-insensitive", []odata.Expr{odata.EqFold("UnparsedAddress", address)}},
		{"suffix-variants", foldAll(suffixVariants(address))},
		{"directional-variants", foldAll(directionalVariants(address))},
		{"partial", partialExprs(address)},
	}

	for _, s := range strategies {
		for _, expr := range s.exprs {
			if city != "" {
				expr = odata.And(expr, odata.EqFold("City", city))
			}
			env, err := r.Client.Search(ctx, paragon.Query{Filter: expr, Top: strategyTop})
			if err != nil {
				// A failed probe is logged and skipped; the next strategy may
				// still succeed.
				log.Printf("[WARN] address resolve strategy %s failed: %v", s.name, err)
				continue
			}
			if len(env.Value) > 0 {
				log.Printf("[INFO] resolved %q via %s strategy", address, s.name)
				return toSubject(env.Value[0]), true
			}
		}
	}
	return Subject{}, false
}

func foldAll(variants []string) []odata.Expr {
	out := make([]odata.Expr, 0, len(variants))
	for _, v := range variants {
		out = append(out, odata.EqFold("UnparsedAddress", v))
	}
	return out
}

// suffixVariants swaps abbreviated and spelled-out street suffixes when the
// suffix is the final token of the address.
func suffixVariants(address string) []string {
	lower := strings.ToLower(address)
	var out []string
	for _, pair := range suffixPairs {
		for i := 0; i < 2; i++ {
			from, to := pair[i], pair[1-i]
			if strings.HasSuffix(lower, " "+from) {
				out = append(out, address[:len(address)-len(from)]+to)
			}
		}
	}
	return out
}

// directionalVariants swaps single-letter directionals with their spelled-out
// forms anywhere a word boundary surrounds them.
func directionalVariants(address string) []string {
	var out []string
	for _, pair := range directionalPairs {
		for i := 0; i < 2; i++ {
			from, to := pair[i], pair[1-i]
			re := regexp.MustCompile(`(?i)\b` + from + `\b`)
			if re.MatchString(address) {
				out = append(out, re.ReplaceAllString(address, to))
			}
		}
	}
	return out
}

// partialExprs splits off a leading street number and substring-matches the
// remainder when it is long enough to be selective.
func partialExprs(address string) []odata.Expr {
	m := leadingNumber.FindStringSubmatch(strings.TrimSpace(address))
	if m == nil {
		return nil
	}
	number, rest := m[1], strings.TrimSpace(m[2])
	if len(rest) <= 3 {
		return nil
	}
	return []odata.Expr{
		odata.And(
			odata.Contains("UnparsedAddress", rest),
			odata.Contains("UnparsedAddress", number),
		),
		odata.Contains("UnparsedAddress", rest),
	}
}

func toSubject(p paragon.RawProperty) Subject {
	n := paragon.Normalize(p, paragon.NormalizeOptions{})
	return Subject{
		Address:   n.Address,
		City:      n.City,
		Sqft:      n.Sqft,
		Latitude:  n.Latitude,
		Longitude: n.Longitude,
		YearBuilt: n.YearBuilt,
		Beds:      n.Beds,
		Baths:     n.Baths,
		Raw:       p,
	}
}
