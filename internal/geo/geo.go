// Package geo provides great-circle distance math and radius filtering for
// comparable searches.
package geo

import (
	"math"
	"sort"
)

const (
	earthRadiusMiles = 3958.8

	// RadiusCeilingMiles bounds progressive expansion.
	RadiusCeilingMiles = 20.0

	// NoCoordsCap limits the fallback list when geo filtering is impossible.
	NoCoordsCap = 20
)

type Point struct {
	Lat float64
	Lon float64
}

// Zero reports whether the point carries no usable coordinates. Listings with
// missing coordinates come through as exact zeros.
func (p Point) Zero() bool { return p.Lat == 0 && p.Lon == 0 }

// Miles returns the Haversine great-circle distance between a and b.
func Miles(a, b Point) float64 {
	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

// Candidate ties a coordinate pair back to the caller's slice by index.
// HasCoords is false for records with unknown location; those are excluded
// from radius filtering rather than treated as distance zero.
type Candidate struct {
	Index     int
	Point     Point
	HasCoords bool
}

// Ranked is a candidate that fell inside the radius, annotated with its
// distance from the reference point.
type Ranked struct {
	Index int
	Miles float64
}

// Within returns the candidates inside radiusMiles of ref, sorted ascending
// by distance.
func Within(ref Point, cands []Candidate, radiusMiles float64) []Ranked {
	out := make([]Ranked, 0, len(cands))
	for _, c := range cands {
		if !c.HasCoords {
			continue
		}
		d := Miles(ref, c.Point)
		if d <= radiusMiles {
			out = append(out, Ranked{Index: c.Index, Miles: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Miles < out[j].Miles })
	return out
}

// Expand filters candidates by radius, doubling the radius until at least
// minResults candidates are inside or the ceiling is reached. It returns the
// in-radius set and the final radius used. Doubling converges in a handful of
// iterations; the loop cannot run unbounded.
func Expand(ref Point, cands []Candidate, initialMiles float64, minResults int) ([]Ranked, float64) {
	radius := initialMiles
	if radius <= 0 {
		radius = 0.1
	}
	if radius > RadiusCeilingMiles {
		radius = RadiusCeilingMiles
	}
	for {
		in := Within(ref, cands, radius)
		if len(in) >= minResults || radius >= RadiusCeilingMiles {
			return in, radius
		}
		radius *= 2
		if radius > RadiusCeilingMiles {
			radius = RadiusCeilingMiles
		}
	}
}
