package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilesSelfIsZero(t *testing.T) {
	p := Point{Lat: 41.25, Lon: -96.0}
	assert.InDelta(t, 0, Miles(p, p), 1e-9)
}

func TestMilesSymmetric(t *testing.T) {
	a := Point{Lat: 41.25, Lon: -96.0}
	b := Point{Lat: 41.30, Lon: -96.1}
	assert.InDelta(t, Miles(a, b), Miles(b, a), 1e-9)
}

func TestMilesKnownDistance(t *testing.T) {
	// Omaha to Lincoln is roughly 50 miles.
	omaha := Point{Lat: 41.2565, Lon: -95.9345}
	lincoln := Point{Lat: 40.8136, Lon: -96.7026}
	d := Miles(omaha, lincoln)
	assert.Greater(t, d, 45.0)
	assert.Less(t, d, 60.0)
}

func TestWithinSortsAscendingAndSkipsNoCoords(t *testing.T) {
	ref := Point{Lat: 41.25, Lon: -96.0}
	cands := []Candidate{
		{Index: 0, Point: Point{Lat: 41.25 + 0.05, Lon: -96.0}, HasCoords: true},
		{Index: 1, Point: Point{Lat: 41.25 + 0.01, Lon: -96.0}, HasCoords: true},
		{Index: 2, HasCoords: false},
		{Index: 3, Point: Point{Lat: 42.25, Lon: -96.0}, HasCoords: true}, // ~69mi away
	}
	in := Within(ref, cands, 10)
	require.Len(t, in, 2)
	assert.Equal(t, 1, in[0].Index)
	assert.Equal(t, 0, in[1].Index)
	assert.Less(t, in[0].Miles, in[1].Miles)
}

func TestExpandDoublesUntilEnough(t *testing.T) {
	ref := Point{Lat: 41.25, Lon: -96.0}
	var cands []Candidate
	// Two close candidates (~0.7mi), three at ~4.8mi.
	for i := 0; i < 2; i++ {
		cands = append(cands, Candidate{Index: i, Point: Point{Lat: 41.25 + 0.01, Lon: -96.0}, HasCoords: true})
	}
	for i := 2; i < 5; i++ {
		cands = append(cands, Candidate{Index: i, Point: Point{Lat: 41.25 + 0.07, Lon: -96.0}, HasCoords: true})
	}

	in, radius := Expand(ref, cands, 2, 5)
	assert.Len(t, in, 5)
	assert.Equal(t, 8.0, radius, "2 -> 4 -> 8")
}

func TestExpandStopsAtCeiling(t *testing.T) {
	ref := Point{Lat: 41.25, Lon: -96.0}
	cands := []Candidate{
		{Index: 0, Point: Point{Lat: 45.0, Lon: -96.0}, HasCoords: true}, // far outside any radius
	}
	in, radius := Expand(ref, cands, 0.5, 100)
	assert.Empty(t, in)
	assert.Equal(t, RadiusCeilingMiles, radius)
}

func TestExpandClampsBadInitialRadius(t *testing.T) {
	ref := Point{Lat: 41.25, Lon: -96.0}
	cands := []Candidate{{Index: 0, Point: ref, HasCoords: true}}
	in, radius := Expand(ref, cands, -3, 1)
	assert.Len(t, in, 1)
	assert.Equal(t, 0.1, radius)
}

func TestPointZero(t *testing.T) {
	assert.True(t, Point{}.Zero())
	assert.False(t, Point{Lat: 41.25, Lon: -96.0}.Zero())
}
