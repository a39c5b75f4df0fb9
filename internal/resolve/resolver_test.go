package resolve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/paragon"
)

// fakeSearcher matches rendered filter expressions by substring. failOn
// simulates an upstream outage for specific probes.
type fakeSearcher struct {
	hits   map[string]paragon.RawProperty
	failOn string
	calls  []string
}

func (f *fakeSearcher) Search(_ context.Context, q paragon.Query) (*paragon.Envelope, error) {
	rendered := odata.Render(q.Filter)
	f.calls = append(f.calls, rendered)
	if f.failOn != "" && strings.Contains(rendered, f.failOn) {
		return nil, errors.New("upstream down")
	}
	for sub, prop := range f.hits {
		if strings.Contains(rendered, sub) {
			return &paragon.Envelope{Value: []paragon.RawProperty{prop}}, nil
		}
	}
	return &paragon.Envelope{}, nil
}

func TestResolveExactMatch(t *testing.T) {
	fake := &fakeSearcher{hits: map[string]paragon.RawProperty{
		"UnparsedAddress eq '123 Main Street'": {
			UnparsedAddress: "123 Main Street",
			City:            "Omaha",
			LivingArea:      1800,
			Latitude:        41.25,
			Longitude:       -96.0,
		},
	}}
	r := &Resolver{Client: fake}

	subject, ok := r.Resolve(context.Background(), "123 Main Street", "")
	require.True(t, ok)
	assert.Equal(t, "123 Main Street", subject.Address)
	assert.Equal(t, "Omaha", subject.City)
	assert.Equal(t, 1800, subject.Sqft)
	assert.Equal(t, 41.25, subject.Latitude)
	assert.Len(t, fake.calls, 1, "first strategy hit, no further probes")
}

func TestResolveSuffixExpansion(t *testing.T) {
	// "123 Main St" only exists upstream spelled out as "123 Main Street".
	fake := &fakeSearcher{hits: map[string]paragon.RawProperty{
		"'123 main street'": {UnparsedAddress: "123 Main Street", City: "Omaha"},
	}}
	r := &Resolver{Client: fake}

	subject, ok := r.Resolve(context.Background(), "123 Main St", "")
	require.True(t, ok)
	assert.Equal(t, "123 Main Street", subject.Address)
	assert.GreaterOrEqual(t, len(fake.calls), 3, "exact and case-insensitive missed first")
}

func TestResolveDirectionalExpansion(t *testing.T) {
	fake := &fakeSearcher{hits: map[string]paragon.RawProperty{
		"'456 south elm drive'": {UnparsedAddress: "456 South Elm Drive"},
	}}
	r := &Resolver{Client: fake}

	subject, ok := r.Resolve(context.Background(), "456 S Elm Drive", "")
	require.True(t, ok)
	assert.Equal(t, "456 South Elm Drive", subject.Address)
}

func TestResolvePartialMatch(t *testing.T) {
	fake := &fakeSearcher{hits: map[string]paragon.RawProperty{
		"contains(tolower(UnparsedAddress),'maple grove cir')": {UnparsedAddress: "789 Maple Grove Cir Unit 2"},
	}}
	r := &Resolver{Client: fake}

	subject, ok := r.Resolve(context.Background(), "789 Maple Grove Cir", "")
	require.True(t, ok)
	assert.Equal(t, "789 Maple Grove Cir Unit 2", subject.Address)
}

func TestResolveCityConstraint(t *testing.T) {
	fake := &fakeSearcher{hits: map[string]paragon.RawProperty{
		"tolower(City) eq 'omaha'": {UnparsedAddress: "123 Main Street", City: "Omaha"},
	}}
	r := &Resolver{Client: fake}

	_, ok := r.Resolve(context.Background(), "123 Main Street", "Omaha")
	require.True(t, ok)
	assert.Contains(t, fake.calls[0], "tolower(City) eq 'omaha'")
}

func TestResolveSkipsFailedStrategy(t *testing.T) {
	// The exact probe errors; the case-insensitive one still finds it.
	fake := &fakeSearcher{
		failOn: "UnparsedAddress eq '123 Main Street'",
		hits: map[string]paragon.RawProperty{
			"tolower(UnparsedAddress) eq '123 main street'": {UnparsedAddress: "123 Main Street"},
		},
	}
	r := &Resolver{Client: fake}

	_, ok := r.Resolve(context.Background(), "123 Main Street", "")
	assert.True(t, ok)
}

func TestResolveNotFoundIsNormal(t *testing.T) {
	fake := &fakeSearcher{}
	r := &Resolver{Client: fake}

	_, ok := r.Resolve(context.Background(), "1 Nowhere Ln", "")
	assert.False(t, ok)
	assert.NotEmpty(t, fake.calls, "all strategies were tried")
}

func TestResolveEmptyAddress(t *testing.T) {
	fake := &fakeSearcher{}
	r := &Resolver{Client: fake}

	_, ok := r.Resolve(context.Background(), "   ", "")
	assert.False(t, ok)
	assert.Empty(t, fake.calls)
}
