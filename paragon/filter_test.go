package paragon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/cma-api/internal/odata"
	"github.com/yourorg/cma-api/internal/params"
)

func TestPriceShorthandPlus(t *testing.T) {
	got := odata.Render(PriceShorthandExpr("500k+"))
	assert.Equal(t, "(ListPrice ge 500000 or ClosePrice ge 500000)", got)
}

func TestPriceShorthandRange(t *testing.T) {
	got := odata.Render(PriceShorthandExpr("300k-500k"))
	assert.Equal(t,
		"((ListPrice ge 300000 and ListPrice le 500000) or (ClosePrice ge 300000 and ClosePrice le 500000))",
		got)
}

func TestPriceShorthandGarbage(t *testing.T) {
	assert.Nil(t, PriceShorthandExpr("cheap"))
	assert.Nil(t, PriceShorthandExpr("abc+"))
	assert.Nil(t, PriceShorthandExpr("100k-abc"))
}

func TestPriceBuckets(t *testing.T) {
	assert.Equal(t,
		"(ListPrice lt 200000 or ClosePrice lt 200000)",
		odata.Render(PriceBucketExpr("under_200k")))
	assert.Equal(t,
		"((ListPrice ge 200000 and ListPrice lt 300000) or (ClosePrice ge 200000 and ClosePrice lt 300000))",
		odata.Render(PriceBucketExpr("200k_300k")))
	assert.Equal(t,
		"(ListPrice ge 1000000 or ClosePrice ge 1000000)",
		odata.Render(PriceBucketExpr("over_1m")))
	assert.Nil(t, PriceBucketExpr("any"))
}

func TestPriceBounds(t *testing.T) {
	min, max := 250000.0, 400000.0
	assert.Equal(t,
		"((ListPrice ge 250000 and ListPrice le 400000) or (ClosePrice ge 250000 and ClosePrice le 400000))",
		odata.Render(PriceBoundsExpr(&min, &max)))
	assert.Equal(t,
		"(ListPrice ge 250000 or ClosePrice ge 250000)",
		odata.Render(PriceBoundsExpr(&min, nil)))
	assert.Nil(t, PriceBoundsExpr(nil, nil))
}

func TestLotSizeBuckets(t *testing.T) {
	assert.Equal(t, "LotSizeAcres lt 0.25", odata.Render(LotSizeExpr("under_quarter")))
	assert.Equal(t, "LotSizeAcres ge 0.25 and LotSizeAcres lt 0.5", odata.Render(LotSizeExpr("quarter_half")))
	assert.Nil(t, LotSizeExpr("any"))
}

func TestAreasExpr(t *testing.T) {
	got := odata.Render(AreasExpr("Remington, Indian Creek"))
	assert.Equal(t,
		"((contains(tolower(SubdivisionName),'remington') or contains(tolower(UnparsedAddress),'remington'))"+
			" or (contains(tolower(SubdivisionName),'indian creek') or contains(tolower(UnparsedAddress),'indian creek')))",
		got)
	assert.Nil(t, AreasExpr(" , "))
}

func TestClosedWithinExpr(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	got := odata.Render(ClosedWithinExpr(6, now))
	assert.Equal(t, "StandardStatus eq 'Closed' and CloseDate ge 2026-02-15", got)
}

func TestBedsShorthand(t *testing.T) {
	assert.Equal(t, "BedroomsTotal ge 5", odata.Render(BedsShorthandExpr("5+")))
	assert.Equal(t, "BedroomsTotal eq 4", odata.Render(BedsShorthandExpr("4")))
	assert.Nil(t, BedsShorthandExpr("many"))
}

func TestStatusListExpr(t *testing.T) {
	got := odata.Render(StatusListExpr([]string{"Active", "Pending"}))
	assert.Equal(t, "(StandardStatus eq 'Active' or StandardStatus eq 'Pending')", got)
}

func TestAdvancedFilter(t *testing.T) {
	minSqft := 1500.0
	wf := true
	a := params.Applied{
		City:       "Omaha",
		MinSqft:    &minSqft,
		Statuses:   []string{"Active", "Closed"},
		Waterfront: &wf,
	}
	got := odata.Render(AdvancedFilter(a))
	assert.Equal(t,
		"tolower(City) eq 'omaha' and LivingArea ge 1500 and "+
			"(StandardStatus eq 'Active' or StandardStatus eq 'Closed') and WaterfrontYN eq true",
		got)
}

func TestAdvancedFilterEmpty(t *testing.T) {
	assert.Nil(t, AdvancedFilter(params.Applied{}))
}
