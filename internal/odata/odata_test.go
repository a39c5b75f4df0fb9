package odata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderComparisons(t *testing.T) {
	assert.Equal(t, "City eq 'Omaha'", Render(Eq("City", "Omaha")))
	assert.Equal(t, "ListPrice ge 500000", Render(Ge("ListPrice", 500000.0)))
	assert.Equal(t, "LotSizeAcres lt 0.25", Render(Lt("LotSizeAcres", 0.25)))
	assert.Equal(t, "WaterfrontYN eq true", Render(Eq("WaterfrontYN", true)))
	assert.Equal(t, "BedroomsTotal ge 5", Render(Ge("BedroomsTotal", 5)))
}

func TestRenderEscapesQuotes(t *testing.T) {
	assert.Equal(t, "City eq 'O''Neill'", Render(Eq("City", "O'Neill")))
	assert.Equal(t, "tolower(City) eq 'o''neill'", Render(EqFold("City", "O'Neill")))
	assert.Equal(t, "contains(tolower(UnparsedAddress),'o''neill st')", Render(Contains("UnparsedAddress", "O'Neill St")))
}

func TestRenderFoldAndContains(t *testing.T) {
	assert.Equal(t, "tolower(City) eq 'omaha'", Render(EqFold("City", "Omaha")))
	assert.Equal(t, "contains(tolower(SubdivisionName),'ridge')", Render(Contains("SubdivisionName", "Ridge")))
}

func TestAndJoins(t *testing.T) {
	e := And(Eq("City", "Omaha"), Ge("LivingArea", 1500.0))
	assert.Equal(t, "City eq 'Omaha' and LivingArea ge 1500", Render(e))
}

func TestOrParenthesizes(t *testing.T) {
	e := Or(Ge("ListPrice", 500000.0), Ge("ClosePrice", 500000.0))
	assert.Equal(t, "(ListPrice ge 500000 or ClosePrice ge 500000)", Render(e))
}

func TestOrOfAndsWrapsChildren(t *testing.T) {
	e := Or(
		And(Ge("ListPrice", 300000.0), Le("ListPrice", 500000.0)),
		And(Ge("ClosePrice", 300000.0), Le("ClosePrice", 500000.0)),
	)
	assert.Equal(t,
		"((ListPrice ge 300000 and ListPrice le 500000) or (ClosePrice ge 300000 and ClosePrice le 500000))",
		Render(e))
}

func TestAndOfOrComposes(t *testing.T) {
	e := And(
		EqFold("City", "Omaha"),
		Or(Ge("ListPrice", 500000.0), Ge("ClosePrice", 500000.0)),
	)
	assert.Equal(t,
		"tolower(City) eq 'omaha' and (ListPrice ge 500000 or ClosePrice ge 500000)",
		Render(e))
}

func TestNilAndSingleCollapse(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "", Render(And()))
	assert.Equal(t, "", Render(Or(nil, nil)))
	assert.Equal(t, "City eq 'Omaha'", Render(And(nil, Eq("City", "Omaha"))))
	assert.Equal(t, "City eq 'Omaha'", Render(Or(Eq("City", "Omaha"))))
}

func TestRawDates(t *testing.T) {
	assert.Equal(t, "CloseDate ge 2025-08-31", Render(Raw("CloseDate", "ge", "2025-08-31")))
}
