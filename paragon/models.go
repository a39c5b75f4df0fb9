package paragon

import (
	"encoding/json"
	"strings"
)

// flexString accepts string or number JSON and stores the textual form.
// Paragon is not consistent about id field types across datasets.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

// textList accepts a bare string or an array of strings. Free-text feature
// fields (Flooring, InteriorFeatures, ArchitecturalStyle, ...) appear in both
// shapes depending on the record.
type textList []string

func (t *textList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		if str == "" {
			*t = nil
		} else {
			*t = textList{str}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*t = textList(list)
	return nil
}

func (t textList) First() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

func (t textList) Join() string { return strings.Join(t, ", ") }

type Medium struct {
	MediaURL          string `json:"MediaURL"`
	PreferredPhotoURL string `json:"PreferredPhotoURL"`
}

// RawProperty is the subset of the upstream record this service consumes.
// Every field is optional; normalization owns the fallback chains.
type RawProperty struct {
	ListingKey flexString `json:"ListingKey"`
	ListingID  flexString `json:"ListingId"`

	UnparsedAddress string `json:"UnparsedAddress"`
	City            string `json:"City"`
	StateOrProvince string `json:"StateOrProvince"`
	PostalCode      string `json:"PostalCode"`
	SubdivisionName string `json:"SubdivisionName"`

	StandardStatus     string   `json:"StandardStatus"`
	PropertyType       string   `json:"PropertyType"`
	PropertySubType    string   `json:"PropertySubType"`
	ArchitecturalStyle textList `json:"ArchitecturalStyle"`
	PropertyCondition  textList `json:"PropertyCondition"`

	BedroomsTotal         float64 `json:"BedroomsTotal"`
	BathroomsTotalInteger float64 `json:"BathroomsTotalInteger"`
	BathroomsTotalDecimal float64 `json:"BathroomsTotalDecimal"`
	BathroomsTotal        float64 `json:"BathroomsTotal"`
	StoriesTotal          float64 `json:"StoriesTotal"`
	GarageSpaces          float64 `json:"GarageSpaces"`
	ParkingTotal          float64 `json:"ParkingTotal"`
	YearBuilt             float64 `json:"YearBuilt"`

	LivingArea             float64 `json:"LivingArea"`
	AboveGradeFinishedArea float64 `json:"AboveGradeFinishedArea"`
	BelowGradeFinishedArea float64 `json:"BelowGradeFinishedArea"`
	BuildingAreaTotal      float64 `json:"BuildingAreaTotal"`
	LotSizeAcres           float64 `json:"LotSizeAcres"`
	LotSizeSquareFeet      float64 `json:"LotSizeSquareFeet"`

	ListPrice         float64 `json:"ListPrice"`
	OriginalListPrice float64 `json:"OriginalListPrice"`
	ClosePrice        float64 `json:"ClosePrice"`

	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`

	OnMarketDate           string  `json:"OnMarketDate"`
	CloseDate              string  `json:"CloseDate"`
	ModificationTimestamp  string  `json:"ModificationTimestamp"`
	DaysOnMarket           float64 `json:"DaysOnMarket"`
	CumulativeDaysOnMarket float64 `json:"CumulativeDaysOnMarket"`

	Media []Medium `json:"Media"`

	PublicRemarks    string   `json:"PublicRemarks"`
	PrivateRemarks   string   `json:"PrivateRemarks"`
	InteriorFeatures textList `json:"InteriorFeatures"`
	ExteriorFeatures textList `json:"ExteriorFeatures"`
	Flooring         textList `json:"Flooring"`
	Basement         textList `json:"Basement"`

	WaterfrontYN      bool    `json:"WaterfrontYN"`
	NewConstructionYN bool    `json:"NewConstructionYN"`
	PoolPrivateYN     bool    `json:"PoolPrivateYN"`
	FireplacesTotal   float64 `json:"FireplacesTotal"`

	ListAgentFullName        string     `json:"ListAgentFullName"`
	ListAgentMlsId           flexString `json:"ListAgentMlsId"`
	ListAgentPreferredPhone  string     `json:"ListAgentPreferredPhone"`
	BuyerAgentFullName       string     `json:"BuyerAgentFullName"`
	BuyerAgentMlsId          flexString `json:"BuyerAgentMlsId"`
	BuyerAgentPreferredPhone string     `json:"BuyerAgentPreferredPhone"`
}

// Envelope is the upstream OData response shape.
type Envelope struct {
	Value []RawProperty `json:"value"`
	Count *int          `json:"@odata.count"`
}
