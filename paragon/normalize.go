package paragon

import (
	"math"
	"time"

	"github.com/yourorg/cma-api/internal/geo"
)

// PlaceholderImage is served when a listing has no media. Inline SVG so the
// frontend always has something renderable without another network hop.
const PlaceholderImage = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMzAwIiBoZWlnaHQ9IjIwMCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMTAwJSIgaGVpZ2h0PSIxMDAlIiBmaWxsPSIjZjNmNGY2Ii8+PHRleHQgeD0iNTAlIiB5PSI1MCUiIGZvbnQtZmFtaWx5PSJBcmlhbCIgZm9udC1zaXplPSIxNCIgZmlsbD0iIzllYTNhOCIgdGV4dC1hbmNob3I9Im1pZGRsZSIgZHk9Ii4zZW0iPk5vIFBob3RvPC90ZXh0Pjwvc3ZnPg=="

// NormalizedProperty is the one stable output shape every search endpoint
// returns. Numeric fields default to 0, never null, except the documented
// nullable ones (distanceMiles).
type NormalizedProperty struct {
	ID        string `json:"id"`
	MLSNumber string `json:"mlsNumber"`

	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Subdivision string `json:"subdivision"`

	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	DistanceMiles *float64 `json:"distanceMiles"`

	PropertyType    string `json:"propertyType"`
	PropertySubType string `json:"propertySubType"`
	Style           string `json:"style"`
	Condition       string `json:"condition"`
	Status          string `json:"status"`
	IsActive        bool   `json:"isActive"`

	Sqft         int     `json:"sqft"`
	BasementSqft int     `json:"basementSqft"`
	TotalSqft    int     `json:"totalSqft"`
	LotSizeAcres float64 `json:"lotSizeAcres"`
	LotSizeSqft  float64 `json:"lotSizeSqft"`

	Beds         int     `json:"beds"`
	Baths        float64 `json:"baths"`
	GarageSpaces int     `json:"garageSpaces"`
	YearBuilt    int     `json:"yearBuilt"`
	Stories      int     `json:"stories"`

	ListPrice    float64 `json:"listPrice"`
	SoldPrice    float64 `json:"soldPrice"`
	PricePerSqft int     `json:"pricePerSqft"`

	FeatureFlags

	ImageURL string   `json:"imageUrl"`
	Images   []string `json:"images"`

	OnMarketDate string `json:"onMarketDate"`
	CloseDate    string `json:"closeDate"`
	DaysOnMarket int    `json:"daysOnMarket"`

	ListAgent Agent `json:"listAgent"`
}

type Agent struct {
	Name  string `json:"name"`
	MLSID string `json:"mlsId"`
	Phone string `json:"phone"`
}

// NormalizeOptions carries per-request context into normalization.
type NormalizeOptions struct {
	// Reference is the subject location; distance is computed only when both
	// it and the record carry non-zero coordinates.
	Reference *geo.Point

	// Now anchors days-on-market derivation. Zero means time.Now().
	Now time.Time

	// Sanitizer, when set, corrects implausible price magnitudes before any
	// derived fields are computed.
	Sanitizer *PriceSanitizer
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Normalize maps one raw upstream record into the canonical shape,
// computing every derived field.
func Normalize(p RawProperty, opts NormalizeOptions) NormalizedProperty {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	isActive := p.StandardStatus == "Active"

	// Above-grade finished area is the accurate "sqft"; generic living area
	// is the fallback.
	sqft := firstPositive(p.AboveGradeFinishedArea, p.LivingArea)
	basement := math.Max(p.BelowGradeFinishedArea, 0)
	totalSqft := sqft + basement

	listPrice := p.ListPrice
	soldPrice := p.ClosePrice
	if opts.Sanitizer != nil {
		listPrice = opts.Sanitizer.Correct("ListPrice", string(p.ListingKey), listPrice)
		soldPrice = opts.Sanitizer.Correct("ClosePrice", string(p.ListingKey), soldPrice)
	}

	price := soldPrice
	if isActive {
		price = listPrice
	}
	pricePerSqft := 0
	if price > 0 && totalSqft > 0 {
		pricePerSqft = int(math.Round(price / totalSqft))
	}

	var distance *float64
	if opts.Reference != nil && !opts.Reference.Zero() && (p.Latitude != 0 || p.Longitude != 0) {
		d := geo.Miles(*opts.Reference, geo.Point{Lat: p.Latitude, Lon: p.Longitude})
		distance = &d
	}

	images := make([]string, 0, len(p.Media))
	for _, m := range p.Media {
		if u := firstNonEmpty(m.MediaURL, m.PreferredPhotoURL); u != "" {
			images = append(images, u)
		}
	}
	imageURL := PlaceholderImage
	if len(images) > 0 {
		imageURL = images[0]
	}

	dom := firstPositive(p.DaysOnMarket, p.CumulativeDaysOnMarket)
	if dom == 0 && p.OnMarketDate != "" {
		if t, err := parseUpstreamDate(p.OnMarketDate); err == nil {
			if days := now.Sub(t).Hours() / 24; days > 0 {
				dom = math.Floor(days)
			}
		}
	}

	return NormalizedProperty{
		ID:        string(p.ListingKey),
		MLSNumber: string(p.ListingID),

		Address:     p.UnparsedAddress,
		City:        p.City,
		State:       p.StateOrProvince,
		ZipCode:     p.PostalCode,
		Subdivision: p.SubdivisionName,

		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		DistanceMiles: distance,

		PropertyType:    p.PropertyType,
		PropertySubType: p.PropertySubType,
		Style:           p.ArchitecturalStyle.First(),
		Condition:       firstNonEmpty(p.PropertyCondition.First(), "Average"),
		Status:          p.StandardStatus,
		IsActive:        isActive,

		Sqft:         int(sqft),
		BasementSqft: int(basement),
		TotalSqft:    int(totalSqft),
		LotSizeAcres: p.LotSizeAcres,
		LotSizeSqft:  p.LotSizeSquareFeet,

		Beds:         int(p.BedroomsTotal),
		Baths:        firstPositive(p.BathroomsTotalDecimal, p.BathroomsTotalInteger, p.BathroomsTotal),
		GarageSpaces: int(firstPositive(p.GarageSpaces, p.ParkingTotal)),
		YearBuilt:    int(p.YearBuilt),
		Stories:      int(p.StoriesTotal),

		ListPrice:    listPrice,
		SoldPrice:    soldPrice,
		PricePerSqft: pricePerSqft,

		FeatureFlags: extractFeatures(p),

		ImageURL: imageURL,
		Images:   images,

		OnMarketDate: p.OnMarketDate,
		CloseDate:    p.CloseDate,
		DaysOnMarket: int(dom),

		ListAgent: Agent{
			Name:  p.ListAgentFullName,
			MLSID: string(p.ListAgentMlsId),
			Phone: p.ListAgentPreferredPhone,
		},
	}
}

// NormalizeAll maps a page of raw records.
func NormalizeAll(raw []RawProperty, opts NormalizeOptions) []NormalizedProperty {
	out := make([]NormalizedProperty, 0, len(raw))
	for _, p := range raw {
		out = append(out, Normalize(p, opts))
	}
	return out
}

func parseUpstreamDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
