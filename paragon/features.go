package paragon

import (
	"regexp"
	"strings"
)

// Feature flags are derived by scanning free-text listing fields with
// case-insensitive patterns. This is heuristic: agents describe the same
// feature many ways, so false negatives are expected and acceptable.
var (
	rePool          = regexp.MustCompile(`(?i)\bpool\b`)
	reFireplace     = regexp.MustCompile(`(?i)fireplace`)
	reBasement      = regexp.MustCompile(`(?i)basement`)
	reUpdatedKitchen = regexp.MustCompile(`(?i)(updated|remodeled|renovated|new)\s+kitchen`)
	reHardwood      = regexp.MustCompile(`(?i)(hardwood|wood\s+floor)`)
	reDeckPatio     = regexp.MustCompile(`(?i)(deck|patio)`)
	reWalkInCloset  = regexp.MustCompile(`(?i)walk[\s-]?in\s+closet`)
	reMasterSuite   = regexp.MustCompile(`(?i)(master|primary)\s+suite`)
)

type FeatureFlags struct {
	HasPool           bool `json:"hasPool"`
	HasFireplace      bool `json:"hasFireplace"`
	HasGarage         bool `json:"hasGarage"`
	HasBasement       bool `json:"hasBasement"`
	HasUpdatedKitchen bool `json:"hasUpdatedKitchen"`
	HasHardwoodFloors bool `json:"hasHardwoodFloors"`
	HasDeckPatio      bool `json:"hasDeckPatio"`
	HasWalkInCloset   bool `json:"hasWalkInCloset"`
	HasMasterSuite    bool `json:"hasMasterSuite"`
	IsNewConstruction bool `json:"isNewConstruction"`
	IsWaterfront      bool `json:"isWaterfront"`
}

func extractFeatures(p RawProperty) FeatureFlags {
	text := strings.Join([]string{
		p.InteriorFeatures.Join(),
		p.ExteriorFeatures.Join(),
		p.Flooring.Join(),
		p.Basement.Join(),
		p.PublicRemarks,
	}, " ")

	return FeatureFlags{
		HasPool:           p.PoolPrivateYN || rePool.MatchString(text),
		HasFireplace:      p.FireplacesTotal > 0 || reFireplace.MatchString(text),
		HasGarage:         p.GarageSpaces > 0,
		HasBasement:       p.BelowGradeFinishedArea > 0 || reBasement.MatchString(text),
		HasUpdatedKitchen: reUpdatedKitchen.MatchString(text),
		HasHardwoodFloors: reHardwood.MatchString(text),
		HasDeckPatio:      reDeckPatio.MatchString(text),
		HasWalkInCloset:   reWalkInCloset.MatchString(text),
		HasMasterSuite:    reMasterSuite.MatchString(text),
		IsNewConstruction: p.NewConstructionYN,
		IsWaterfront:      p.WaterfrontYN,
	}
}
