package paragon

import "log"

// PriceSanitizer detects prices whose magnitude cannot be real (feed glitches
// occasionally append extra zeros) and scales them back into a plausible
// band. Every correction is logged; nothing is altered silently.
type PriceSanitizer struct {
	// Ceiling above which a price is considered suspect.
	Ceiling float64
	// PlausibleMin/Max bound the band a corrected value must land in for the
	// correction to be kept; otherwise the original value passes through.
	PlausibleMin float64
	PlausibleMax float64
}

// DefaultPriceSanitizer matches the residential market this feed serves.
func DefaultPriceSanitizer() *PriceSanitizer {
	return &PriceSanitizer{
		Ceiling:      50_000_000,
		PlausibleMin: 10_000,
		PlausibleMax: 50_000_000,
	}
}

// Correct returns the price unchanged unless it exceeds the ceiling and
// dividing by 1000 lands it in the plausible band.
func (s *PriceSanitizer) Correct(field, listingKey string, price float64) float64 {
	if s == nil || price <= s.Ceiling {
		return price
	}
	scaled := price / 1000
	if scaled >= s.PlausibleMin && scaled <= s.PlausibleMax {
		log.Printf("[WARN] price correction on %s for listing %s: %.0f -> %.0f", field, listingKey, price, scaled)
		return scaled
	}
	return price
}
