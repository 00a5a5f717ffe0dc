// Package pricing implements the tiered quote cost calculators.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rental-quote/core/types"
)

// StandardSeasonLabel is the label used when no seasonal tier matches
const StandardSeasonLabel = "Standard"

const dateLayout = "2006-01-02"

// Season is a resolved seasonal adjustment
type Season struct {
	Multiplier decimal.Decimal
	Label      string
}

// DetermineSeason returns the first tier, in catalog order, whose
// inclusive [start, end] range contains the start date. Malformed
// tiers are skipped with a warning. No match yields the standard
// multiplier.
func DetermineSeason(start time.Time, cfg types.SeasonalConfig) (Season, []string) {
	var warnings []string
	day := start.Truncate(24 * time.Hour)

	for _, tier := range cfg.Tiers {
		from, err := time.Parse(dateLayout, tier.StartDate)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("seasonal tier %q has malformed start_date %q, skipped", tier.Name, tier.StartDate))
			continue
		}
		to, err := time.Parse(dateLayout, tier.EndDate)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("seasonal tier %q has malformed end_date %q, skipped", tier.Name, tier.EndDate))
			continue
		}
		if day.Before(from) || day.After(to) {
			continue
		}
		return Season{Multiplier: tier.Rate, Label: tier.Name}, warnings
	}

	standard := cfg.StandardRate
	if standard.IsZero() {
		standard = decimal.NewFromInt(1)
	}
	return Season{Multiplier: standard, Label: StandardSeasonLabel}, warnings
}
