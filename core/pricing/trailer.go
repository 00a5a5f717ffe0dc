package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rental-quote/core/types"
	"rental-quote/internal/errors"
)

// Duration bucket thresholds, in days. Months are calendar-ish for
// bucket selection; proration is in 28-day units to match the
// weekly×4 ≈ monthly conversion.
const (
	eventMaxDays     = 4
	monthly2Days     = 60
	monthly6Days     = 180
	monthly18Days    = 540
	prorationDenom28 = 28
)

// TrailerCost is the computed base rental cost for a trailer
type TrailerCost struct {
	// Cost is the seasonal-adjusted cost, unrounded. Rounding happens
	// only at line-item emission.
	Cost decimal.Decimal

	// Label names the tier that priced the rental, annotated with any
	// fallback that fired.
	Label string
}

// CalculateTrailerCost computes the base rental cost for a trailer.
// It returns a PRICING_UNAVAILABLE error when the trailer id is
// unknown or no rate exists anywhere in the fallback chain; that
// failure is fatal to the whole quote.
func CalculateTrailerCost(
	trailerID string,
	days int,
	usage types.UsageType,
	start time.Time,
	seasonal types.SeasonalConfig,
	cat *types.PricingCatalog,
) (TrailerCost, []string, error) {
	product, ok := cat.Products[trailerID]
	if !ok {
		return TrailerCost{}, nil, errors.PricingUnavailable("trailer", trailerID)
	}

	season, warnings := DetermineSeason(start, seasonal)

	var base decimal.Decimal
	var label string
	if usage == types.UsageEvent && days <= eventMaxDays {
		base, label, ok = eventRate(product.Rates)
	} else {
		base, label, ok = durationRate(product.Rates, days)
	}
	if !ok {
		return TrailerCost{}, warnings, errors.PricingUnavailable("trailer", trailerID)
	}

	cost := base.Mul(season.Multiplier)
	if season.Label != StandardSeasonLabel {
		label = fmt.Sprintf("%s, %s season", label, season.Label)
	}
	return TrailerCost{Cost: cost, Label: label}, warnings, nil
}

// eventRate selects the event-usage rate, falling through the premium
// ladder to weekly. The first present value wins.
func eventRate(rates types.RateTable) (decimal.Decimal, string, bool) {
	rate, tier, ok := rates.First(
		types.TierEventStandard,
		types.TierPremium,
		types.TierPremiumPlus,
		types.TierPremiumPlatinum,
		types.TierWeekly,
	)
	if !ok {
		return decimal.Decimal{}, "", false
	}
	if tier == types.TierEventStandard {
		return rate, "Event Standard Rate", true
	}
	return rate, fmt.Sprintf("Event Rate (%s fallback)", tier), true
}

// durationRate selects and prorates a base rate by duration bucket.
// Each bucket falls back to an adjacent one, approximating missing
// fields with weekly×4 ≈ monthly and monthly/4 ≈ weekly.
func durationRate(rates types.RateTable, days int) (decimal.Decimal, string, bool) {
	d := decimal.NewFromInt(int64(days))

	switch {
	case days >= monthly18Days:
		return monthlyCost(rates, d, "18+ Month Rate",
			types.Tier18PlusMonth, types.Tier6PlusMonth, types.Tier2To5Month)
	case days >= monthly6Days:
		return monthlyCost(rates, d, "6+ Month Rate",
			types.Tier6PlusMonth, types.Tier2To5Month, types.Tier18PlusMonth)
	case days >= monthly2Days:
		return monthlyCost(rates, d, "2-5 Month Rate",
			types.Tier2To5Month, types.Tier6PlusMonth, types.Tier18PlusMonth)
	case days >= prorationDenom28:
		if rate, ok := rates.Lookup(types.Tier28Day); ok {
			return prorate28(rate, d), "28-Day Rate (prorated)", true
		}
		// Adjacent monthly bucket stands in for a missing 28-day rate.
		if rate, tier, ok := rates.First(types.Tier2To5Month, types.Tier6PlusMonth); ok {
			return prorate28(rate, d), fmt.Sprintf("28-Day Rate (%s fallback)", tier), true
		}
		if weekly, ok := rates.Lookup(types.TierWeekly); ok {
			return prorate28(weekly.Mul(decimal.NewFromInt(4)), d), "28-Day Rate (approximated from weekly)", true
		}
		return decimal.Decimal{}, "", false
	default:
		weeks := decimal.NewFromInt(int64((days + 6) / 7))
		if rate, ok := rates.Lookup(types.TierWeekly); ok {
			return rate.Mul(weeks), "Weekly Rate", true
		}
		// monthly/4 approximates a missing weekly rate.
		if rate, tier, ok := rates.First(types.Tier28Day, types.Tier2To5Month); ok {
			weekly := rate.Div(decimal.NewFromInt(4))
			return weekly.Mul(weeks), fmt.Sprintf("Weekly Rate (approximated from %s)", tier), true
		}
		return decimal.Decimal{}, "", false
	}
}

// monthlyCost resolves a monthly-bucket cost, prorated in 28-day units
func monthlyCost(rates types.RateTable, days decimal.Decimal, label string, chain ...types.RateTier) (decimal.Decimal, string, bool) {
	if rate, tier, ok := rates.First(chain...); ok {
		if tier != chain[0] {
			label = fmt.Sprintf("%s (%s fallback)", label, tier)
		}
		return prorate28(rate, days), label, true
	}
	if rate, ok := rates.Lookup(types.Tier28Day); ok {
		return prorate28(rate, days), fmt.Sprintf("%s (28_day fallback)", label), true
	}
	if weekly, ok := rates.Lookup(types.TierWeekly); ok {
		return prorate28(weekly.Mul(decimal.NewFromInt(4)), days), fmt.Sprintf("%s (approximated from weekly)", label), true
	}
	return decimal.Decimal{}, "", false
}

func prorate28(monthlyRate, days decimal.Decimal) decimal.Decimal {
	return monthlyRate.Mul(days).Div(decimal.NewFromInt(prorationDenom28))
}
