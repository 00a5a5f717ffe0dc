// Package types defines the shared data model for the quote engine.
package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RateTier identifies a product rate tier. The set is closed: a missing
// tier is a checkable lookup miss, not a silent dictionary miss.
type RateTier string

const (
	TierWeekly          RateTier = "weekly"
	Tier28Day           RateTier = "28_day"
	Tier2To5Month       RateTier = "2_5_month"
	Tier6PlusMonth      RateTier = "6_plus_month"
	Tier18PlusMonth     RateTier = "18_plus_month"
	TierEventStandard   RateTier = "event_standard"
	TierPremium         RateTier = "premium"
	TierPremiumPlus     RateTier = "premium_plus"
	TierPremiumPlatinum RateTier = "premium_platinum"
)

// String returns the tier identifier
func (t RateTier) String() string {
	return string(t)
}

// RateTable is a typed lookup table of tier rates
type RateTable struct {
	rates map[RateTier]decimal.Decimal
}

// NewRateTable builds a table from the given tier rates
func NewRateTable(rates map[RateTier]decimal.Decimal) RateTable {
	copied := make(map[RateTier]decimal.Decimal, len(rates))
	for tier, rate := range rates {
		copied[tier] = rate
	}
	return RateTable{rates: copied}
}

// Lookup returns the rate for a tier and whether it is present
func (r RateTable) Lookup(tier RateTier) (decimal.Decimal, bool) {
	rate, ok := r.rates[tier]
	return rate, ok
}

// First returns the rate of the first present tier in the given order
func (r RateTable) First(tiers ...RateTier) (decimal.Decimal, RateTier, bool) {
	for _, tier := range tiers {
		if rate, ok := r.rates[tier]; ok {
			return rate, tier, true
		}
	}
	return decimal.Decimal{}, "", false
}

// MarshalJSON encodes the table as a flat tier → rate object
func (r RateTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.rates)
}

// UnmarshalJSON decodes a flat tier → rate object
func (r *RateTable) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.rates)
}

// Product is a rentable trailer product with its tier rates and
// per-trailer extras prices
type Product struct {
	ID          string                     `json:"id"`
	Rates       RateTable                  `json:"rates"`
	ExtraPrices map[string]decimal.Decimal `json:"extra_prices,omitempty"`
}

// GeneratorRates holds the rate fields for a generator product.
// Absent fields participate in the fallback hierarchy.
type GeneratorRates struct {
	ID            string              `json:"id"`
	EventRate     decimal.NullDecimal `json:"event_rate"`
	WeeklyRate    decimal.NullDecimal `json:"weekly_rate"`
	PeriodRate    decimal.NullDecimal `json:"period_rate"`
	LargeCapacity bool                `json:"large_capacity,omitempty"`
}

// BranchRateOverride maps a branch-name fragment to a per-mile rate.
// Overrides are evaluated in catalog order; first substring match wins.
type BranchRateOverride struct {
	NameContains string          `json:"name_contains"`
	PerMileRate  decimal.Decimal `json:"per_mile_rate"`
}

// DeliveryConfig holds delivery fee configuration
type DeliveryConfig struct {
	BaseFee            decimal.Decimal      `json:"base_fee"`
	DefaultPerMileRate decimal.Decimal      `json:"default_per_mile_rate"`
	PerMileOverrides   []BranchRateOverride `json:"per_mile_overrides,omitempty"`
	FreeMileThreshold  float64              `json:"free_mile_threshold"`
}

// SeasonalTier is a named date-range rate adjustment. Dates are
// inclusive ISO dates; malformed values are skipped at resolution time.
type SeasonalTier struct {
	Name      string          `json:"name"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Rate      decimal.Decimal `json:"rate"`
}

// SeasonalConfig holds the standard multiplier plus ordered tiers.
// Tier order is significant: overlap resolves to the first match.
type SeasonalConfig struct {
	StandardRate decimal.Decimal `json:"standard_rate"`
	Tiers        []SeasonalTier  `json:"tiers,omitempty"`
}

// PricingCatalog is the full rate catalog. It is refreshed by an
// external sync process and read-only here.
type PricingCatalog struct {
	Products   map[string]Product        `json:"products"`
	Generators map[string]GeneratorRates `json:"generators"`
	Delivery   DeliveryConfig            `json:"delivery"`
	Seasonal   SeasonalConfig            `json:"seasonal"`
}

// BranchLocation is a physical service location used as the
// delivery-distance origin
type BranchLocation struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}
