package pricing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"rental-quote/core/types"
	"rental-quote/internal/errors"
)

func catalogWith(rates map[types.RateTier]decimal.Decimal) *types.PricingCatalog {
	return &types.PricingCatalog{
		Products: map[string]types.Product{
			"standard_3_stall_ada": {
				ID:    "standard_3_stall_ada",
				Rates: types.NewRateTable(rates),
			},
		},
	}
}

func standardSeason() types.SeasonalConfig {
	return types.SeasonalConfig{StandardRate: decimal.NewFromInt(1)}
}

func TestWeeklyRateSevenDays(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.TierWeekly: decimal.NewFromInt(1500),
	})

	cost, _, err := CalculateTrailerCost("standard_3_stall_ada", 7, types.UsageCommercial,
		date("2026-01-10"), standardSeason(), cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.Cost.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected 1500, got %s", cost.Cost)
	}
	if cost.Label != "Weekly Rate" {
		t.Errorf("unexpected label %q", cost.Label)
	}
}

func TestWeeklyRateRoundsWeeksUp(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.TierWeekly: decimal.NewFromInt(1000),
	})

	cost, _, err := CalculateTrailerCost("standard_3_stall_ada", 10, types.UsageCommercial,
		date("2026-01-10"), standardSeason(), cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10 days bills two weeks.
	if !cost.Cost.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected 2000, got %s", cost.Cost)
	}
}

func TestTwentyEightDayProration(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.TierWeekly: decimal.NewFromInt(1500),
		types.Tier28Day:  decimal.NewFromInt(4000),
	})

	cost28, _, err := CalculateTrailerCost("standard_3_stall_ada", 28, types.UsageCommercial,
		date("2026-01-10"), standardSeason(), cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost28.Cost.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("28-day rental should use the 28-day rate once, got %s", cost28.Cost)
	}

	cost56, _, err := CalculateTrailerCost("standard_3_stall_ada", 56, types.UsageCommercial,
		date("2026-01-10"), standardSeason(), cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost56.Cost.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("56-day rental should cost exactly 2x the 28-day rate, got %s", cost56.Cost)
	}
}

func TestEventUsageUsesEventStandardRate(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.TierEventStandard: decimal.NewFromInt(900),
		types.TierWeekly:        decimal.NewFromInt(1500),
	})

	cost, _, err := CalculateTrailerCost("standard_3_stall_ada", 3, types.UsageEvent,
		date("2026-01-10"), standardSeason(), cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.Cost.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected event standard 900, got %s", cost.Cost)
	}
}

func TestEventFallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		rates    map[types.RateTier]decimal.Decimal
		want     int64
		wantTier string
	}{
		{
			name: "premium first",
			rates: map[types.RateTier]decimal.Decimal{
				types.TierPremium:     decimal.NewFromInt(1100),
				types.TierPremiumPlus: decimal.NewFromInt(1300),
				types.TierWeekly:      decimal.NewFromInt(1500),
			},
			want:     1100,
			wantTier: "premium",
		},
		{
			name: "premium_platinum before weekly",
			rates: map[types.RateTier]decimal.Decimal{
				types.TierPremiumPlatinum: decimal.NewFromInt(1400),
				types.TierWeekly:          decimal.NewFromInt(1500),
			},
			want:     1400,
			wantTier: "premium_platinum",
		},
		{
			name: "weekly last resort",
			rates: map[types.RateTier]decimal.Decimal{
				types.TierWeekly: decimal.NewFromInt(1500),
			},
			want:     1500,
			wantTier: "weekly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := catalogWith(tt.rates)
			cost, _, err := CalculateTrailerCost("standard_3_stall_ada", 2, types.UsageEvent,
				date("2026-01-10"), standardSeason(), cat)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cost.Cost.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("expected %d, got %s", tt.want, cost.Cost)
			}
			if !strings.Contains(cost.Label, tt.wantTier+" fallback") {
				t.Errorf("expected label to annotate %q fallback, got %q", tt.wantTier, cost.Label)
			}
		})
	}
}

func TestEventUsageBeyondFourDaysUsesDurationBuckets(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.TierEventStandard: decimal.NewFromInt(900),
		types.TierWeekly:        decimal.NewFromInt(1500),
	})

	cost, _, err := CalculateTrailerCost("standard_3_stall_ada", 5, types.UsageEvent,
		date("2026-01-10"), standardSeason(), cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.Cost.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("5-day event rental should price as weekly, got %s", cost.Cost)
	}
}

func TestSeasonalMultiplierAppliesToEventBranch(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.TierEventStandard: decimal.NewFromInt(1000),
	})
	seasonal := types.SeasonalConfig{
		StandardRate: decimal.NewFromInt(1),
		Tiers: []types.SeasonalTier{
			{Name: "Peak", StartDate: "2026-06-01", EndDate: "2026-08-31", Rate: decimal.NewFromFloat(1.25)},
		},
	}

	cost, _, err := CalculateTrailerCost("standard_3_stall_ada", 2, types.UsageEvent,
		date("2026-07-04"), seasonal, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.Cost.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("expected 1250 with peak multiplier, got %s", cost.Cost)
	}
	if !strings.Contains(cost.Label, "Peak") {
		t.Errorf("expected label to carry season, got %q", cost.Label)
	}
}

func TestMonthlyBucketFallbackApproximation(t *testing.T) {
	// Only a weekly rate exists; a 6-month rental approximates the
	// monthly rate as weekly x 4.
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.TierWeekly: decimal.NewFromInt(1000),
	})

	cost, _, err := CalculateTrailerCost("standard_3_stall_ada", 196, types.UsageCommercial,
		date("2026-01-10"), standardSeason(), cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// weekly x 4 = 4000/28-day period; 196 days = 7 periods.
	if !cost.Cost.Equal(decimal.NewFromInt(28000)) {
		t.Errorf("expected 28000, got %s", cost.Cost)
	}
	if !strings.Contains(cost.Label, "approximated from weekly") {
		t.Errorf("expected approximation annotation, got %q", cost.Label)
	}
}

func TestMissingWeeklyApproximatedFromMonthly(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.Tier28Day: decimal.NewFromInt(4000),
	})

	cost, _, err := CalculateTrailerCost("standard_3_stall_ada", 7, types.UsageCommercial,
		date("2026-01-10"), standardSeason(), cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// monthly / 4 = 1000 per week.
	if !cost.Cost.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected 1000, got %s", cost.Cost)
	}
}

func TestUnknownTrailerFailsQuote(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{
		types.TierWeekly: decimal.NewFromInt(1500),
	})

	_, _, err := CalculateTrailerCost("luxury_10_stall", 7, types.UsageCommercial,
		date("2026-01-10"), standardSeason(), cat)
	if !errors.IsType(err, errors.TypePricingUnavailable) {
		t.Fatalf("expected PRICING_UNAVAILABLE, got %v", err)
	}
}

func TestNoViableRateAnywhereFails(t *testing.T) {
	cat := catalogWith(map[types.RateTier]decimal.Decimal{})

	_, _, err := CalculateTrailerCost("standard_3_stall_ada", 7, types.UsageCommercial,
		date("2026-01-10"), standardSeason(), cat)
	if !errors.IsType(err, errors.TypePricingUnavailable) {
		t.Fatalf("expected PRICING_UNAVAILABLE when the whole chain is empty, got %v", err)
	}
}
