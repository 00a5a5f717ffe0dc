package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rental-quote/core/types"
)

// CalculateDeliveryCost computes the distance-tiered delivery cost.
// Distances within the free-mile threshold cost nothing and the
// seasonal multiplier never applies to them. The estimated flag only
// changes the label, never the formula.
func CalculateDeliveryCost(
	dist *types.DistanceResult,
	cat *types.PricingCatalog,
	multiplier decimal.Decimal,
	seasonLabel string,
	isEstimated bool,
) types.DeliveryDetail {
	detail := types.DeliveryDetail{
		BranchName:        dist.Branch.Name,
		DistanceMiles:     dist.DistanceMiles,
		Estimated:         isEstimated,
		WithinServiceArea: dist.WithinServiceArea,
		SeasonLabel:       seasonLabel,
	}

	cfg := cat.Delivery
	if dist.DistanceMiles <= cfg.FreeMileThreshold {
		detail.FreeTier = true
		detail.Cost = decimal.Zero
		detail.Label = fmt.Sprintf("Free Delivery (within %.0f miles)", cfg.FreeMileThreshold)
		return detail
	}

	appliedBase := cfg.BaseFee.Mul(multiplier)
	appliedRate := perMileRate(cfg, dist.Branch.Name).Mul(multiplier)
	miles := decimal.NewFromFloat(dist.DistanceMiles)

	detail.AppliedBaseFee = appliedBase
	detail.AppliedPerMile = appliedRate
	detail.Cost = appliedBase.Add(miles.Mul(appliedRate))
	detail.Label = fmt.Sprintf("Delivery from %s", dist.Branch.Name)
	if isEstimated {
		detail.Label += " (Estimated)"
	}
	return detail
}

// perMileRate selects the per-mile rate by a coarse substring match on
// the branch name, in catalog order, falling back to the default rate.
func perMileRate(cfg types.DeliveryConfig, branchName string) decimal.Decimal {
	name := strings.ToLower(branchName)
	for _, override := range cfg.PerMileOverrides {
		if override.NameContains == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(override.NameContains)) {
			return override.PerMileRate
		}
	}
	return cfg.DefaultPerMileRate
}
