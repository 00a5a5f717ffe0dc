package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rental-quote/core/types"
)

// Markers appended to extras line descriptions when no rate resolves.
// An unpriceable extra never fails the quote; it is carried at zero
// cost with the marker.
const (
	MarkerPricingUnavailable = "(Pricing Unavailable)"
	MarkerUnknownItem        = "(Unknown Item)"
)

// ExtraLine is one priced extras line
type ExtraLine struct {
	Description string
	Qty         int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// CalculateExtras prices the requested extras against the catalog.
// Generators use day-bucketed rates; trailer-specific services use the
// product's per-trailer prices after id normalization. Unknown ids
// produce zero-cost marker lines and a warning.
func CalculateExtras(
	extras []types.ExtraRequest,
	product types.Product,
	days int,
	cat *types.PricingCatalog,
) ([]ExtraLine, []string) {
	var lines []ExtraLine
	var warnings []string

	for _, req := range extras {
		if gen, ok := cat.Generators[req.ExtraID]; ok {
			line, warning := generatorLine(req, gen, days)
			lines = append(lines, line)
			if warning != "" {
				warnings = append(warnings, warning)
			}
			continue
		}

		if price, key, ok := serviceUnitPrice(product, req.ExtraID); ok {
			unit := price
			lines = append(lines, ExtraLine{
				Description: key,
				Qty:         req.Qty,
				UnitPrice:   unit,
				Total:       unit.Mul(decimal.NewFromInt(int64(req.Qty))),
			})
			continue
		}

		lines = append(lines, ExtraLine{
			Description: fmt.Sprintf("%s %s", req.ExtraID, MarkerUnknownItem),
			Qty:         req.Qty,
			UnitPrice:   decimal.Zero,
			Total:       decimal.Zero,
		})
		warnings = append(warnings, fmt.Sprintf("extra %q not found in catalog, priced at 0", req.ExtraID))
	}

	return lines, warnings
}

// generatorLine prices one generator request by day bucket
func generatorLine(req types.ExtraRequest, gen types.GeneratorRates, days int) (ExtraLine, string) {
	unit, label, ok := generatorRate(gen, days)
	if !ok {
		return ExtraLine{
			Description: fmt.Sprintf("%s %s", req.ExtraID, MarkerPricingUnavailable),
			Qty:         req.Qty,
			UnitPrice:   decimal.Zero,
			Total:       decimal.Zero,
		}, fmt.Sprintf("generator %q has no usable rate, priced at 0", req.ExtraID)
	}

	return ExtraLine{
		Description: fmt.Sprintf("%s (%s)", req.ExtraID, label),
		Qty:         req.Qty,
		UnitPrice:   unit,
		Total:       unit.Mul(decimal.NewFromInt(int64(req.Qty))),
	}, ""
}

// generatorRate selects the generator rate for a rental length.
// Large-capacity generators lacking an event rate derive a daily rate
// as weekly/3.5 instead of billing a full week.
func generatorRate(gen types.GeneratorRates, days int) (decimal.Decimal, string, bool) {
	d := decimal.NewFromInt(int64(days))

	switch {
	case days <= 3:
		if gen.EventRate.Valid {
			return gen.EventRate.Decimal, "Event Rate", true
		}
		if gen.LargeCapacity && gen.WeeklyRate.Valid {
			daily := gen.WeeklyRate.Decimal.Div(decimal.NewFromFloat(3.5))
			return daily.Mul(d), "Daily Rate (derived from weekly)", true
		}
		if gen.WeeklyRate.Valid {
			return gen.WeeklyRate.Decimal, "Weekly Rate", true
		}
	case days <= 7:
		if gen.WeeklyRate.Valid {
			return gen.WeeklyRate.Decimal, "Weekly Rate", true
		}
		if gen.PeriodRate.Valid {
			return prorate28(gen.PeriodRate.Decimal, d), "28-Day Rate (prorated)", true
		}
	case days <= 28:
		if gen.PeriodRate.Valid {
			return gen.PeriodRate.Decimal, "28-Day Rate", true
		}
		if gen.WeeklyRate.Valid {
			return weeklyTimesWeeks(gen.WeeklyRate.Decimal, days), "Weekly Rate", true
		}
	default:
		if gen.PeriodRate.Valid {
			return prorate28(gen.PeriodRate.Decimal, d), "28-Day Rate (prorated)", true
		}
		if gen.WeeklyRate.Valid {
			return weeklyTimesWeeks(gen.WeeklyRate.Decimal, days), "Weekly Rate", true
		}
	}
	return decimal.Decimal{}, "", false
}

func weeklyTimesWeeks(weekly decimal.Decimal, days int) decimal.Decimal {
	weeks := decimal.NewFromInt(int64((days + 6) / 7))
	return weekly.Mul(weeks)
}

// serviceUnitPrice resolves a trailer-specific service price. The id
// is normalized in stages: exact match, then case/separator-insensitive
// match, then substring match as a last resort.
func serviceUnitPrice(product types.Product, extraID string) (decimal.Decimal, string, bool) {
	if price, ok := product.ExtraPrices[extraID]; ok {
		return price, extraID, true
	}

	want := normalizeID(extraID)
	for key, price := range product.ExtraPrices {
		if normalizeID(key) == want {
			return price, key, true
		}
	}
	for key, price := range product.ExtraPrices {
		if strings.Contains(normalizeID(key), want) || strings.Contains(want, normalizeID(key)) {
			return price, key, true
		}
	}
	return decimal.Decimal{}, "", false
}

// normalizeID lowercases and strips separators
func normalizeID(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
