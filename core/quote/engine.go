// Package quote composes catalog, distance and pricing into quote
// responses. The Engine owns its caches and collaborators explicitly;
// nothing here lives in package-level state.
package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rental-quote/core/catalog"
	"rental-quote/core/distance"
	"rental-quote/core/pricing"
	"rental-quote/core/types"
	"rental-quote/internal/async"
	"rental-quote/internal/errors"
	"rental-quote/internal/logging"
)

// DefaultValidDays is how long a quote stays valid
const DefaultValidDays = 14

// Engine generates quotes
type Engine struct {
	catalog   *catalog.CatalogStore
	distance  *distance.Resolver
	bg        *async.Worker
	validDays int
	now       func() time.Time
}

// NewEngine creates a quote engine
func NewEngine(cat *catalog.CatalogStore, dist *distance.Resolver, bg *async.Worker, validDays int) *Engine {
	if validDays <= 0 {
		validDays = DefaultValidDays
	}
	return &Engine{
		catalog:   cat,
		distance:  dist,
		bg:        bg,
		validDays: validDays,
		now:       time.Now,
	}
}

// GenerateQuote prices one request. Catalog-load and trailer-rate
// failures abort the quote; extras and location issues degrade
// gracefully with markers and warnings.
func (e *Engine) GenerateQuote(ctx context.Context, req *types.QuoteRequest) (*types.QuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start, err := req.StartDate()
	if err != nil {
		return nil, errors.Input("rental_start_date must be an ISO date")
	}

	cat, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}

	var warnings []string

	dist := e.resolveDistance(ctx, req.DeliveryLocation, &warnings)

	season, _ := pricing.DetermineSeason(start, cat.Seasonal)

	// Trailer pricing re-derives the season; its warnings cover the
	// malformed-tier cases, so they are not collected twice.
	trailer, trailerWarnings, err := pricing.CalculateTrailerCost(
		req.TrailerType, req.RentalDays, req.UsageType, start, cat.Seasonal, cat)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, trailerWarnings...)

	var deliveryDetail types.DeliveryDetail
	if dist != nil {
		deliveryDetail = pricing.CalculateDeliveryCost(dist, cat, season.Multiplier, season.Label, dist.Estimated)
	} else {
		deliveryDetail = types.DeliveryDetail{
			SeasonLabel: season.Label,
			Cost:        decimal.Zero,
			Label:       "Delivery (Location Unresolved)",
		}
	}

	product := cat.Products[req.TrailerType]
	extraLines, extraWarnings := pricing.CalculateExtras(req.Extras, product, req.RentalDays, cat)
	warnings = append(warnings, extraWarnings...)

	resp := e.assemble(req, trailer, deliveryDetail, extraLines, season, warnings)
	e.reportWarnings(resp.RequestID, warnings)
	return resp, nil
}

// resolveDistance finds the nearest branch, falling back to the
// straight-line estimate before giving up. A nil result degrades the
// quote instead of failing it.
func (e *Engine) resolveDistance(ctx context.Context, location string, warnings *[]string) *types.DistanceResult {
	dist, err := e.distance.GetNearestBranch(ctx, location)
	if err == nil {
		return dist
	}
	if !errors.IsType(err, errors.TypeLocationUnresolved) {
		*warnings = append(*warnings, fmt.Sprintf("distance resolution failed: %v", err))
		return nil
	}

	est, estErr := e.distance.EstimateStraightLine(ctx, location)
	if estErr != nil {
		*warnings = append(*warnings, fmt.Sprintf("delivery location could not be resolved: %s", location))
		return nil
	}
	*warnings = append(*warnings, "delivery distance is a straight-line estimate")
	return est
}

// assemble builds the response. Rounding to two decimals happens here,
// at line-item emission, and nowhere earlier.
func (e *Engine) assemble(
	req *types.QuoteRequest,
	trailer pricing.TrailerCost,
	delivery types.DeliveryDetail,
	extras []pricing.ExtraLine,
	season pricing.Season,
	warnings []string,
) *types.QuoteResponse {
	var items []types.LineItem

	trailerTotal := trailer.Cost.Round(2)
	items = append(items, types.LineItem{
		Description: fmt.Sprintf("%s (%s)", req.TrailerType, trailer.Label),
		Qty:         1,
		UnitPrice:   trailerTotal,
		Total:       trailerTotal,
	})

	deliveryTotal := delivery.Cost.Round(2)
	items = append(items, types.LineItem{
		Description: delivery.Label,
		Qty:         1,
		UnitPrice:   deliveryTotal,
		Total:       deliveryTotal,
	})

	extrasTotal := decimal.Zero
	for _, line := range extras {
		total := line.Total.Round(2)
		items = append(items, types.LineItem{
			Description: line.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice.Round(2),
			Total:       total,
		})
		extrasTotal = extrasTotal.Add(total)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
	}

	generatedAt := e.now().UTC()
	return &types.QuoteResponse{
		RequestID: uuid.NewString(),
		QuoteID:   uuid.NewString(),
		LineItems: items,
		Subtotal:  subtotal,
		Delivery:  delivery,
		Rental: types.RentalDetail{
			StartDate:        req.RentalStartDate,
			Days:             req.RentalDays,
			UsageType:        req.UsageType,
			SeasonLabel:      season.Label,
			SeasonMultiplier: season.Multiplier,
		},
		Product: types.ProductDetail{
			TrailerType: req.TrailerType,
			RateLabel:   trailer.Label,
			Cost:        trailerTotal,
		},
		Budget: types.BudgetDetail{
			TrailerTotal:  trailerTotal,
			DeliveryTotal: deliveryTotal,
			ExtrasTotal:   extrasTotal,
			Subtotal:      subtotal,
		},
		Metadata: types.QuoteMetadata{
			GeneratedAt: generatedAt,
			ValidUntil:  generatedAt.AddDate(0, 0, e.validDays),
			Warnings:    warnings,
		},
	}
}

// reportWarnings ships recoverable issues to the out-of-band error
// log, best-effort; reporting can never fail the request.
func (e *Engine) reportWarnings(requestID string, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	report := func() {
		for _, w := range warnings {
			logging.Warn("quote warning", zap.String("request_id", requestID), zap.String("warning", w))
		}
	}
	if e.bg == nil {
		report()
		return
	}
	e.bg.Submit(report)
}
