package quote

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rental-quote/core/catalog"
	"rental-quote/core/distance"
	"rental-quote/core/types"
	"rental-quote/internal/cache"
	"rental-quote/internal/errors"
)

const branchAddress = "100 Depot Rd, Springfield, OH 45501"

type fakeStore struct {
	catalog  *types.PricingCatalog
	branches []types.BranchLocation
}

func (f *fakeStore) LoadCatalog(ctx context.Context) (*types.PricingCatalog, error) {
	return f.catalog, nil
}

func (f *fakeStore) LoadBranches(ctx context.Context) ([]types.BranchLocation, error) {
	return f.branches, nil
}

type fakeProvider struct {
	meters   float64
	routeErr error
	geoErr   error
	coords   distance.Coordinates
}

func (f *fakeProvider) Route(ctx context.Context, origin, destination string) (*distance.Route, error) {
	if f.routeErr != nil {
		return nil, f.routeErr
	}
	return &distance.Route{DistanceMeters: f.meters, DurationSeconds: f.meters / 20}, nil
}

func (f *fakeProvider) Geocode(ctx context.Context, address string) (distance.Coordinates, error) {
	if f.geoErr != nil {
		return distance.Coordinates{}, f.geoErr
	}
	return f.coords, nil
}

func testCatalog() *types.PricingCatalog {
	return &types.PricingCatalog{
		Products: map[string]types.Product{
			"standard_3_stall_ada": {
				ID: "standard_3_stall_ada",
				Rates: types.NewRateTable(map[types.RateTier]decimal.Decimal{
					types.TierWeekly: decimal.NewFromInt(1500),
				}),
				ExtraPrices: map[string]decimal.Decimal{
					"winter_package": decimal.NewFromInt(150),
				},
			},
		},
		Generators: map[string]types.GeneratorRates{
			"gen_dead": {ID: "gen_dead"},
		},
		Delivery: types.DeliveryConfig{
			BaseFee:            decimal.Zero,
			DefaultPerMileRate: decimal.NewFromFloat(3.50),
			FreeMileThreshold:  25,
		},
		Seasonal: types.SeasonalConfig{StandardRate: decimal.NewFromInt(1)},
	}
}

func newTestEngine(cat *types.PricingCatalog, provider distance.Provider) *Engine {
	store := &fakeStore{
		catalog:  cat,
		branches: []types.BranchLocation{{Name: "North Yard", Address: branchAddress}},
	}
	cs := catalog.NewCatalogStore(cache.New(time.Minute), store, nil)
	resolver := distance.NewResolver(cs, cache.New(time.Minute), provider, nil, distance.Options{
		CacheTTL:        time.Hour,
		MaxConcurrent:   4,
		Hub:             distance.Hub{Name: "Springfield Hub", Lat: 39.92, Lon: -83.81},
		AverageSpeedMPH: 45,
	})
	return NewEngine(cs, resolver, nil, DefaultValidDays)
}

func validRequest() *types.QuoteRequest {
	return &types.QuoteRequest{
		DeliveryLocation: "123 Main St, Dayton, OH 45402",
		TrailerType:      "standard_3_stall_ada",
		RentalStartDate:  "2026-01-10",
		RentalDays:       7,
		UsageType:        types.UsageCommercial,
	}
}

func TestGenerateQuoteExample(t *testing.T) {
	// 55 miles exactly.
	provider := &fakeProvider{meters: 55 * 1609.344}
	e := newTestEngine(testCatalog(), provider)

	req := validRequest()
	req.Extras = []types.ExtraRequest{{ExtraID: "gen_dead", Qty: 1}}

	resp, err := e.GenerateQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.LineItems) != 3 {
		t.Fatalf("expected trailer, delivery and extras lines, got %d", len(resp.LineItems))
	}

	if !resp.LineItems[0].Total.Equal(decimal.NewFromFloat(1500.00)) {
		t.Errorf("expected trailer line 1500.00, got %s", resp.LineItems[0].Total)
	}
	if !resp.LineItems[1].Total.Equal(decimal.NewFromFloat(192.50)) {
		t.Errorf("expected delivery line 192.50, got %s", resp.LineItems[1].Total)
	}
	if !resp.LineItems[2].Total.IsZero() {
		t.Errorf("expected unpriceable generator at 0.00, got %s", resp.LineItems[2].Total)
	}
	if !strings.Contains(resp.LineItems[2].Description, "(Pricing Unavailable)") {
		t.Errorf("expected pricing-unavailable marker, got %q", resp.LineItems[2].Description)
	}

	if !resp.Subtotal.Equal(decimal.NewFromFloat(1692.50)) {
		t.Errorf("expected subtotal 1692.50, got %s", resp.Subtotal)
	}
}

func TestSubtotalEqualsSumOfLineItems(t *testing.T) {
	provider := &fakeProvider{meters: 55 * 1609.344}
	e := newTestEngine(testCatalog(), provider)

	req := validRequest()
	req.Extras = []types.ExtraRequest{
		{ExtraID: "winter_package", Qty: 2},
		{ExtraID: "gen_dead", Qty: 1},
		{ExtraID: "unknown_thing", Qty: 3},
	}

	resp, err := e.GenerateQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := decimal.Zero
	for _, item := range resp.LineItems {
		sum = sum.Add(item.Total)
	}
	if !resp.Subtotal.Equal(sum) {
		t.Errorf("subtotal %s != sum of line items %s", resp.Subtotal, sum)
	}
	if !resp.Budget.Subtotal.Equal(resp.Subtotal) {
		t.Errorf("budget subtotal %s != subtotal %s", resp.Budget.Subtotal, resp.Subtotal)
	}
}

func TestUnknownTrailerFailsWithZeroLineItems(t *testing.T) {
	provider := &fakeProvider{meters: 55 * 1609.344}
	e := newTestEngine(testCatalog(), provider)

	req := validRequest()
	req.TrailerType = "luxury_10_stall"

	resp, err := e.GenerateQuote(context.Background(), req)
	if !errors.IsType(err, errors.TypePricingUnavailable) {
		t.Fatalf("expected PRICING_UNAVAILABLE, got %v", err)
	}
	if resp != nil {
		t.Error("expected no response on a fatal pricing failure")
	}
}

func TestCatalogUnavailableFailsQuote(t *testing.T) {
	provider := &fakeProvider{meters: 55 * 1609.344}
	e := newTestEngine(nil, provider)

	_, err := e.GenerateQuote(context.Background(), validRequest())
	if !errors.IsType(err, errors.TypeConfigUnavailable) {
		t.Fatalf("expected CONFIG_UNAVAILABLE, got %v", err)
	}
}

func TestStraightLineFallbackDegradesGracefully(t *testing.T) {
	provider := &fakeProvider{
		routeErr: errors.Provider("routing down", nil),
		coords:   distance.Coordinates{Lat: 39.76, Lon: -84.19},
	}
	e := newTestEngine(testCatalog(), provider)

	resp, err := e.GenerateQuote(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("expected fallback to keep the quote alive, got %v", err)
	}
	if !resp.Delivery.Estimated {
		t.Error("expected estimated delivery detail from the fallback")
	}
	if !strings.Contains(resp.Delivery.Label, "Estimated") && !resp.Delivery.FreeTier {
		t.Errorf("expected estimated label, got %q", resp.Delivery.Label)
	}

	found := false
	for _, w := range resp.Metadata.Warnings {
		if strings.Contains(w, "straight-line") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected straight-line warning, got %v", resp.Metadata.Warnings)
	}
}

func TestFullyUnresolvedLocationStillQuotes(t *testing.T) {
	provider := &fakeProvider{
		routeErr: errors.Provider("routing down", nil),
		geoErr:   errors.Provider("geocoder down", nil),
	}
	e := newTestEngine(testCatalog(), provider)

	resp, err := e.GenerateQuote(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("expected location issues to degrade, not fail: %v", err)
	}
	if !resp.Delivery.Cost.IsZero() {
		t.Errorf("expected zero delivery cost when unresolved, got %s", resp.Delivery.Cost)
	}
	if len(resp.Metadata.Warnings) == 0 {
		t.Error("expected a warning about the unresolved location")
	}
}

func TestQuoteValidityWindow(t *testing.T) {
	provider := &fakeProvider{meters: 55 * 1609.344}
	e := newTestEngine(testCatalog(), provider)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	resp, err := e.GenerateQuote(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Metadata.GeneratedAt.Equal(fixed) {
		t.Errorf("unexpected generated_at: %s", resp.Metadata.GeneratedAt)
	}
	if !resp.Metadata.ValidUntil.Equal(fixed.AddDate(0, 0, 14)) {
		t.Errorf("expected valid_until 14 days out, got %s", resp.Metadata.ValidUntil)
	}
	if resp.RequestID == "" || resp.QuoteID == "" {
		t.Error("expected request and quote ids")
	}
}

func TestInvalidRequestRejected(t *testing.T) {
	provider := &fakeProvider{meters: 55 * 1609.344}
	e := newTestEngine(testCatalog(), provider)

	tests := []struct {
		name   string
		mutate func(*types.QuoteRequest)
	}{
		{"missing location", func(r *types.QuoteRequest) { r.DeliveryLocation = "" }},
		{"missing trailer", func(r *types.QuoteRequest) { r.TrailerType = "" }},
		{"zero days", func(r *types.QuoteRequest) { r.RentalDays = 0 }},
		{"bad usage", func(r *types.QuoteRequest) { r.UsageType = "residential" }},
		{"bad date", func(r *types.QuoteRequest) { r.RentalStartDate = "next tuesday" }},
		{"zero qty extra", func(r *types.QuoteRequest) {
			r.Extras = []types.ExtraRequest{{ExtraID: "gen_dead", Qty: 0}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			if _, err := e.GenerateQuote(context.Background(), req); !errors.IsType(err, errors.TypeInput) {
				t.Errorf("expected INPUT_ERROR, got %v", err)
			}
		})
	}
}

func TestFreeTierDelivery(t *testing.T) {
	// 10 miles, inside the 25-mile free threshold.
	provider := &fakeProvider{meters: 10 * 1609.344}
	e := newTestEngine(testCatalog(), provider)

	resp, err := e.GenerateQuote(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Delivery.FreeTier {
		t.Error("expected free-tier delivery")
	}
	if !resp.Budget.DeliveryTotal.IsZero() {
		t.Errorf("expected zero delivery total, got %s", resp.Budget.DeliveryTotal)
	}
}
