package types

import (
	"time"

	"github.com/shopspring/decimal"

	"rental-quote/internal/errors"
)

// UsageType selects the pricing mode for a rental
type UsageType string

const (
	UsageCommercial UsageType = "commercial"
	UsageEvent      UsageType = "event"
)

// ExtraRequest is one requested add-on line
type ExtraRequest struct {
	ExtraID string `json:"extra_id"`
	Qty     int    `json:"qty"`
}

// QuoteRequest is the input to quote generation
type QuoteRequest struct {
	DeliveryLocation string         `json:"delivery_location"`
	TrailerType      string         `json:"trailer_type"`
	RentalStartDate  string         `json:"rental_start_date"`
	RentalDays       int            `json:"rental_days"`
	UsageType        UsageType      `json:"usage_type"`
	Extras           []ExtraRequest `json:"extras,omitempty"`
}

// Validate checks required fields and value ranges
func (r *QuoteRequest) Validate() error {
	if r.DeliveryLocation == "" {
		return errors.Input("delivery_location is required")
	}
	if r.TrailerType == "" {
		return errors.Input("trailer_type is required")
	}
	if r.RentalDays <= 0 {
		return errors.Input("rental_days must be positive")
	}
	if r.UsageType != UsageCommercial && r.UsageType != UsageEvent {
		return errors.Input("usage_type must be commercial or event")
	}
	if _, err := r.StartDate(); err != nil {
		return errors.Input("rental_start_date must be an ISO date")
	}
	for _, extra := range r.Extras {
		if extra.ExtraID == "" {
			return errors.Input("extra_id is required for each extra")
		}
		if extra.Qty <= 0 {
			return errors.Input("extra qty must be positive")
		}
	}
	return nil
}

// StartDate parses the rental start date
func (r *QuoteRequest) StartDate() (time.Time, error) {
	return time.Parse("2006-01-02", r.RentalStartDate)
}

// LineItem is one priced line on the quote
type LineItem struct {
	Description string          `json:"description"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// DeliveryDetail describes how the delivery cost was computed
type DeliveryDetail struct {
	BranchName        string          `json:"branch_name"`
	DistanceMiles     float64         `json:"distance_miles"`
	Estimated         bool            `json:"estimated"`
	WithinServiceArea bool            `json:"within_service_area"`
	SeasonLabel       string          `json:"season_label"`
	AppliedBaseFee    decimal.Decimal `json:"applied_base_fee"`
	AppliedPerMile    decimal.Decimal `json:"applied_per_mile_rate"`
	FreeTier          bool            `json:"free_tier"`
	Cost              decimal.Decimal `json:"cost"`
	Label             string          `json:"label"`
}

// RentalDetail describes the rental terms on the quote
type RentalDetail struct {
	StartDate        string          `json:"start_date"`
	Days             int             `json:"days"`
	UsageType        UsageType       `json:"usage_type"`
	SeasonLabel      string          `json:"season_label"`
	SeasonMultiplier decimal.Decimal `json:"season_multiplier"`
}

// ProductDetail describes the priced trailer product
type ProductDetail struct {
	TrailerType string          `json:"trailer_type"`
	RateLabel   string          `json:"rate_label"`
	Cost        decimal.Decimal `json:"cost"`
}

// BudgetDetail summarizes the quote totals
type BudgetDetail struct {
	TrailerTotal  decimal.Decimal `json:"trailer_total"`
	DeliveryTotal decimal.Decimal `json:"delivery_total"`
	ExtrasTotal   decimal.Decimal `json:"extras_total"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// QuoteMetadata carries generation metadata and warnings
type QuoteMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	ValidUntil  time.Time `json:"valid_until"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// QuoteResponse is the assembled quote
type QuoteResponse struct {
	RequestID string          `json:"request_id"`
	QuoteID   string          `json:"quote_id"`
	LineItems []LineItem      `json:"line_items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Delivery  DeliveryDetail  `json:"delivery"`
	Rental    RentalDetail    `json:"rental"`
	Product   ProductDetail   `json:"product"`
	Budget    BudgetDetail    `json:"budget"`
	Metadata  QuoteMetadata   `json:"metadata"`
}
