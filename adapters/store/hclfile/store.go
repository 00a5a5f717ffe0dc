// Package hclfile loads the pricing catalog and branch list from an
// HCL seed file. The file defines product, generator, delivery,
// seasonal and branch blocks; rates are plain numbers and are held as
// decimals once parsed.
package hclfile

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	rqerrors "rental-quote/internal/errors"
	"rental-quote/internal/logging"

	"rental-quote/core/types"
)

// Store reads catalog data from a single HCL file on disk. It
// implements catalog.Store; the file is re-read on every load so an
// external sync process can replace it in place.
type Store struct {
	path string
}

// New creates a seed-file store for the given path.
func New(path string) *Store {
	return &Store{path: path}
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "seasonal"},
		{Type: "delivery"},
		{Type: "product", LabelNames: []string{"id"}},
		{Type: "generator", LabelNames: []string{"id"}},
		{Type: "branch", LabelNames: []string{"name"}},
	},
}

// LoadCatalog parses the seed file and returns the pricing catalog.
func (s *Store) LoadCatalog(ctx context.Context) (*types.PricingCatalog, error) {
	content, err := s.parse()
	if err != nil {
		return nil, err
	}

	cat := &types.PricingCatalog{
		Products:   map[string]types.Product{},
		Generators: map[string]types.GeneratorRates{},
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "product":
			p, err := decodeProduct(block)
			if err != nil {
				return nil, err
			}
			cat.Products[p.ID] = p
		case "generator":
			g, err := decodeGenerator(block)
			if err != nil {
				return nil, err
			}
			cat.Generators[g.ID] = g
		case "delivery":
			d, err := decodeDelivery(block)
			if err != nil {
				return nil, err
			}
			cat.Delivery = d
		case "seasonal":
			sc, err := decodeSeasonal(block)
			if err != nil {
				return nil, err
			}
			cat.Seasonal = sc
		}
	}

	if len(cat.Products) == 0 {
		return nil, rqerrors.ConfigUnavailable(
			fmt.Sprintf("seed file %s defines no products", s.path), nil)
	}
	logging.Debug("catalog seed file loaded",
		zap.String("path", s.path),
		zap.Int("products", len(cat.Products)),
		zap.Int("generators", len(cat.Generators)))
	return cat, nil
}

// LoadBranches parses the seed file and returns the branch list in
// file order.
func (s *Store) LoadBranches(ctx context.Context) ([]types.BranchLocation, error) {
	content, err := s.parse()
	if err != nil {
		return nil, err
	}

	var branches []types.BranchLocation
	for _, block := range content.Blocks {
		if block.Type != "branch" {
			continue
		}
		b, err := decodeBranch(block)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, nil
}

func (s *Store) parse() (*hcl.BodyContent, error) {
	src, err := os.ReadFile(s.path)
	if err != nil {
		return nil, rqerrors.ConfigUnavailable(
			fmt.Sprintf("reading catalog seed file %s", s.path), err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, s.path)
	if diags.HasErrors() {
		return nil, rqerrors.ConfigUnavailable(
			fmt.Sprintf("parsing catalog seed file %s", s.path), diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, rqerrors.ConfigUnavailable(
			fmt.Sprintf("invalid catalog seed file %s", s.path), diags)
	}
	return content, nil
}

func decodeProduct(block *hcl.Block) (types.Product, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return types.Product{}, blockErr(block, diags)
	}
	p := types.Product{ID: block.Labels[0]}
	for name, attr := range attrs {
		switch name {
		case "rates":
			m, err := decimalMap(attr)
			if err != nil {
				return types.Product{}, err
			}
			rates := map[types.RateTier]decimal.Decimal{}
			for tier, rate := range m {
				rates[types.RateTier(tier)] = rate
			}
			p.Rates = types.NewRateTable(rates)
		case "extra_prices":
			m, err := decimalMap(attr)
			if err != nil {
				return types.Product{}, err
			}
			p.ExtraPrices = m
		default:
			return types.Product{}, attrErr(block, name)
		}
	}
	return p, nil
}

func decodeGenerator(block *hcl.Block) (types.GeneratorRates, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return types.GeneratorRates{}, blockErr(block, diags)
	}
	g := types.GeneratorRates{ID: block.Labels[0]}
	for name, attr := range attrs {
		switch name {
		case "event_rate", "weekly_rate", "period_rate":
			d, err := decimalValue(attr)
			if err != nil {
				return types.GeneratorRates{}, err
			}
			nd := decimal.NullDecimal{Decimal: d, Valid: true}
			switch name {
			case "event_rate":
				g.EventRate = nd
			case "weekly_rate":
				g.WeeklyRate = nd
			case "period_rate":
				g.PeriodRate = nd
			}
		case "large_capacity":
			b, err := boolValue(attr)
			if err != nil {
				return types.GeneratorRates{}, err
			}
			g.LargeCapacity = b
		default:
			return types.GeneratorRates{}, attrErr(block, name)
		}
	}
	return g, nil
}

var deliverySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "base_fee"},
		{Name: "default_per_mile_rate", Required: true},
		{Name: "free_mile_threshold"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "override"},
	},
}

func decodeDelivery(block *hcl.Block) (types.DeliveryConfig, error) {
	content, diags := block.Body.Content(deliverySchema)
	if diags.HasErrors() {
		return types.DeliveryConfig{}, blockErr(block, diags)
	}
	var cfg types.DeliveryConfig
	for name, attr := range content.Attributes {
		switch name {
		case "base_fee":
			d, err := decimalValue(attr)
			if err != nil {
				return types.DeliveryConfig{}, err
			}
			cfg.BaseFee = d
		case "default_per_mile_rate":
			d, err := decimalValue(attr)
			if err != nil {
				return types.DeliveryConfig{}, err
			}
			cfg.DefaultPerMileRate = d
		case "free_mile_threshold":
			f, err := floatValue(attr)
			if err != nil {
				return types.DeliveryConfig{}, err
			}
			cfg.FreeMileThreshold = f
		}
	}
	for _, ob := range content.Blocks {
		ov, err := decodeOverride(ob)
		if err != nil {
			return types.DeliveryConfig{}, err
		}
		cfg.PerMileOverrides = append(cfg.PerMileOverrides, ov)
	}
	return cfg, nil
}

var overrideSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name_contains", Required: true},
		{Name: "per_mile_rate", Required: true},
	},
}

func decodeOverride(block *hcl.Block) (types.BranchRateOverride, error) {
	content, diags := block.Body.Content(overrideSchema)
	if diags.HasErrors() {
		return types.BranchRateOverride{}, blockErr(block, diags)
	}
	var ov types.BranchRateOverride
	for name, attr := range content.Attributes {
		switch name {
		case "name_contains":
			s, err := stringValue(attr)
			if err != nil {
				return types.BranchRateOverride{}, err
			}
			ov.NameContains = s
		case "per_mile_rate":
			d, err := decimalValue(attr)
			if err != nil {
				return types.BranchRateOverride{}, err
			}
			ov.PerMileRate = d
		}
	}
	return ov, nil
}

var seasonalSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "standard_rate"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "tier"},
	},
}

var tierSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name", Required: true},
		{Name: "start_date", Required: true},
		{Name: "end_date", Required: true},
		{Name: "rate", Required: true},
	},
}

func decodeSeasonal(block *hcl.Block) (types.SeasonalConfig, error) {
	content, diags := block.Body.Content(seasonalSchema)
	if diags.HasErrors() {
		return types.SeasonalConfig{}, blockErr(block, diags)
	}
	var cfg types.SeasonalConfig
	if attr, ok := content.Attributes["standard_rate"]; ok {
		d, err := decimalValue(attr)
		if err != nil {
			return types.SeasonalConfig{}, err
		}
		cfg.StandardRate = d
	}
	for _, tb := range content.Blocks {
		tier, err := decodeTier(tb)
		if err != nil {
			return types.SeasonalConfig{}, err
		}
		cfg.Tiers = append(cfg.Tiers, tier)
	}
	return cfg, nil
}

func decodeTier(block *hcl.Block) (types.SeasonalTier, error) {
	content, diags := block.Body.Content(tierSchema)
	if diags.HasErrors() {
		return types.SeasonalTier{}, blockErr(block, diags)
	}
	var tier types.SeasonalTier
	for name, attr := range content.Attributes {
		switch name {
		case "name":
			s, err := stringValue(attr)
			if err != nil {
				return types.SeasonalTier{}, err
			}
			tier.Name = s
		case "start_date":
			s, err := stringValue(attr)
			if err != nil {
				return types.SeasonalTier{}, err
			}
			tier.StartDate = s
		case "end_date":
			s, err := stringValue(attr)
			if err != nil {
				return types.SeasonalTier{}, err
			}
			tier.EndDate = s
		case "rate":
			d, err := decimalValue(attr)
			if err != nil {
				return types.SeasonalTier{}, err
			}
			tier.Rate = d
		}
	}
	return tier, nil
}

var branchSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "address", Required: true},
	},
}

func decodeBranch(block *hcl.Block) (types.BranchLocation, error) {
	content, diags := block.Body.Content(branchSchema)
	if diags.HasErrors() {
		return types.BranchLocation{}, blockErr(block, diags)
	}
	b := types.BranchLocation{Name: block.Labels[0]}
	if attr, ok := content.Attributes["address"]; ok {
		s, err := stringValue(attr)
		if err != nil {
			return types.BranchLocation{}, err
		}
		b.Address = s
	}
	return b, nil
}

// evalAttr evaluates an attribute expression. Seed files are static,
// so evaluation uses no variables or functions; unknown values are
// rejected rather than passed through.
func evalAttr(attr *hcl.Attribute) (cty.Value, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, rqerrors.ConfigUnavailable(
			fmt.Sprintf("evaluating %s at %s", attr.Name, attr.Range), diags)
	}
	if !val.IsKnown() || val.IsNull() {
		return cty.NilVal, rqerrors.ConfigUnavailable(
			fmt.Sprintf("%s at %s has no usable value", attr.Name, attr.Range), nil)
	}
	return val, nil
}

func decimalValue(attr *hcl.Attribute) (decimal.Decimal, error) {
	val, err := evalAttr(attr)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if val.Type() != cty.Number {
		return decimal.Decimal{}, typeErr(attr, "number", val)
	}
	d, err := decimal.NewFromString(val.AsBigFloat().Text('f', -1))
	if err != nil {
		return decimal.Decimal{}, rqerrors.ConfigUnavailable(
			fmt.Sprintf("converting %s at %s", attr.Name, attr.Range), err)
	}
	return d, nil
}

func floatValue(attr *hcl.Attribute) (float64, error) {
	val, err := evalAttr(attr)
	if err != nil {
		return 0, err
	}
	if val.Type() != cty.Number {
		return 0, typeErr(attr, "number", val)
	}
	f, _ := val.AsBigFloat().Float64()
	return f, nil
}

func stringValue(attr *hcl.Attribute) (string, error) {
	val, err := evalAttr(attr)
	if err != nil {
		return "", err
	}
	if val.Type() != cty.String {
		return "", typeErr(attr, "string", val)
	}
	return val.AsString(), nil
}

func boolValue(attr *hcl.Attribute) (bool, error) {
	val, err := evalAttr(attr)
	if err != nil {
		return false, err
	}
	if val.Type() != cty.Bool {
		return false, typeErr(attr, "bool", val)
	}
	return val.True(), nil
}

// decimalMap decodes an object expression like { weekly = 1500 } into
// a name-to-decimal map.
func decimalMap(attr *hcl.Attribute) (map[string]decimal.Decimal, error) {
	val, err := evalAttr(attr)
	if err != nil {
		return nil, err
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, typeErr(attr, "map of numbers", val)
	}
	out := map[string]decimal.Decimal{}
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		if v.Type() != cty.Number || !v.IsKnown() || v.IsNull() {
			return nil, typeErr(attr, "map of numbers", val)
		}
		d, err := decimal.NewFromString(v.AsBigFloat().Text('f', -1))
		if err != nil {
			return nil, rqerrors.ConfigUnavailable(
				fmt.Sprintf("converting %s at %s", attr.Name, attr.Range), err)
		}
		out[k.AsString()] = d
	}
	return out, nil
}

func blockErr(block *hcl.Block, diags hcl.Diagnostics) error {
	return rqerrors.ConfigUnavailable(
		fmt.Sprintf("invalid %s block at %s", block.Type, block.DefRange), diags)
}

func attrErr(block *hcl.Block, name string) error {
	return rqerrors.ConfigUnavailable(
		fmt.Sprintf("unsupported attribute %q in %s block at %s", name, block.Type, block.DefRange), nil)
}

func typeErr(attr *hcl.Attribute, want string, got cty.Value) error {
	return rqerrors.ConfigUnavailable(
		fmt.Sprintf("%s at %s must be a %s, got %s", attr.Name, attr.Range, want, got.Type().FriendlyName()), nil)
}
