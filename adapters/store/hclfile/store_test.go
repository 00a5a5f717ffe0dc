package hclfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	rqerrors "rental-quote/internal/errors"

	"rental-quote/core/types"
)

const seedSource = `
seasonal {
  standard_rate = 1.0

  tier {
    name       = "Peak Summer"
    start_date = "2026-05-01"
    end_date   = "2026-09-15"
    rate       = 1.15
  }
}

delivery {
  base_fee              = 0
  default_per_mile_rate = 3.50
  free_mile_threshold   = 25

  override {
    name_contains = "north"
    per_mile_rate = 4.25
  }
}

product "standard_3_stall_ada" {
  rates = {
    weekly   = 1500
    "28_day" = 4000
  }

  extra_prices = {
    winter_package = 150
  }
}

generator "gen_7kw" {
  event_rate  = 250
  weekly_rate = 450
  period_rate = 1200
}

generator "gen_25kw" {
  weekly_rate    = 900
  large_capacity = true
}

branch "North Yard" {
  address = "100 Depot Rd, Springfield, OH 45501"
}

branch "South Yard" {
  address = "200 River Rd, Cincinnati, OH 45202"
}
`

func writeSeed(t *testing.T, src string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.hcl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return New(path)
}

func TestLoadCatalog(t *testing.T) {
	store := writeSeed(t, seedSource)

	cat, err := store.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	p, ok := cat.Products["standard_3_stall_ada"]
	if !ok {
		t.Fatalf("product missing, got %v", cat.Products)
	}
	weekly, ok := p.Rates.Lookup(types.TierWeekly)
	if !ok || !weekly.Equal(dec(t, "1500")) {
		t.Errorf("weekly rate = %s ok=%v, want 1500", weekly, ok)
	}
	monthly, ok := p.Rates.Lookup(types.Tier28Day)
	if !ok || !monthly.Equal(dec(t, "4000")) {
		t.Errorf("28-day rate = %s ok=%v, want 4000", monthly, ok)
	}
	if got := p.ExtraPrices["winter_package"]; !got.Equal(dec(t, "150")) {
		t.Errorf("winter_package = %s, want 150", got)
	}

	g := cat.Generators["gen_7kw"]
	if !g.EventRate.Valid || !g.EventRate.Decimal.Equal(dec(t, "250")) {
		t.Errorf("gen_7kw event rate = %v, want 250", g.EventRate)
	}
	if g.LargeCapacity {
		t.Error("gen_7kw should not be large capacity")
	}
	big := cat.Generators["gen_25kw"]
	if !big.LargeCapacity {
		t.Error("gen_25kw should be large capacity")
	}
	if big.EventRate.Valid {
		t.Error("gen_25kw has no event rate, NullDecimal should be invalid")
	}

	if !cat.Delivery.DefaultPerMileRate.Equal(dec(t, "3.50")) {
		t.Errorf("per-mile rate = %s, want 3.50", cat.Delivery.DefaultPerMileRate)
	}
	if cat.Delivery.FreeMileThreshold != 25 {
		t.Errorf("free threshold = %v, want 25", cat.Delivery.FreeMileThreshold)
	}
	if len(cat.Delivery.PerMileOverrides) != 1 || cat.Delivery.PerMileOverrides[0].NameContains != "north" {
		t.Errorf("overrides = %v", cat.Delivery.PerMileOverrides)
	}

	if len(cat.Seasonal.Tiers) != 1 || cat.Seasonal.Tiers[0].Name != "Peak Summer" {
		t.Fatalf("seasonal tiers = %v", cat.Seasonal.Tiers)
	}
	if !cat.Seasonal.Tiers[0].Rate.Equal(dec(t, "1.15")) {
		t.Errorf("tier rate = %s, want 1.15", cat.Seasonal.Tiers[0].Rate)
	}
}

func TestLoadBranchesKeepsFileOrder(t *testing.T) {
	store := writeSeed(t, seedSource)

	branches, err := store.LoadBranches(context.Background())
	if err != nil {
		t.Fatalf("LoadBranches: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(branches))
	}
	if branches[0].Name != "North Yard" || branches[1].Name != "South Yard" {
		t.Errorf("branch order = %q, %q", branches[0].Name, branches[1].Name)
	}
	if branches[0].Address != "100 Depot Rd, Springfield, OH 45501" {
		t.Errorf("address = %q", branches[0].Address)
	}
}

func TestMissingFileIsConfigUnavailable(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nope.hcl"))
	if _, err := store.LoadCatalog(context.Background()); !rqerrors.IsType(err, rqerrors.TypeConfigUnavailable) {
		t.Errorf("err = %v, want CONFIG_UNAVAILABLE", err)
	}
}

func TestMalformedFileIsConfigUnavailable(t *testing.T) {
	store := writeSeed(t, `product "x" { rates = `)
	if _, err := store.LoadCatalog(context.Background()); !rqerrors.IsType(err, rqerrors.TypeConfigUnavailable) {
		t.Errorf("err = %v, want CONFIG_UNAVAILABLE", err)
	}
}

func TestEmptySeedIsConfigUnavailable(t *testing.T) {
	store := writeSeed(t, `seasonal { standard_rate = 1.0 }`)
	if _, err := store.LoadCatalog(context.Background()); !rqerrors.IsType(err, rqerrors.TypeConfigUnavailable) {
		t.Errorf("err = %v, want CONFIG_UNAVAILABLE", err)
	}
}

func TestNonNumberRateRejected(t *testing.T) {
	store := writeSeed(t, `product "x" { rates = { weekly = "cheap" } }`)
	if _, err := store.LoadCatalog(context.Background()); !rqerrors.IsType(err, rqerrors.TypeConfigUnavailable) {
		t.Errorf("err = %v, want CONFIG_UNAVAILABLE", err)
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
