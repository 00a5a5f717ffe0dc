// Package cmd - quote command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rental-quote/adapters/geocode"
	"rental-quote/adapters/store/hclfile"
	"rental-quote/adapters/store/postgres"
	"rental-quote/core/catalog"
	"rental-quote/core/distance"
	"rental-quote/core/quote"
	"rental-quote/core/types"
	"rental-quote/internal/async"
	"rental-quote/internal/cache"
)

var (
	requestFile string
	location    string
	trailer     string
	startDate   string
	rentalDays  int
	usage       string
	extras      []string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Generate a priced quote for a trailer rental",
	Long: `Price a trailer rental and print the quote as JSON.

The request can come from a JSON file or from flags. Extras take the
form id or id:quantity.

Examples:
  rental-quote quote --request request.json
  rental-quote quote --location "123 Main St, Springfield, OH 45501" \
    --trailer standard_3_stall_ada --start 2026-06-12 --days 7 \
    --usage commercial --extra gen_7kw:2 --extra winter_package`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&requestFile, "request", "r", "", "quote request JSON file")
	quoteCmd.Flags().StringVarP(&location, "location", "l", "", "delivery address")
	quoteCmd.Flags().StringVarP(&trailer, "trailer", "t", "", "trailer type id")
	quoteCmd.Flags().StringVarP(&startDate, "start", "s", "", "rental start date (YYYY-MM-DD)")
	quoteCmd.Flags().IntVarP(&rentalDays, "days", "d", 0, "rental duration in days")
	quoteCmd.Flags().StringVarP(&usage, "usage", "u", "commercial", "usage type (commercial, event)")
	quoteCmd.Flags().StringArrayVarP(&extras, "extra", "e", nil, "extra item, id or id:quantity (repeatable)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	req, err := buildRequest()
	if err != nil {
		return err
	}

	engine, bg, err := buildEngine()
	if err != nil {
		return err
	}
	defer bg.Close()

	resp, err := engine.GenerateQuote(ctx, req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding quote: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func buildRequest() (*types.QuoteRequest, error) {
	if requestFile != "" {
		data, err := os.ReadFile(requestFile)
		if err != nil {
			return nil, fmt.Errorf("reading request file: %w", err)
		}
		var req types.QuoteRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("parsing request file: %w", err)
		}
		return &req, nil
	}

	req := &types.QuoteRequest{
		DeliveryLocation: location,
		TrailerType:      trailer,
		RentalStartDate:  startDate,
		RentalDays:       rentalDays,
		UsageType:        types.UsageType(usage),
	}
	for _, e := range extras {
		er, err := parseExtra(e)
		if err != nil {
			return nil, err
		}
		req.Extras = append(req.Extras, er)
	}
	return req, nil
}

func parseExtra(s string) (types.ExtraRequest, error) {
	id := s
	qty := 1
	if i := lastColon(s); i >= 0 {
		id = s[:i]
		if _, err := fmt.Sscanf(s[i+1:], "%d", &qty); err != nil {
			return types.ExtraRequest{}, fmt.Errorf("invalid extra %q: quantity must be a number", s)
		}
	}
	return types.ExtraRequest{ExtraID: id, Qty: qty}, nil
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

// buildEngine wires the quote engine from configuration: durable
// catalog store (PostgreSQL when a DSN is set, otherwise the HCL seed
// file), in-memory caches, the routing provider and the shared
// background worker.
func buildEngine() (*quote.Engine, *async.Worker, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	bg := async.NewWorker(64)

	catalogCache := cache.New(cfg.Cache.CatalogTTL)
	catalogStore := catalog.NewCatalogStore(catalogCache, store, bg)

	provider := geocode.New(cfg.Distance.ProviderBaseURL, cfg.Distance.ProviderTimeout)
	distanceCache := cache.New(cfg.Cache.DistanceTTL)
	resolver := distance.NewResolver(catalogStore, distanceCache, provider, bg, distance.Options{
		CacheTTL:      cfg.Cache.DistanceTTL,
		MaxConcurrent: cfg.Distance.MaxConcurrent,
		Hub: distance.Hub{
			Name:    cfg.Distance.HubName,
			Address: cfg.Distance.HubAddress,
			Lat:     cfg.Distance.HubLat,
			Lon:     cfg.Distance.HubLon,
		},
		AverageSpeedMPH: cfg.Distance.AverageSpeedMPH,
	})

	return quote.NewEngine(catalogStore, resolver, bg, cfg.Quote.ValidDays), bg, nil
}

func openStore() (catalog.Store, error) {
	if cfg.DB.DSN != "" {
		return postgres.Open(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns)
	}
	if cfg.Catalog.SeedPath != "" {
		return hclfile.New(cfg.Catalog.SeedPath), nil
	}
	return nil, fmt.Errorf("no catalog source configured: set db.dsn or catalog.seed_path")
}
