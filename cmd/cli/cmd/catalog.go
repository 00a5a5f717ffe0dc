// Package cmd - catalog commands
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rental-quote/adapters/store/hclfile"
	"rental-quote/adapters/store/postgres"
	"rental-quote/internal/logging"
)

var seedPath string

// catalogCmd groups catalog management commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the pricing catalog",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// publishCmd loads an HCL seed file and publishes it to PostgreSQL as
// a new catalog revision, replacing the branch list.
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish an HCL seed file to the catalog database",
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&seedPath, "seed", "", "HCL seed file to publish")
	publishCmd.MarkFlagRequired("seed")
	catalogCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if cfg.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be configured to publish a catalog")
	}

	seed := hclfile.New(seedPath)
	cat, err := seed.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	branches, err := seed.LoadBranches(ctx)
	if err != nil {
		return err
	}

	db, err := postgres.Open(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns)
	if err != nil {
		return err
	}
	if err := db.PublishCatalog(ctx, cat); err != nil {
		return err
	}
	if err := db.ReplaceBranches(ctx, branches); err != nil {
		return err
	}

	logging.Info("catalog published",
		zap.String("seed", seedPath),
		zap.Int("products", len(cat.Products)),
		zap.Int("branches", len(branches)))
	fmt.Printf("Published %d products and %d branches from %s\n",
		len(cat.Products), len(branches), seedPath)
	return nil
}
