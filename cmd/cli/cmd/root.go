// Package cmd provides the CLI commands for rental-quote.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rental-quote/internal/config"
	"rental-quote/internal/logging"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rental-quote",
	Short: "Generate rental quotes for trailer deliveries",
	Long: `rental-quote prices trailer rentals: tiered rental rates with
seasonal adjustment, per-mile delivery cost from the nearest branch,
and extras such as generators and service packages.

Examples:
  rental-quote quote --request request.json
  rental-quote quote --location "123 Main St, Springfield, OH 45501" --trailer standard_3_stall_ada --days 7 --usage commercial --start 2026-06-12
  rental-quote catalog publish --seed catalog.hcl`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches . and ./config for rental-quote.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("rental-quote version 0.1.0")
	},
}
