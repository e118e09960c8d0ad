// Package cmd provides the CLI commands for lakehouse-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lakehouse-cost/core/catalog"
	"lakehouse-cost/core/ratecard"
	"lakehouse-cost/internal/config"
	"lakehouse-cost/internal/logging"
)

// Version is the tool version, overridden at build time with -ldflags
var Version = "0.1.0"

var (
	cfgFile  string
	ratesDir string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lakehouse-cost",
	Short: "Estimate costs for a lakehouse data platform",
	Long: `lakehouse-cost estimates monthly, quarterly, half-yearly and yearly cost
for a data platform: pipeline jobs per tier, object storage, SQL warehouses
and development clusters.

Rates come from spreadsheet rate cards (CSV or XLSX). Workloads are described
in HCL, YAML or JSON files.

Examples:
  lakehouse-cost estimate workload.hcl
  lakehouse-cost estimate --format json --export report.xlsx workload.yaml
  lakehouse-cost rates --category warehouse
  lakehouse-cost serve --addr :8080`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.json or .yaml)")
	rootCmd.PersistentFlags().StringVar(&ratesDir, "rates", "", "rate card directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workloadCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	} else {
		config.Get().ApplyEnv()
	}

	cfg := config.Get()
	if ratesDir != "" {
		cfg.Pricing.RatesDir = ratesDir
	}

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// loadCatalog reads the configured rate cards. Any failure is fatal to the
// calling command.
func loadCatalog() (*catalog.RateCatalog, error) {
	return ratecard.LoadCatalog(config.Get().Pricing)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lakehouse-cost version %s\n", Version)
	},
}
