// Package cmd - estimate command
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lakehouse-cost/core/cost"
	"lakehouse-cost/core/output"
	"lakehouse-cost/core/session"
	"lakehouse-cost/core/workload"
	"lakehouse-cost/internal/config"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/logging"
)

var (
	outputFormat string
	exportPath   string
	showDetails  bool
	useColor     bool
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate <workload-file>",
	Short: "Estimate costs for a workload file",
	Long: `Price a workload against the configured rate cards and print the result.

The workload file may be HCL (.hcl), YAML (.yaml, .yml) or JSON.

Examples:
  lakehouse-cost estimate workload.hcl
  lakehouse-cost estimate --format json workload.yaml
  lakehouse-cost estimate --export report.xlsx workload.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (table, json); default from config")
	estimateCmd.Flags().StringVarP(&exportPath, "export", "e", "", "also write an .xlsx workbook to this path")
	estimateCmd.Flags().BoolVarP(&showDetails, "details", "d", true, "show per-record breakdown")
	estimateCmd.Flags().BoolVar(&useColor, "color", false, "colorize section headers")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	startTime := time.Now()
	cfg := config.Get()

	format := output.Format(cfg.Output.DefaultFormat)
	if outputFormat != "" {
		format = output.Format(outputFormat)
	}
	format, err := output.ParseFormat(string(format))
	if err != nil {
		return err
	}
	if format == output.FormatXLSX {
		return errors.Input("xlsx is written with --export, not printed")
	}

	w, err := workload.ParseFile(args[0])
	if err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	// A session applies the same clamping and projection caching as the server.
	sess := session.New("cli", cat, cfg.Workload)
	if err := sess.Replace(w); err != nil {
		return err
	}
	est, priced, err := sess.Recalculate(cost.WithSource(ctx, "cli"), cost.NewEngine(cat))
	if err != nil {
		return err
	}

	report := output.NewReport(est, priced, "cli", Version)
	registry := output.NewRegistry(showDetails)
	if format == output.FormatTable {
		if f, ok := registry.Get(output.FormatTable); ok {
			f.(*output.TableFormatter).Color = useColor
		}
	}
	if err := registry.Render(cmd.OutOrStdout(), format, report); err != nil {
		return err
	}

	if exportPath != "" {
		if err := writeExport(registry, exportPath, report); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", exportPath)
	}

	logging.Debug("estimate complete",
		zap.String("workload", args[0]),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("warnings", len(est.Warnings)),
	)
	return nil
}

func writeExport(registry *output.Registry, path string, report *output.Report) error {
	if ext := filepath.Ext(path); ext != ".xlsx" {
		return errors.Inputf("export path must end in .xlsx, got %q", ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Export("create "+path, err)
	}
	if err := registry.Render(f, output.FormatXLSX, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Export("close "+path, err)
	}
	return nil
}
