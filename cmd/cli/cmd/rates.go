// Package cmd - rate card inspection
package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"lakehouse-cost/core/catalog"
	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

var (
	ratesCategory string
	ratesFamily   string
	ratesStorage  bool
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "List compute families, instances and storage classes",
	Long: `Load the configured rate cards and list what they offer.

Without flags, prints catalog statistics and the compute families offered
to each tier.

Examples:
  lakehouse-cost rates
  lakehouse-cost rates --category jobs --family "Jobs Compute"
  lakehouse-cost rates --category warehouse
  lakehouse-cost rates --storage`,
	Args: cobra.NoArgs,
	RunE: runRates,
}

func init() {
	ratesCmd.Flags().StringVarP(&ratesCategory, "category", "c", "", "list instances for a category (jobs, warehouse, development)")
	ratesCmd.Flags().StringVar(&ratesFamily, "family", "", "restrict instances to one compute family")
	ratesCmd.Flags().BoolVar(&ratesStorage, "storage", false, "list storage classes and bracket rates")
}

func runRates(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	switch {
	case ratesStorage:
		printStorageClasses(cmd, cat)
	case ratesCategory != "":
		category := types.Category(strings.ToLower(ratesCategory))
		if !category.IsValid() {
			return errors.Inputf("unknown category %q", ratesCategory)
		}
		printInstances(cmd, cat, category, ratesFamily)
	default:
		printOverview(cmd, cat)
	}
	return nil
}

func newTable(cmd *cobra.Command, headers ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(cmd.OutOrStdout())
	t.SetHeader(headers)
	t.SetAutoFormatHeaders(false)
	return t
}

func printOverview(cmd *cobra.Command, cat *catalog.RateCatalog) {
	stats := cat.Stats()
	t := newTable(cmd, "Category", "Families", "Entries")
	for _, c := range types.Categories {
		s := stats.ByCategory[c]
		t.Append([]string{c.String(), fmt.Sprint(s.Families), fmt.Sprint(s.Entries)})
	}
	t.SetFooter([]string{"Total", "", fmt.Sprint(stats.Total)})
	t.Render()

	fmt.Fprintln(cmd.OutOrStdout())
	tiers := newTable(cmd, "Tier", "Compute Families")
	for _, tier := range types.Tiers {
		tiers.Append([]string{tier.DisplayName(), strings.Join(cat.ComputeFamiliesForTier(tier), ", ")})
	}
	tiers.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d storage classes: %s\n", stats.StorageClasses, strings.Join(cat.StorageClasses(), ", "))
}

func printInstances(cmd *cobra.Command, cat *catalog.RateCatalog, category types.Category, family string) {
	t := newTable(cmd, "Family", "Instance", "vCPU", "Memory GB", "DBU/h", "Unit Rate", "Infra Rate", "Max Workers")
	for _, e := range cat.Instances(category, family) {
		t.Append([]string{
			e.ComputeFamily, e.InstanceID, e.VCPU.String(), e.MemoryGB.String(), e.DBUPerHour.String(),
			e.UnitRate.String(), e.InfraRate.String(), fmt.Sprint(cat.MaxWorkerNodesFor(e.InstanceID)),
		})
	}
	t.Render()
}

func printStorageClasses(cmd *cobra.Command, cat *catalog.RateCatalog) {
	t := newTable(cmd, "Storage Class", "≤ 50 TB", "≤ 500 TB", "> 500 TB")
	for _, class := range cat.StorageClasses() {
		r, ok := cat.StorageRate(class)
		if !ok {
			continue
		}
		t.Append([]string{r.StorageClass, r.Tier1.String(), r.Tier2.String(), r.Tier3.String()})
	}
	t.Render()
}
