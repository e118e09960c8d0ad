// Package cmd - workload file commands
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lakehouse-cost/core/session"
	"lakehouse-cost/core/workload"
	"lakehouse-cost/internal/config"
	"lakehouse-cost/internal/errors"
)

var workloadForce bool

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Create and check workload files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var workloadInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a default workload built from the rate cards",
	Long: `Write the workload a new session would start with: one default job per
tier, the default storage zones, one warehouse and one development cluster.
The format follows the extension (.yaml/.yml or .json).`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkloadInit,
}

var workloadValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Parse and validate a workload file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workload.ParseFile(args[0])
		if err != nil {
			return err
		}
		jobs := 0
		for _, tj := range w.Tiers {
			jobs += len(tj.Jobs)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d jobs, %d warehouses, %d dev clusters, %s storage)\n",
			args[0], jobs, len(w.Warehouses), len(w.DevClusters), w.StorageMode)
		return nil
	},
}

func init() {
	workloadCmd.AddCommand(workloadInitCmd)
	workloadCmd.AddCommand(workloadValidateCmd)
	workloadInitCmd.Flags().BoolVar(&workloadForce, "force", false, "overwrite an existing file")
}

func runWorkloadInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil && !workloadForce {
		return errors.Inputf("%s already exists (use --force to overwrite)", path)
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	if err := workload.WriteFile(path, session.DefaultWorkload(cat, config.Get().Workload)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
