package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lakehouse-cost/core/workload"
	"lakehouse-cost/internal/errors"
)

const (
	computeCSV = `Compute type,Instance,vCPU,Memory (GB),DBU/hour,Rate/hour,onDemandLinuxHr
DLT Advanced Compute,m5.xlarge,4,16,0.75,0.3,0.192
Jobs Compute,m5.xlarge,4,16,0.75,0.15,0.192
All-Purpose Compute,m5.xlarge,4,16,0.75,0.4125,0.192
`
	warehouseCSV = `Compute type,Instance,vCPU,Memory (GB),DBU/hour,Rate/hour,onDemandLinuxHr
SQL Pro Compute,Small,0,0,12,6.6,1.5
`
	storageCSV = `S3_storage,Rate/GB_50TB,Rate/GB_500TB,Rate/GB_over500TB
S3 Standard,0.023,0.022,0.021
`
	workloadYAML = `storage_mode: direct
tiers:
  - tier: Curated
    enabled: true
    jobs:
      - name: nightly
        runtime_hours: 2
        runs_per_month: 10
        compute_family: Jobs Compute
        instance_id: m5.xlarge
        worker_nodes: 2
`
)

func writeRates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"compute_rates.csv":       computeCSV,
		"sql_warehouse_rates.csv": warehouseCSV,
		"storage_rates.csv":       storageCSV,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// run executes the root command with fresh flag values
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outputFormat, exportPath, showDetails, useColor = "", "", true, false
	ratesCategory, ratesFamily, ratesStorage = "", "", false
	ratesDir, workloadForce, configForce = "", false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEstimateCommand(t *testing.T) {
	rates := writeRates(t)
	path := filepath.Join(t.TempDir(), "workload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(workloadYAML), 0644))

	out, err := run(t, "estimate", "--rates", rates, "--format", "json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"monthly": "20.52"`)
	assert.Contains(t, out, `"source": "cli"`)

	export := filepath.Join(t.TempDir(), "report.xlsx")
	out, err = run(t, "estimate", "--rates", rates, "--export", export, path)
	require.NoError(t, err)
	assert.Contains(t, out, "$20.52")

	book, err := excelize.OpenFile(export)
	require.NoError(t, err)
	defer book.Close()
	assert.Contains(t, book.GetSheetList(), "Summaries")
}

func TestEstimateCommandErrors(t *testing.T) {
	rates := writeRates(t)
	path := filepath.Join(t.TempDir(), "workload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(workloadYAML), 0644))

	_, err := run(t, "estimate", "--rates", t.TempDir(), path)
	assert.True(t, errors.IsType(err, errors.TypeDataLoad), "missing rate cards: %v", err)

	_, err = run(t, "estimate", "--rates", rates, "--format", "xlsx", path)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = run(t, "estimate", "--rates", rates, "--export", "report.csv", path)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = run(t, "estimate", "--rates", rates, filepath.Join(t.TempDir(), "absent.hcl"))
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestRatesCommand(t *testing.T) {
	rates := writeRates(t)

	out, err := run(t, "rates", "--rates", rates)
	require.NoError(t, err)
	assert.Contains(t, out, "L1 / Curated")
	assert.Contains(t, out, "Jobs Compute")

	out, err = run(t, "rates", "--rates", rates, "--category", "warehouse")
	require.NoError(t, err)
	assert.Contains(t, out, "SQL Pro Compute")

	out, err = run(t, "rates", "--rates", rates, "--storage")
	require.NoError(t, err)
	assert.Contains(t, out, "S3 Standard")

	_, err = run(t, "rates", "--rates", rates, "--category", "gpu")
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestWorkloadInitAndValidate(t *testing.T) {
	rates := writeRates(t)
	path := filepath.Join(t.TempDir(), "default.yaml")

	_, err := run(t, "workload", "init", "--rates", rates, path)
	require.NoError(t, err)

	w, err := workload.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, w.Tiers, 4)
	assert.Equal(t, "Primary BI Warehouse", w.Warehouses[0].Name)

	_, err = run(t, "workload", "init", "--rates", rates, path)
	assert.Error(t, err, "refuses to overwrite")

	out, err := run(t, "workload", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (4 jobs, 1 warehouses, 1 dev clusters, direct storage)")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	assert.FileExists(t, path)

	_, err = run(t, "config", "init", path)
	assert.True(t, errors.IsType(err, errors.TypeConfig))

	_, err = run(t, "config", "init", "--force", path)
	assert.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lakehouse-cost version "+Version)
}
