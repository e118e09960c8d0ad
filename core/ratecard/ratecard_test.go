package ratecard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lakehouse-cost/core/catalog"
	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/config"
	"lakehouse-cost/internal/errors"
)

const computeCSV = `Compute type,Instance,vCPU,Memory (GB),DBU/hour,Rate/hour,onDemandLinuxHr
DLT Advanced Compute,m5.xlarge,4,16,0.75,0.3,0.192
Jobs Compute,m5.xlarge,4,16,0.75,0.15,0.192
,,,,,,
All-Purpose Compute,m5.xlarge,4,16,0.75,0.4125,0.192
`

const warehouseCSV = `compute_family,instance_id,vcpu,memory_gb,dbu_per_hour,unit_rate,infra_rate
SQL Pro Compute,Small,0,0,12,6.6,1.5
SQL Compute,Small,0,0,12,2.64,1.5
`

const storageCSV = `S3_storage,Rate/GB_50TB,Rate/GB_500TB,Rate/GB_over500TB
S3 Standard,0.023,0.022,0.021
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func pricingConfig(dir string) config.PricingConfig {
	p := config.Default().Pricing
	p.RatesDir = dir
	return p
}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Compute type":      catalog.ColComputeFamily,
		" Instance ":        catalog.ColInstanceID,
		"vCPU":              catalog.ColVCPU,
		"Memory (GB)":       catalog.ColMemoryGB,
		"DBU/hour":          catalog.ColDBUPerHour,
		"Rate/hour":         catalog.ColUnitRate,
		"onDemandLinuxHr":   catalog.ColInfraRate,
		"S3_storage":        catalog.ColStorageClass,
		"Rate/GB_50TB":      catalog.ColRateTier1,
		"Rate/GB_500TB":     catalog.ColRateTier2,
		"Rate/GB_over500TB": catalog.ColRateTier3,
		"\ufeffunit_rate":   catalog.ColUnitRate,
		"Some  Extra Col":   "some_extra_col",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestReadCSVSkipsBlankRows(t *testing.T) {
	table, err := ReadCSV("compute.csv", strings.NewReader(computeCSV))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)
	assert.True(t, table.HasColumn(catalog.ColInfraRate))
	assert.Equal(t, "Jobs Compute", table.Rows[1].Get(catalog.ColComputeFamily))
}

func TestReadCSVPadsShortRows(t *testing.T) {
	table, err := ReadCSV("short.csv", strings.NewReader("a,b,c\n1,2\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	v, ok := table.Rows[0]["c"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV("empty.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeDataLoad))

	_, err = ReadCSV("header.csv", strings.NewReader("a,b\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeDataLoad))
}

func TestLoadCatalogFromCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compute_rates.csv", computeCSV)
	writeFile(t, dir, "sql_warehouse_rates.csv", warehouseCSV)
	writeFile(t, dir, "storage_rates.csv", storageCSV)

	c, err := LoadCatalog(pricingConfig(dir))
	require.NoError(t, err)

	e, ok := c.LookupFamilyRate(types.CategoryJobs, "Jobs Compute", "m5.xlarge")
	require.True(t, ok)
	assert.True(t, e.UnitRate.Equal(decimal.RequireFromString("0.15")))

	assert.Equal(t, []string{"All-Purpose Compute"}, c.Families(types.CategoryDevelopment))
	assert.Equal(t, []string{"SQL Pro Compute", "SQL Compute"}, c.WarehouseTypes())
	assert.Equal(t, []string{"S3 Standard"}, c.StorageClasses())
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compute_rates.csv", computeCSV)

	_, err := Load(pricingConfig(dir))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeDataLoad))
}

func TestReadFileUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rates.json", "{}")

	_, err := ReadFile(filepath.Join(dir, "rates.json"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeDataLoad))
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage_rates.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"S3_storage", "Rate/GB_50TB", "Rate/GB_500TB", "Rate/GB_over500TB"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"S3 Standard", "0.023", "0.022", "0.021"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"S3 Glacier", "0.004", "0.004", "0.004"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "S3 Glacier", table.Rows[1].Get(catalog.ColStorageClass))
	assert.Equal(t, "0.022", table.Rows[0].Get(catalog.ColRateTier2))
}

func TestOptionsFallsBackToDefaults(t *testing.T) {
	p := config.PricingConfig{TransformFamilies: []string{"Jobs Compute"}}
	opts := Options(p)
	assert.Equal(t, []string{"Jobs Compute"}, opts.TransformFamilies)
	assert.Equal(t, catalog.DefaultOptions().IngestFamilies, opts.IngestFamilies)
}
