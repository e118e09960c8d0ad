// Package catalogtest provides a small rate card for tests.
package catalogtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lakehouse-cost/core/catalog"
)

var computeColumns = []string{
	catalog.ColComputeFamily, catalog.ColInstanceID, catalog.ColVCPU, catalog.ColMemoryGB,
	catalog.ColDBUPerHour, catalog.ColUnitRate, catalog.ColInfraRate,
}

func computeTable(name string, rows [][]string) *catalog.Table {
	t := &catalog.Table{Name: name, Columns: computeColumns}
	for _, r := range rows {
		row := catalog.Row{}
		for i, col := range computeColumns {
			row[col] = r[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ComputeRows is shared by the jobs and development tables, as when both
// come from a single compute rate file.
var ComputeRows = [][]string{
	{"DLT Advanced Compute Photon", "m5.xlarge", "4", "16", "1.0", "0.5", "0.192"},
	{"DLT Advanced Compute Photon", "m5.2xlarge", "8", "32", "2.0", "1.0", "0.384"},
	{"DLT Advanced Compute", "m5.xlarge", "4", "16", "0.75", "0.3", "0.192"},
	{"Jobs Compute", "m5.xlarge", "4", "16", "0.75", "0.15", "0.192"},
	{"Jobs Compute", "r5.xlarge", "4", "32", "1.0", "0.2", "0.252"},
	{"Jobs Compute Photon", "m5.xlarge", "4", "16", "1.5", "0.3", "0.192"},
	{"All-Purpose Compute", "m5.xlarge", "4", "16", "0.75", "0.4125", "0.192"},
	{"All-Purpose Compute", "r5.xlarge", "4", "32", "1.0", "0.55", "0.252"},
}

// WarehouseRows are the warehouse size rates
var WarehouseRows = [][]string{
	{"SQL Pro Compute", "2X-Small", "0", "0", "4", "2.2", "0.5"},
	{"SQL Pro Compute", "Small", "0", "0", "12", "6.6", "1.5"},
	{"SQL Compute", "2X-Small", "0", "0", "4", "0.88", "0.5"},
	{"SQL Compute", "Medium", "0", "0", "24", "5.28", "3"},
}

// StorageRows are the storage class rates
var StorageRows = [][]string{
	{"S3 Standard", "0.023", "0.022", "0.021"},
	{"S3 Intelligent-Tiering", "0.0125", "0.0125", "0.0125"},
}

// Tables returns fresh raw tables for the fixture rate card
func Tables() catalog.RawTables {
	storage := &catalog.Table{
		Name: "storage",
		Columns: []string{
			catalog.ColStorageClass, catalog.ColRateTier1, catalog.ColRateTier2, catalog.ColRateTier3,
		},
	}
	for _, r := range StorageRows {
		storage.Rows = append(storage.Rows, catalog.Row{
			catalog.ColStorageClass: r[0],
			catalog.ColRateTier1:    r[1],
			catalog.ColRateTier2:    r[2],
			catalog.ColRateTier3:    r[3],
		})
	}

	return catalog.RawTables{
		Jobs:        computeTable("compute", ComputeRows),
		Warehouse:   computeTable("warehouse", WarehouseRows),
		Development: computeTable("compute", ComputeRows),
		Storage:     storage,
	}
}

// New builds the fixture catalog with default options
func New(t testing.TB) *catalog.RateCatalog {
	t.Helper()
	c, err := catalog.Build(Tables(), catalog.DefaultOptions())
	require.NoError(t, err)
	return c
}
