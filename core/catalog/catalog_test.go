package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse-cost/core/catalog"
	"lakehouse-cost/core/catalog/catalogtest"
	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

func TestBuildFiltersFamiliesPerCategory(t *testing.T) {
	c := catalogtest.New(t)

	assert.Equal(t,
		[]string{"DLT Advanced Compute Photon", "DLT Advanced Compute", "Jobs Compute", "Jobs Compute Photon"},
		c.Families(types.CategoryJobs))
	assert.Equal(t, []string{"All-Purpose Compute"}, c.Families(types.CategoryDevelopment))
	assert.Equal(t, []string{"SQL Pro Compute", "SQL Compute"}, c.WarehouseTypes())

	stats := c.Stats()
	assert.Equal(t, 6, stats.ByCategory[types.CategoryJobs].Entries)
	assert.Equal(t, 2, stats.ByCategory[types.CategoryDevelopment].Entries)
	assert.Equal(t, 4, stats.ByCategory[types.CategoryWarehouse].Entries)
	assert.Equal(t, 12, stats.Total)
	assert.Equal(t, 2, stats.StorageClasses)
}

func TestLookupFamilyRate(t *testing.T) {
	c := catalogtest.New(t)

	e, ok := c.LookupFamilyRate(types.CategoryJobs, "Jobs Compute Photon", "m5.xlarge")
	require.True(t, ok)
	assert.True(t, e.UnitRate.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, e.DBUPerHour.Equal(decimal.RequireFromString("1.5")))

	_, ok = c.LookupFamilyRate(types.CategoryJobs, "Jobs Compute Photon", "r5.xlarge")
	assert.False(t, ok)
}

func TestLookupInstanceRateLastRowWins(t *testing.T) {
	c := catalogtest.New(t)

	e, ok := c.LookupInstanceRate(types.CategoryJobs, "m5.xlarge")
	require.True(t, ok)
	assert.Equal(t, "Jobs Compute Photon", e.ComputeFamily)
	assert.True(t, e.UnitRate.Equal(decimal.RequireFromString("0.3")))

	_, ok = c.LookupInstanceRate(types.CategoryJobs, "z9.mega")
	assert.False(t, ok)
}

func TestLookupWarehouseRate(t *testing.T) {
	c := catalogtest.New(t)

	e, ok := c.LookupWarehouseRate("SQL Compute", "Medium")
	require.True(t, ok)
	assert.True(t, e.UnitRate.Equal(decimal.RequireFromString("5.28")))

	_, ok = c.LookupWarehouseRate("SQL Pro Compute", "Medium")
	assert.False(t, ok)
}

func TestLookupStorageRateBrackets(t *testing.T) {
	c := catalogtest.New(t)

	tests := []struct {
		gb   string
		want string
	}{
		{"0", "0.023"},
		{"51200", "0.023"},
		{"51200.001", "0.022"},
		{"512000", "0.022"},
		{"512000.001", "0.021"},
	}
	for _, tt := range tests {
		t.Run(tt.gb, func(t *testing.T) {
			rate, ok := c.LookupStorageRate("S3 Standard", decimal.RequireFromString(tt.gb))
			require.True(t, ok)
			assert.True(t, rate.Equal(decimal.RequireFromString(tt.want)), "got %s", rate)
		})
	}

	rate, ok := c.LookupStorageRate("Glacier", decimal.NewFromInt(10))
	assert.False(t, ok)
	assert.True(t, rate.IsZero())
}

func TestComputeFamiliesForTier(t *testing.T) {
	c := catalogtest.New(t)

	assert.Equal(t, []string{"DLT Advanced Compute Photon", "DLT Advanced Compute"},
		c.ComputeFamiliesForTier(types.TierStage))
	assert.Equal(t, []string{"DLT Advanced Compute Photon", "DLT Advanced Compute"},
		c.ComputeFamiliesForTier(types.TierRaw))
	assert.Equal(t, []string{"Jobs Compute", "Jobs Compute Photon"},
		c.ComputeFamiliesForTier(types.TierCurated))
	assert.Equal(t, []string{"Jobs Compute", "Jobs Compute Photon"},
		c.ComputeFamiliesForTier(types.TierDataProduct))
}

func TestComputeFamiliesForTierSkipsAbsentFamilies(t *testing.T) {
	tables := catalogtest.Tables()
	var rows []catalog.Row
	for _, r := range tables.Jobs.Rows {
		if r[catalog.ColComputeFamily] != "DLT Advanced Compute Photon" {
			rows = append(rows, r)
		}
	}
	tables.Jobs.Rows = rows

	c, err := catalog.Build(tables, catalog.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"DLT Advanced Compute"}, c.ComputeFamiliesForTier(types.TierRaw))
}

func TestInstancesAndDefaults(t *testing.T) {
	c := catalogtest.New(t)

	dev := c.Instances(types.CategoryDevelopment, "All-Purpose Compute")
	require.Len(t, dev, 2)
	assert.Equal(t, "m5.xlarge", dev[0].InstanceID)
	assert.Equal(t, "r5.xlarge", dev[1].InstanceID)

	first, ok := c.DefaultInstance(types.CategoryWarehouse, "SQL Compute")
	require.True(t, ok)
	assert.Equal(t, "2X-Small", first.InstanceID)

	_, ok = c.DefaultInstance(types.CategoryWarehouse, "Serverless")
	assert.False(t, ok)

	assert.Equal(t, []string{"S3 Standard", "S3 Intelligent-Tiering"}, c.StorageClasses())
}

func TestMaxWorkerNodesFor(t *testing.T) {
	c := catalogtest.New(t)

	assert.Equal(t, 1, c.MaxWorkerNodesFor("2X-Small"))
	assert.Equal(t, 8, c.MaxWorkerNodesFor("Medium"))
	assert.Equal(t, 128, c.MaxWorkerNodesFor("4X-Large"))
	assert.Equal(t, catalog.DefaultMaxWorkerNodes, c.MaxWorkerNodesFor("Enormous"))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*catalog.RawTables)
	}{
		{"missing jobs table", func(r *catalog.RawTables) { r.Jobs = nil }},
		{"empty storage table", func(r *catalog.RawTables) { r.Storage.Rows = nil }},
		{"missing column", func(r *catalog.RawTables) {
			r.Warehouse.Columns = r.Warehouse.Columns[:3]
		}},
		{"bad number", func(r *catalog.RawTables) {
			r.Jobs.Rows[0][catalog.ColUnitRate] = "cheap"
		}},
		{"negative rate", func(r *catalog.RawTables) {
			r.Jobs.Rows[0][catalog.ColInfraRate] = "-1"
		}},
		{"empty instance", func(r *catalog.RawTables) {
			r.Jobs.Rows[0][catalog.ColInstanceID] = " "
		}},
		{"duplicate entry", func(r *catalog.RawTables) {
			r.Jobs.Rows = append(r.Jobs.Rows, r.Jobs.Rows[0])
		}},
		{"duplicate storage class", func(r *catalog.RawTables) {
			r.Storage.Rows = append(r.Storage.Rows, r.Storage.Rows[0])
		}},
		{"no rows for families", func(r *catalog.RawTables) {
			for _, row := range r.Development.Rows {
				row[catalog.ColComputeFamily] = "Jobs Compute"
				row[catalog.ColInstanceID] = row[catalog.ColInstanceID] + "-x"
			}
			r.Development.Rows = r.Development.Rows[:1]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := catalogtest.Tables()
			tt.mutate(&tables)
			_, err := catalog.Build(tables, catalog.DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeDataLoad), "got %v", err)
		})
	}
}

func TestBuildToleratesFormattedAmounts(t *testing.T) {
	tables := catalogtest.Tables()
	tables.Storage.Rows[0][catalog.ColRateTier1] = " $0.023 "
	tables.Jobs.Rows[0][catalog.ColDBUPerHour] = ""

	c, err := catalog.Build(tables, catalog.DefaultOptions())
	require.NoError(t, err)

	rate, _ := c.LookupStorageRate("S3 Standard", decimal.NewFromInt(1))
	assert.True(t, rate.Equal(decimal.RequireFromString("0.023")))

	e, _ := c.LookupFamilyRate(types.CategoryJobs, "DLT Advanced Compute Photon", "m5.xlarge")
	assert.True(t, e.DBUPerHour.IsZero())
}
