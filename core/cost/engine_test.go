package cost

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse-cost/core/catalog/catalogtest"
	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

func sampleWorkload() *types.Workload {
	return &types.Workload{
		Tiers: []types.TierJobs{
			{Tier: types.TierRaw, Enabled: true, Jobs: []types.JobConfig{{
				Name: "ingest", RuntimeHours: 1, RunsPerMonth: 30,
				ComputeFamily: "DLT Advanced Compute", InstanceID: "m5.xlarge", WorkerNodes: 1,
			}}},
			{Tier: types.TierCurated, Enabled: true, Jobs: []types.JobConfig{{
				Name: "nightly", RuntimeHours: 2, RunsPerMonth: 10,
				ComputeFamily: "Jobs Compute", InstanceID: "m5.xlarge", WorkerNodes: 2,
			}}},
		},
		StorageMode:      types.StorageDirect,
		IncludeStageZone: true,
		DirectZones: []types.StorageZoneConfig{
			{Zone: types.StageZone, StorageClass: "S3 Standard", Amount: 100, Unit: types.UnitGB},
			{Zone: "L0 / Raw", StorageClass: "S3 Standard", Amount: 10, Unit: types.UnitTB},
		},
		TableZones: []types.TableZoneConfig{
			{Zone: "L0 / Raw", Tables: []types.TableEstimateConfig{
				{TableName: "events", Records: 2147483648, Columns: 1, AvgColumnLength: 1, TableCount: 1},
			}},
		},
		Warehouses: []types.WarehouseConfig{{
			ID: "warehouse_0", Name: "BI", ComputeType: "SQL Pro Compute", SizeID: "Small",
			NodeCount: 2, HoursPerDay: 10, DaysPerMonth: 22,
		}},
		DevClusters: []types.DevClusterConfig{{
			ComputeType: "All-Purpose Compute", DriverInstanceID: "m5.xlarge",
			WorkerInstanceID: "r5.xlarge", WorkerNodes: 2, HoursPerMonth: 100, Months: 1,
		}},
	}
}

func TestEngineEstimate(t *testing.T) {
	engine := NewEngine(catalogtest.New(t))

	est, err := engine.Estimate(context.Background(), sampleWorkload())
	require.NoError(t, err)

	assert.Equal(t, types.CurrencyUSD, est.Currency)
	require.Len(t, est.Jobs, 2)
	assert.Equal(t, types.TierRaw, est.Jobs[0].Tier)
	assert.Equal(t, types.TierCurated, est.Jobs[1].Tier)

	// raw: 2 nodes × 30h at 0.3 + 0.192
	assertDecimal(t, "18", est.Jobs[0].ComputeCost)
	assertDecimal(t, "11.52", est.Jobs[0].InfraCost)
	assertDecimal(t, "27", est.JobsComputeCost)
	assertDecimal(t, "23.04", est.JobsInfraCost)

	require.NotNil(t, est.DirectStorage)
	assert.Nil(t, est.TableStorage)
	assertDecimal(t, "237.82", est.DirectStorage.Monthly)

	assertDecimal(t, "2913.6", est.Warehouses.Total())
	assertDecimal(t, "220.85", est.DevClusters.Total())

	lines := est.Summary.Lines
	require.Len(t, lines, 4)
	assertDecimal(t, "50.04", lines[0].Monthly)
	assertDecimal(t, "237.82", lines[1].Monthly)
	assertDecimal(t, "2913.6", lines[2].Monthly)
	assertDecimal(t, "220.85", lines[3].Monthly)
	assertDecimal(t, "3422.31", est.Summary.Total.Monthly)
	assertDecimal(t, "41067.72", est.Summary.Total.Yearly)
	assert.Empty(t, est.Warnings)
}

func TestEngineExcludesStageZone(t *testing.T) {
	engine := NewEngine(catalogtest.New(t))
	w := sampleWorkload()
	w.IncludeStageZone = false

	est, err := engine.Estimate(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, est.DirectStorage.Zones, 1)
	assert.Equal(t, "L0 / Raw", est.DirectStorage.Zones[0].Zone)
	assertDecimal(t, "235.52", est.DirectStorage.Monthly)
}

func TestEngineSkipsDisabledTiers(t *testing.T) {
	engine := NewEngine(catalogtest.New(t))
	w := sampleWorkload()
	w.Tiers[0].Enabled = false

	est, err := engine.Estimate(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, est.Jobs, 1)
	assert.Equal(t, types.TierCurated, est.Jobs[0].Tier)
	assertDecimal(t, "20.52", est.Summary.Lines[0].Monthly)
}

func TestEngineTableMode(t *testing.T) {
	engine := NewEngine(catalogtest.New(t))
	w := sampleWorkload()
	w.StorageMode = types.StorageTableBased

	est, err := engine.Estimate(context.Background(), w)
	require.NoError(t, err)
	assert.Nil(t, est.DirectStorage)
	require.NotNil(t, est.TableStorage)
	assertDecimal(t, "0.023", est.TableStorage.MonthlyCost)
	assertDecimal(t, "0.023", est.Summary.Lines[1].Monthly)
}

func TestEngineCollectsWarnings(t *testing.T) {
	engine := NewEngine(catalogtest.New(t))
	w := sampleWorkload()
	w.Tiers[1].Jobs[0].InstanceID = "z9.mega"
	w.DirectZones[1].StorageClass = "Tape"
	w.DevClusters[0].WorkerInstanceID = "z9.mega"

	est, err := engine.Estimate(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, est.Warnings, 3)
	assert.Equal(t, "jobs", est.Warnings[0].Category)
	assert.Equal(t, "storage", est.Warnings[1].Category)
	assert.Equal(t, "development", est.Warnings[2].Category)
}

func TestEngineIsDeterministic(t *testing.T) {
	engine := NewEngine(catalogtest.New(t))
	w := sampleWorkload()
	before, err := json.Marshal(w)
	require.NoError(t, err)

	first, err := engine.Estimate(context.Background(), w)
	require.NoError(t, err)
	second, err := engine.Estimate(context.Background(), w)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	after, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "workload must not be modified")
}

func TestEngineRejectsInvalidInput(t *testing.T) {
	engine := NewEngine(catalogtest.New(t))

	_, err := engine.Estimate(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	w := sampleWorkload()
	w.Tiers[0].Jobs[0].WorkerNodes = -1
	_, err = engine.Estimate(context.Background(), w)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	w = sampleWorkload()
	w.DirectZones[0].MonthlyGrowthPercent = 101
	_, err = engine.Estimate(context.Background(), w)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestEngineHonoursCancelledContext(t *testing.T) {
	engine := NewEngine(catalogtest.New(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Estimate(WithSource(ctx, "test"), sampleWorkload())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInternal))
}
