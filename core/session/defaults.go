package session

import (
	"fmt"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/config"
)

// Catalog is the rate catalog surface sessions need for defaults and clamping
type Catalog interface {
	ComputeFamiliesForTier(tier types.Tier) []string
	DefaultInstance(category types.Category, family string) (types.RateEntry, bool)
	WarehouseTypes() []string
	StorageClasses() []string
	MaxWorkerNodesFor(instanceID string) int
}

// Default collections for new sessions
var (
	DefaultDirectZones = []string{"Landing Zone", types.StageZone, "L0 / Raw", "L1 / Curated", "L2 / Data Product"}

	DefaultTableZones = []struct {
		Zone  string
		Table string
	}{
		{"Source System Table", "Source_system_Table_1"},
		{"L0 / Raw", "Bronze_Table_1"},
		{"L1 / Curated", "Silver_Table_1"},
		{"L2 / Data Product", "Gold_Table_1"},
	}
)

const (
	defaultWarehouseName   = "Primary BI Warehouse"
	defaultSuspendMinutes  = 10
	defaultDevComputeType  = "All-Purpose Compute"
	warehouseIDPrefix      = "warehouse_"
	defaultFallbackStorage = "Standard"
)

// DefaultWorkload builds the initial configuration from the first entries of
// the catalog
func DefaultWorkload(cat Catalog, cfg config.WorkloadConfig) *types.Workload {
	w := &types.Workload{
		StorageMode:      cfg.StorageMode,
		IncludeStageZone: cfg.IncludeStageZone,
	}
	if w.StorageMode == "" {
		w.StorageMode = types.StorageDirect
	}

	disabled := make(map[types.Tier]bool, len(cfg.DisabledTiers))
	for _, t := range cfg.DisabledTiers {
		disabled[t] = true
	}
	for _, tier := range types.Tiers {
		w.Tiers = append(w.Tiers, types.TierJobs{
			Tier:    tier,
			Enabled: !disabled[tier],
			Jobs:    []types.JobConfig{defaultJob(cat, tier, 1)},
		})
	}

	class := defaultFallbackStorage
	if classes := cat.StorageClasses(); len(classes) > 0 {
		class = classes[0]
	}
	for _, zone := range DefaultDirectZones {
		w.DirectZones = append(w.DirectZones, types.StorageZoneConfig{
			Zone:         zone,
			StorageClass: class,
			Unit:         types.UnitGB,
		})
	}
	for _, tz := range DefaultTableZones {
		w.TableZones = append(w.TableZones, types.TableZoneConfig{
			Zone:   tz.Zone,
			Tables: []types.TableEstimateConfig{{TableName: tz.Table}},
		})
	}

	w.Warehouses = []types.WarehouseConfig{defaultWarehouse(cat, 0)}
	w.Warehouses[0].Name = defaultWarehouseName
	w.DevClusters = []types.DevClusterConfig{defaultDevCluster(cat)}
	return w
}

func defaultJob(cat Catalog, tier types.Tier, n int) types.JobConfig {
	job := types.JobConfig{
		Name:        fmt.Sprintf("%s Job %d", tier, n),
		WorkerNodes: 1,
	}
	if families := cat.ComputeFamiliesForTier(tier); len(families) > 0 {
		job.ComputeFamily = families[0]
		if e, ok := cat.DefaultInstance(types.CategoryJobs, families[0]); ok {
			job.InstanceID = e.InstanceID
		}
	}
	return job
}

func defaultWarehouse(cat Catalog, n int) types.WarehouseConfig {
	wh := types.WarehouseConfig{
		ID:                  fmt.Sprintf("%s%d", warehouseIDPrefix, n),
		Name:                fmt.Sprintf("Warehouse %d", n+1),
		NodeCount:           1,
		AutoSuspend:         true,
		SuspendAfterMinutes: defaultSuspendMinutes,
	}
	if whTypes := cat.WarehouseTypes(); len(whTypes) > 0 {
		wh.ComputeType = whTypes[0]
		if e, ok := cat.DefaultInstance(types.CategoryWarehouse, whTypes[0]); ok {
			wh.SizeID = e.InstanceID
		}
	}
	return wh
}

func defaultDevCluster(cat Catalog) types.DevClusterConfig {
	c := types.DevClusterConfig{
		ComputeType: defaultDevComputeType,
		WorkerNodes: 1,
	}
	if e, ok := cat.DefaultInstance(types.CategoryDevelopment, defaultDevComputeType); ok {
		c.DriverInstanceID = e.InstanceID
		c.WorkerInstanceID = e.InstanceID
	}
	return c
}
