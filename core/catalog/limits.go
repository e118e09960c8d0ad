package catalog

import (
	"github.com/shopspring/decimal"

	"lakehouse-cost/core/types"
)

// Storage volume breakpoints in GB (1 TB = 1024 GB). Each bracket is
// inclusive of its upper bound.
var (
	StorageTier1LimitGB = decimal.NewFromInt(50 * 1024)
	StorageTier2LimitGB = decimal.NewFromInt(500 * 1024)
)

// DefaultMaxWorkerNodes is returned for sizes without a declared limit
const DefaultMaxWorkerNodes = 1

// maxWorkerNodes maps a warehouse size to its maximum worker count
var maxWorkerNodes = map[string]int{
	"2X-Small": 1,
	"X-Small":  2,
	"Small":    4,
	"Medium":   8,
	"Large":    16,
	"X-Large":  32,
	"2X-Large": 64,
	"3X-Large": 128,
	"4X-Large": 128,
}

// MaxWorkerNodesFor returns the worker cap for a warehouse size
func (c *RateCatalog) MaxWorkerNodesFor(instanceID string) int {
	if n, ok := maxWorkerNodes[instanceID]; ok {
		return n
	}
	return DefaultMaxWorkerNodes
}

// storageTierRate selects the whole-volume bracket rate for a volume
func storageTierRate(r types.StorageRate, volumeGB decimal.Decimal) decimal.Decimal {
	switch {
	case volumeGB.LessThanOrEqual(StorageTier1LimitGB):
		return r.Tier1
	case volumeGB.LessThanOrEqual(StorageTier2LimitGB):
		return r.Tier2
	default:
		return r.Tier3
	}
}

// isIngestTier reports whether a tier uses the ingest family set
func isIngestTier(t types.Tier) bool {
	return t == types.TierStage || t == types.TierRaw
}
