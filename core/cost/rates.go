package cost

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/logging"
	"lakehouse-cost/internal/metrics"
)

// Rates is the lookup surface the calculators need. *catalog.RateCatalog
// satisfies it.
type Rates interface {
	LookupFamilyRate(category types.Category, family, instanceID string) (types.RateEntry, bool)
	LookupInstanceRate(category types.Category, instanceID string) (types.RateEntry, bool)
	LookupWarehouseRate(computeType, sizeID string) (types.RateEntry, bool)
	LookupStorageRate(storageClass string, volumeGB decimal.Decimal) (decimal.Decimal, bool)
}

// Warning categories beyond the compute categories
const warningStorage = "storage"

// misses records lookups that fell back to a zero rate
type misses struct {
	warnings []types.RateWarning
}

func (m *misses) record(category, key, record string) {
	m.warnings = append(m.warnings, types.RateWarning{
		Category: category,
		Key:      key,
		Record:   record,
	})
	metrics.RateLookupMisses.WithLabelValues(category).Inc()
	logging.Named("cost").Warn("rate not found, using zero rate",
		logging.Category(category),
		zap.String("key", key),
		zap.String("record", record),
	)
}

// computeRate resolves an instance within a family, then by instance alone.
// A miss yields a zero entry and a warning.
func computeRate(rates Rates, category types.Category, family, instanceID, record string, m *misses) types.RateEntry {
	if e, ok := rates.LookupFamilyRate(category, family, instanceID); ok {
		return e
	}
	if e, ok := rates.LookupInstanceRate(category, instanceID); ok {
		return e
	}
	m.record(category.String(), family+"/"+instanceID, record)
	return types.RateEntry{InstanceID: instanceID, ComputeFamily: family}
}

func fromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
