package cost

import (
	"github.com/shopspring/decimal"

	"lakehouse-cost/core/types"
)

// Projection horizons in months
const (
	QuarterMonths  = 3
	HalfYearMonths = 6
	YearMonths     = 12
)

// Table-based estimation constants
var (
	bytesPerChar      = decimal.NewFromInt(1)
	compressionFactor = decimal.RequireFromString("0.5")
	bytesPerGB        = decimal.NewFromInt(1024 * 1024 * 1024)

	// StandardStorageRate is the flat per-GB rate for table-based estimates
	StandardStorageRate = decimal.RequireFromString("0.023")
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Project compounds a monthly cost over k months at a monthly growth
// percentage: monthly × (f^k − 1)/(f − 1) with f = 1 + growth/100. Zero
// growth is linear.
func Project(monthly decimal.Decimal, growthPercent float64, months int) decimal.Decimal {
	k := decimal.NewFromInt(int64(months))
	factor := one.Add(fromFloat(growthPercent).Div(hundred))
	if growthPercent == 0 || factor.Equal(one) {
		return monthly.Mul(k)
	}
	return monthly.Mul(factor.Pow(k).Sub(one)).Div(factor.Sub(one))
}

// ProjectionFor returns the standard horizons for a monthly cost
func ProjectionFor(monthly decimal.Decimal, growthPercent float64) types.Projection {
	return types.Projection{
		Quarterly:  Project(monthly, growthPercent, QuarterMonths),
		HalfYearly: Project(monthly, growthPercent, HalfYearMonths),
		Yearly:     Project(monthly, growthPercent, YearMonths),
	}
}

// PriceDirectStorage prices declared zone volumes with tiered rates and
// growth projections
func PriceDirectStorage(zones []types.StorageZoneConfig, rates Rates) types.DirectStorageResult {
	result := types.DirectStorageResult{
		Zones: make([]types.PricedZone, 0, len(zones)),
	}

	var m misses
	for _, z := range zones {
		volume := z.VolumeGB()
		rate, ok := rates.LookupStorageRate(z.StorageClass, volume)
		if !ok {
			m.record(warningStorage, z.StorageClass, z.Zone)
		}

		monthly := volume.Mul(rate)
		p := ProjectionFor(monthly, z.MonthlyGrowthPercent)

		result.Zones = append(result.Zones, types.PricedZone{
			StorageZoneConfig: z,
			VolumeGB:          volume,
			RatePerGB:         rate,
			MonthlyCost:       monthly,
			Quarterly:         p.Quarterly,
			HalfYearly:        p.HalfYearly,
			Yearly:            p.Yearly,
		})
		result.Monthly = result.Monthly.Add(monthly)
		result.Quarterly = result.Quarterly.Add(p.Quarterly)
		result.HalfYearly = result.HalfYearly.Add(p.HalfYearly)
		result.Yearly = result.Yearly.Add(p.Yearly)
	}
	result.Warnings = m.warnings
	return result
}

// TableSizeGB estimates the compressed size of one table in GB
func TableSizeGB(t types.TableEstimateConfig) decimal.Decimal {
	bytes := fromFloat(t.Records).
		Mul(fromFloat(t.Columns)).
		Mul(fromFloat(t.AvgColumnLength)).
		Mul(bytesPerChar).
		Mul(compressionFactor)
	return bytes.Div(bytesPerGB)
}

// PriceTableStorage estimates zone volumes from table cardinality. No growth
// projection applies in this mode.
func PriceTableStorage(zones []types.TableZoneConfig) types.TableStorageResult {
	result := types.TableStorageResult{
		Zones: make([]types.PricedTableZone, 0, len(zones)),
	}

	for _, z := range zones {
		zoneGB := decimal.Zero
		for _, t := range z.Tables {
			zoneGB = zoneGB.Add(TableSizeGB(t).Mul(fromFloat(t.TableCount)))
		}
		cost := zoneGB.Mul(StandardStorageRate)

		result.Zones = append(result.Zones, types.PricedTableZone{
			Zone:        z.Zone,
			Tables:      append([]types.TableEstimateConfig(nil), z.Tables...),
			EstimatedGB: zoneGB,
			MonthlyCost: cost,
		})
		result.EstimatedGB = result.EstimatedGB.Add(zoneGB)
		result.MonthlyCost = result.MonthlyCost.Add(cost)
	}
	return result
}
