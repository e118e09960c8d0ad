package cost

import (
	"github.com/shopspring/decimal"

	"lakehouse-cost/core/types"
)

// PriceWarehouses prices SQL warehouses. A warehouse is priced only when
// hours, days and nodes are all positive; otherwise it contributes zero.
//
// Infrastructure cost is unit rate plus infra rate per node and is not scaled
// by hours of operation.
func PriceWarehouses(warehouses []types.WarehouseConfig, rates Rates) types.WarehouseResult {
	result := types.WarehouseResult{
		Warehouses: make([]types.PricedWarehouse, 0, len(warehouses)),
	}

	var m misses
	for _, wh := range warehouses {
		priced := priceWarehouse(wh, rates, &m)
		result.Warehouses = append(result.Warehouses, priced)
		result.DBUCost = result.DBUCost.Add(priced.DBUCost)
		result.InfraCost = result.InfraCost.Add(priced.InfraCost)
		result.UsageUnits = result.UsageUnits.Add(priced.UsageUnits)
	}
	result.Warnings = m.warnings
	return result
}

func priceWarehouse(wh types.WarehouseConfig, rates Rates, m *misses) types.PricedWarehouse {
	priced := types.PricedWarehouse{WarehouseConfig: wh}
	if wh.HoursPerDay <= 0 || wh.DaysPerMonth <= 0 || wh.NodeCount <= 0 {
		return priced
	}

	rate, ok := rates.LookupWarehouseRate(wh.ComputeType, wh.SizeID)
	if !ok {
		m.record(types.CategoryWarehouse.String(), wh.ComputeType+"/"+wh.SizeID, wh.Name)
	}

	nodes := decimal.NewFromInt(int64(wh.NodeCount))
	hours := fromFloat(wh.HoursPerDay).Mul(fromFloat(wh.DaysPerMonth))

	priced.Priced = true
	priced.UnitRate = rate.UnitRate
	priced.InfraRate = rate.InfraRate
	priced.HoursPerMonth = hours
	priced.DBUCost = rate.UnitRate.Mul(hours).Mul(nodes)
	priced.InfraCost = rate.UnitRate.Add(rate.InfraRate.Mul(nodes))
	priced.UsageUnits = rate.DBUPerHour.Mul(hours).Mul(nodes)
	return priced
}
