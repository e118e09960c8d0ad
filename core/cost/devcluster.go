package cost

import (
	"github.com/shopspring/decimal"

	"lakehouse-cost/core/types"
)

// PriceDevClusters prices interactive development clusters from their driver
// and worker rates
func PriceDevClusters(clusters []types.DevClusterConfig, rates Rates) types.DevClusterResult {
	result := types.DevClusterResult{
		Clusters: make([]types.PricedDevCluster, 0, len(clusters)),
	}

	var m misses
	for _, c := range clusters {
		priced := priceDevCluster(c, rates, &m)
		result.Clusters = append(result.Clusters, priced)
		result.ComputeCost = result.ComputeCost.Add(priced.ComputeCost)
		result.InfraCost = result.InfraCost.Add(priced.InfraCost)
	}
	result.Warnings = m.warnings
	return result
}

func priceDevCluster(c types.DevClusterConfig, rates Rates, m *misses) types.PricedDevCluster {
	label := c.Label()
	driver := computeRate(rates, types.CategoryDevelopment, c.ComputeType, c.DriverInstanceID, label, m)
	worker := computeRate(rates, types.CategoryDevelopment, c.ComputeType, c.WorkerInstanceID, label, m)

	nodes := decimal.NewFromInt(int64(c.WorkerNodes))
	hours := fromFloat(c.HoursPerMonth).Mul(fromFloat(c.Months))

	compute := driver.UnitRate.Add(worker.UnitRate.Mul(nodes)).Mul(hours)
	infra := driver.InfraRate.Add(worker.InfraRate.Mul(nodes)).Mul(hours)

	return types.PricedDevCluster{
		DevClusterConfig: c,
		ComputeCost:      compute,
		InfraCost:        infra,
		TotalCost:        compute.Add(infra),
	}
}
