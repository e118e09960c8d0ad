package cost

import (
	"github.com/shopspring/decimal"

	"lakehouse-cost/core/types"
)

// PriceJobs prices the jobs of one tier. Empty input yields zero totals and an
// empty result.
func PriceJobs(tier types.Tier, jobs []types.JobConfig, rates Rates) types.JobResult {
	result := types.JobResult{
		Tier: tier,
		Jobs: make([]types.PricedJob, 0, len(jobs)),
	}

	var m misses
	for _, job := range jobs {
		priced := priceJob(tier, job, rates, &m)
		result.Jobs = append(result.Jobs, priced)
		result.ComputeCost = result.ComputeCost.Add(priced.ComputeCost)
		result.InfraCost = result.InfraCost.Add(priced.InfraCost)
		result.UsageUnits = result.UsageUnits.Add(priced.UsageUnits)
	}
	result.Warnings = m.warnings
	return result
}

func priceJob(tier types.Tier, job types.JobConfig, rates Rates, m *misses) types.PricedJob {
	rate := computeRate(rates, types.CategoryJobs, job.ComputeFamily, job.InstanceID, job.Name, m)

	nodeHours := decimal.NewFromInt(int64(job.ActiveNodes())).
		Mul(fromFloat(job.RuntimeHours)).
		Mul(fromFloat(job.RunsPerMonth))

	compute := rate.UnitRate.Mul(nodeHours)
	infra := rate.InfraRate.Mul(nodeHours)

	return types.PricedJob{
		JobConfig:   job,
		Tier:        tier,
		UnitRate:    rate.UnitRate,
		InfraRate:   rate.InfraRate,
		NodeHours:   nodeHours,
		UsageUnits:  rate.DBUPerHour.Mul(nodeHours),
		ComputeCost: compute,
		InfraCost:   infra,
		TotalCost:   compute.Add(infra),
	}
}
