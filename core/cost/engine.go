// Package cost provides the pricing calculators and the estimation engine.
// Calculators are pure functions over typed configuration records; the engine
// runs all of them for a workload and builds the consolidated summary.
package cost

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/logging"
	"lakehouse-cost/internal/metrics"
)

// Estimator produces an estimate for a workload
type Estimator interface {
	// Estimate runs a full recalculation pass
	Estimate(ctx context.Context, w *types.Workload) (*types.Estimate, error)
}

type sourceKey struct{}

// WithSource labels estimates made under ctx (cli, api, ...) in metrics
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func sourceFrom(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey{}).(string); ok && s != "" {
		return s
	}
	return "library"
}

// Engine prices workloads against a shared rate catalog
type Engine struct {
	rates    Rates
	currency types.Currency
	logger   *zap.Logger
}

// NewEngine creates an engine over a frozen rate catalog
func NewEngine(rates Rates) *Engine {
	return &Engine{
		rates:    rates,
		currency: types.CurrencyUSD,
		logger:   logging.Named("engine"),
	}
}

// Estimate validates the workload and runs every calculator over it. The
// workload is not modified.
func (e *Engine) Estimate(ctx context.Context, w *types.Workload) (*types.Estimate, error) {
	if w == nil {
		return nil, errors.Input("workload is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "estimate cancelled", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	est := &types.Estimate{
		Currency:    e.currency,
		Jobs:        make([]types.JobResult, 0, len(types.Tiers)),
		StorageMode: w.StorageMode,
	}
	if est.StorageMode == "" {
		est.StorageMode = types.StorageDirect
	}

	for _, tier := range types.Tiers {
		tj := w.TierJobs(tier)
		if tj == nil || !tj.Enabled {
			continue
		}
		res := PriceJobs(tier, tj.Jobs, e.rates)
		est.Jobs = append(est.Jobs, res)
		est.JobsComputeCost = est.JobsComputeCost.Add(res.ComputeCost)
		est.JobsInfraCost = est.JobsInfraCost.Add(res.InfraCost)
		est.JobsUsageUnits = est.JobsUsageUnits.Add(res.UsageUnits)
		est.Warnings = append(est.Warnings, res.Warnings...)
	}

	storageMonthly := decimal.Zero
	switch est.StorageMode {
	case types.StorageTableBased:
		res := PriceTableStorage(w.TableZones)
		est.TableStorage = &res
		storageMonthly = res.MonthlyCost
	default:
		res := PriceDirectStorage(directZones(w), e.rates)
		est.DirectStorage = &res
		storageMonthly = res.Monthly
		est.Warnings = append(est.Warnings, res.Warnings...)
	}

	est.Warehouses = PriceWarehouses(w.Warehouses, e.rates)
	est.Warnings = append(est.Warnings, est.Warehouses.Warnings...)

	est.DevClusters = PriceDevClusters(w.DevClusters, e.rates)
	est.Warnings = append(est.Warnings, est.DevClusters.Warnings...)

	est.Summary = Summarize(map[types.SummaryCategory]decimal.Decimal{
		types.SummaryCompute:      est.JobsComputeCost.Add(est.JobsInfraCost),
		types.SummaryStorage:      storageMonthly,
		types.SummarySQLWarehouse: est.Warehouses.Total(),
		types.SummaryDevelopment:  est.DevClusters.Total(),
	})

	elapsed := time.Since(start)
	metrics.EstimatesTotal.WithLabelValues(sourceFrom(ctx)).Inc()
	metrics.EstimateDuration.Observe(elapsed.Seconds())
	e.logger.Debug("estimate complete",
		zap.String("storage_mode", string(est.StorageMode)),
		zap.String("monthly_total", est.Summary.Total.Monthly.StringFixed(2)),
		zap.Int("warnings", len(est.Warnings)),
		zap.Duration("duration", elapsed),
	)

	return est, nil
}

// directZones drops the Stage zone when it is excluded
func directZones(w *types.Workload) []types.StorageZoneConfig {
	if w.IncludeStageZone {
		return w.DirectZones
	}
	zones := make([]types.StorageZoneConfig, 0, len(w.DirectZones))
	for _, z := range w.DirectZones {
		if z.Zone != types.StageZone {
			zones = append(zones, z)
		}
	}
	return zones
}
