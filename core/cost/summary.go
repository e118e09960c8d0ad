package cost

import (
	"github.com/shopspring/decimal"

	"lakehouse-cost/core/types"
)

// Horizon scales a monthly amount linearly to the reporting horizons
func Horizon(monthly decimal.Decimal) types.HorizonCosts {
	return types.HorizonCosts{
		Monthly:    monthly,
		Quarterly:  monthly.Mul(decimal.NewFromInt(QuarterMonths)),
		HalfYearly: monthly.Mul(decimal.NewFromInt(HalfYearMonths)),
		Yearly:     monthly.Mul(decimal.NewFromInt(YearMonths)),
	}
}

// Summarize builds the consolidated summary from monthly category totals.
// Categories absent from totals report zero. Scaling is linear; storage
// growth projections never feed the summary.
func Summarize(totals map[types.SummaryCategory]decimal.Decimal) types.Summary {
	summary := types.Summary{
		Lines: make([]types.SummaryLine, 0, len(types.SummaryCategories)),
	}

	grand := decimal.Zero
	for _, cat := range types.SummaryCategories {
		monthly := totals[cat]
		grand = grand.Add(monthly)
		summary.Lines = append(summary.Lines, types.SummaryLine{
			Category:     cat,
			Label:        cat.Label(),
			HorizonCosts: Horizon(monthly),
		})
	}
	summary.Total = Horizon(grand)
	return summary
}
