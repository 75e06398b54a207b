package variance

import (
	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/actuals"
	"github.com/genka-erp/genka-erp/internal/costing"
	"github.com/genka-erp/genka-erp/internal/money"
)

// Compare builds one variance record per cost element for a product
// whose standard and actual rows both exist.
//
// variance_amount = actual - standard; variance_percent keeps the
// sign. A zero standard with a nonzero actual has no defined percent:
// the record is flagged as a data error with percent left at zero
// rather than failing the run.
func Compare(standard costing.StandardCost, actual actuals.ActualCost, threshold decimal.Decimal) []Record {
	records := make([]Record, 0, len(costing.Elements()))
	for _, element := range costing.Elements() {
		std := standard.Element(element)
		act := actualElement(actual, element)

		r := Record{
			ProductID:      standard.ProductID,
			PeriodID:       standard.PeriodID,
			VarianceType:   TypeTotal,
			CostElement:    element,
			StandardAmount: std,
			ActualAmount:   act,
			VarianceAmount: act.Sub(std),
		}
		r.IsFavorable = r.VarianceAmount.IsNegative()

		switch {
		case std.IsZero() && act.IsZero():
			r.VariancePercent = decimal.Zero
		case std.IsZero():
			r.IsFlagged = true
			r.FlagReason = "standard amount is zero"
		default:
			r.VariancePercent = money.Percent(r.VarianceAmount, std)
			if r.VariancePercent.Abs().GreaterThanOrEqual(threshold) {
				r.IsFlagged = true
			}
		}
		records = append(records, r)
	}
	return records
}

func actualElement(a actuals.ActualCost, element costing.CostElement) decimal.Decimal {
	switch element {
	case costing.ElementCrudeProduct:
		return a.CrudeProductCost
	case costing.ElementPackaging:
		return a.PackagingCost
	case costing.ElementLabor:
		return a.LaborCost
	case costing.ElementOverhead:
		return a.OverheadCost
	case costing.ElementOutsourcing:
		return a.OutsourcingCost
	}
	return decimal.Zero
}

// Summarize aggregates records by cost element. The average percent is
// the simple mean across records; magnitude weighting is deliberately
// not applied.
func Summarize(periodID int64, records []Record) SummaryReport {
	report := SummaryReport{
		PeriodID:      periodID,
		TotalStandard: decimal.Zero,
		TotalActual:   decimal.Zero,
		TotalVariance: decimal.Zero,
	}

	byElement := make(map[costing.CostElement]*ElementSummary)
	for _, element := range costing.Elements() {
		byElement[element] = &ElementSummary{
			CostElement:            element,
			TotalStandard:          decimal.Zero,
			TotalActual:            decimal.Zero,
			TotalVariance:          decimal.Zero,
			AverageVariancePercent: decimal.Zero,
		}
	}

	percentSums := make(map[costing.CostElement]decimal.Decimal)
	for _, r := range records {
		s, ok := byElement[r.CostElement]
		if !ok {
			continue
		}
		s.RecordCount++
		s.TotalStandard = s.TotalStandard.Add(r.StandardAmount)
		s.TotalActual = s.TotalActual.Add(r.ActualAmount)
		s.TotalVariance = s.TotalVariance.Add(r.VarianceAmount)
		percentSums[r.CostElement] = percentSums[r.CostElement].Add(r.VariancePercent)
		if r.IsFavorable {
			s.FavorableCount++
		} else {
			s.UnfavorableCount++
		}
		if r.IsFlagged {
			s.FlaggedCount++
		}
	}

	for _, element := range costing.Elements() {
		s := byElement[element]
		if s.RecordCount > 0 {
			s.AverageVariancePercent = money.Round(percentSums[element].Div(decimal.NewFromInt(int64(s.RecordCount))))
		}
		report.Elements = append(report.Elements, *s)
		report.TotalStandard = report.TotalStandard.Add(s.TotalStandard)
		report.TotalActual = report.TotalActual.Add(s.TotalActual)
		report.TotalVariance = report.TotalVariance.Add(s.TotalVariance)
	}
	report.IsFavorable = report.TotalVariance.IsNegative()
	return report
}
