package reconciliation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/actuals"
)

// Reconcile compares each product's actual cost total between the
// costing system and the accounting export. Within threshold is
// matched, beyond is a discrepancy, and a product present in only one
// system is unmatched.
func Reconcile(periodID int64, rows []actuals.ActualCost, threshold decimal.Decimal) []Result {
	type pair struct {
		sc    *actuals.ActualCost
		bugyo *actuals.ActualCost
	}
	byProduct := map[int64]*pair{}
	for i := range rows {
		row := rows[i]
		p, ok := byProduct[row.ProductID]
		if !ok {
			p = &pair{}
			byProduct[row.ProductID] = p
		}
		switch row.SourceSystem {
		case actuals.SourceSCSystem:
			p.sc = &row
		case actuals.SourceKanjyoBugyo:
			p.bugyo = &row
		}
	}

	ids := make([]int64, 0, len(byProduct))
	for id := range byProduct {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var results []Result
	for _, id := range ids {
		p := byProduct[id]
		r := Result{
			PeriodID:   periodID,
			EntityType: "product",
			EntityID:   id,
			SourceA:    actuals.SourceSCSystem,
			SourceB:    actuals.SourceKanjyoBugyo,
		}
		switch {
		case p.sc != nil && p.bugyo != nil:
			a, b := p.sc.TotalCost, p.bugyo.TotalCost
			diff := a.Sub(b)
			r.ValueA, r.ValueB = &a, &b
			r.Difference = &diff
			if diff.Abs().LessThanOrEqual(threshold) {
				r.Status = StatusMatched
			} else {
				r.Status = StatusDiscrepancy
			}
		case p.sc != nil:
			a := p.sc.TotalCost
			r.ValueA = &a
			r.Status = StatusUnmatched
			r.Notes = "no accounting system data"
		case p.bugyo != nil:
			b := p.bugyo.TotalCost
			r.ValueB = &b
			r.Status = StatusUnmatched
			r.Notes = "no costing system data"
		default:
			continue
		}
		results = append(results, r)
	}
	return results
}

// Summarize counts results by status.
func Summarize(periodID int64, results []Result) Summary {
	s := Summary{PeriodID: periodID, Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusMatched:
			s.Matched++
		case StatusUnmatched:
			s.Unmatched++
		case StatusDiscrepancy:
			s.Discrepancy++
		}
	}
	return s
}
