package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/money"
)

// Share is one entity's allocated portion of a distributed amount.
type Share struct {
	EntityID int64           `json:"entity_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// Warning records a data-quality problem found while allocating. It is
// reported alongside results, never raised as an error.
type Warning struct {
	RuleID  int64  `json:"rule_id,omitempty"`
	Message string `json:"message"`
}

// ByQuantity distributes total across entities in proportion to each
// entity's share of the summed quantities. Every share but the last is
// rounded at the working scale; the last takes the remainder so the
// shares reproduce total exactly. Entities with zero quantity receive
// zero. A zero quantity sum distributes nothing.
func ByQuantity(total decimal.Decimal, quantities map[int64]decimal.Decimal) []Share {
	ids := make([]int64, 0, len(quantities))
	sum := decimal.Zero
	for id, q := range quantities {
		ids = append(ids, id)
		sum = sum.Add(q)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	shares := make([]Share, 0, len(ids))
	if sum.IsZero() {
		for _, id := range ids {
			shares = append(shares, Share{EntityID: id, Quantity: quantities[id], Amount: decimal.Zero})
		}
		return shares
	}

	allocated := decimal.Zero
	for i, id := range ids {
		q := quantities[id]
		var amount decimal.Decimal
		if i == len(ids)-1 {
			amount = total.Sub(allocated)
		} else {
			amount = money.Round(total.Mul(q).Div(sum))
			allocated = allocated.Add(amount)
		}
		shares = append(shares, Share{EntityID: id, Quantity: q, Amount: amount})
	}
	return shares
}

// ByRatio applies a manual rule's target ratios as given. The caller
// receives a warning when the ratios do not sum to 1.
func ByRatio(total decimal.Decimal, rule Rule) (map[int64]decimal.Decimal, []Warning) {
	out := make(map[int64]decimal.Decimal, len(rule.Targets))
	for _, t := range rule.Targets {
		out[t.TargetCostCenterID] = money.Round(total.Mul(t.Ratio))
	}
	var warnings []Warning
	if sum := rule.RatioSum(); !sum.Equal(decimal.NewFromInt(1)) {
		warnings = append(warnings, Warning{
			RuleID:  rule.ID,
			Message: "target ratios sum to " + sum.String() + ", expected 1",
		})
	}
	return out, warnings
}

// Match selects the rule governing a source cost center and cost
// element. A rule naming the element exactly outranks a wildcard rule;
// within the same specificity the lowest priority wins, then the
// lowest id. Inactive rules never match.
func Match(rules []Rule, sourceCostCenterID int64, costElement string) (Rule, bool) {
	var (
		best  Rule
		found bool
	)
	better := func(candidate, current Rule) bool {
		candidateExact := candidate.CostElement == costElement && costElement != ""
		currentExact := current.CostElement == costElement && costElement != ""
		if candidateExact != currentExact {
			return candidateExact
		}
		if candidate.Priority != current.Priority {
			return candidate.Priority < current.Priority
		}
		return candidate.ID < current.ID
	}
	for _, rule := range rules {
		if !rule.IsActive || rule.SourceCostCenterID != sourceCostCenterID {
			continue
		}
		if rule.CostElement != "" && rule.CostElement != costElement {
			continue
		}
		if !found || better(rule, best) {
			best, found = rule, true
		}
	}
	return best, found
}

// EffectiveBasis substitutes raw_material_quantity for production_hours
// when no hours data exists for the period. Other bases pass through.
func EffectiveBasis(b Basis, hasProductionHours bool) Basis {
	if b == BasisProductionHours && !hasProductionHours {
		return BasisRawMaterialQuantity
	}
	return b
}
