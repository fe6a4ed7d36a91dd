package normalize

import "efficiency_optimizer/pkg/models"

// deriveTolerance is the relative disagreement beyond which a reported
// subtotal is replaced by the value recomputed from its primitives.
const deriveTolerance = 0.005

// deriveFields fills subtotal fields computable from primitives and
// reconciles reported subtotals against them. Primitive lines win:
// extraction errors land on aggregate rows far more often than on the
// individual expense lines that feed them.
func deriveFields(r *models.FinancialRecord) {
	if r.Revenue != nil && r.CostOfGoodsSold != nil {
		derived := *r.Revenue - *r.CostOfGoodsSold
		reconcile(&r.GrossProfit, derived)
	}
	if r.GrossProfit != nil && r.OperatingExpenses != nil {
		derived := *r.GrossProfit - *r.OperatingExpenses
		reconcile(&r.OperatingIncome, derived)
	}
}

func reconcile(reported **float64, derived float64) {
	if *reported == nil {
		*reported = models.Float(derived)
		return
	}
	if disagree(**reported, derived) {
		*reported = models.Float(derived)
	}
}

func disagree(reported, derived float64) bool {
	scale := abs(derived)
	if scale < 1 {
		scale = 1
	}
	return abs(reported-derived) > deriveTolerance*scale
}
