package report

import (
	"encoding/json"

	"github.com/finanzas-dev/finanzas/internal/document"
)

// GoalProgress reports how far the investments total has come toward the
// configured savings target.
type GoalProgress struct {
	TargetAmount float64 `json:"target_amount"`
	Achieved     float64 `json:"achieved"`
	// Percent is clamped to [0, 1].
	Percent   float64 `json:"percent"`
	Remaining float64 `json:"remaining"`
}

type goalsView struct {
	SavingsTotalTarget struct {
		Enabled      bool            `json:"enabled"`
		TargetAmount document.Amount `json:"target_amount"`
	} `json:"savings_total_target"`
}

// EvaluateGoal reads goals.savings_total_target and measures it against the
// summary's investments total. The second return is false when no enabled
// target is configured.
func EvaluateGoal(doc *document.Document, summary MonthSummary) (GoalProgress, bool) {
	var goals goalsView
	if doc.Goals != nil {
		_ = json.Unmarshal(doc.Goals, &goals)
	}
	target := goals.SavingsTotalTarget
	if !target.Enabled {
		return GoalProgress{}, false
	}

	p := GoalProgress{
		TargetAmount: target.TargetAmount.Float(),
		Achieved:     summary.InvestmentsTotal,
	}
	if p.TargetAmount > 0 {
		p.Percent = p.Achieved / p.TargetAmount
		if p.Percent > 1 {
			p.Percent = 1
		}
	}
	p.Remaining = p.TargetAmount - p.Achieved
	if p.Remaining < 0 {
		p.Remaining = 0
	}
	return p, true
}
