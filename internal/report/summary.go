// Package report computes the read-only dashboard figures: monthly
// aggregates over the ledger, soft alerts and savings-goal progress.
// Nothing in here mutates a document.
package report

import (
	"encoding/json"

	"github.com/finanzas-dev/finanzas/internal/document"
)

// Plan amounts used when the document's savings plan is absent or zero,
// matching the capture client's fallbacks.
const (
	defaultMonthlyRigid    = 5000
	defaultMonthlyFlexible = 1000
)

// MonthSummary is one month's numeric reduction over the ledger plus the
// account aggregates. FlexRemaining feeds capture validation, so its
// arithmetic must match the client exactly.
type MonthSummary struct {
	Month string `json:"month"`

	IncomeCash     float64 `json:"income_cash"`
	IncomeVouchers float64 `json:"income_vouchers"`
	SpendCash      float64 `json:"spend_cash"`
	SpendVouchers  float64 `json:"spend_vouchers"`
	FlexUsed       float64 `json:"flex_used"`

	RigidPlan     float64 `json:"rigid_plan"`
	FlexPlan      float64 `json:"flex_plan"`
	FlexRemaining float64 `json:"flex_remaining"`
	RealSavings   float64 `json:"real_savings"`
	CashNet       float64 `json:"cash_net"`
	VouchersNet   float64 `json:"vouchers_net"`

	InvestmentsTotal float64 `json:"investments_total"`
	AnnualYield      float64 `json:"annual_yield"`
	DebtTotal        float64 `json:"debt_total"`
	ReceivablesTotal float64 `json:"receivables_total"`
}

// planView and accountsView decode just the fields the aggregator needs out
// of the otherwise opaque sections. Amounts coerce leniently, so a plan
// written by hand with string numbers still aggregates.
type planView struct {
	SavingsPlan struct {
		MonthlyRigid    document.Amount `json:"monthly_rigid"`
		MonthlyFlexible document.Amount `json:"monthly_flexible"`
	} `json:"savings_plan"`
}

type accountsView struct {
	Investments []struct {
		Principal  document.Amount `json:"principal"`
		AnnualRate document.Amount `json:"annual_rate"`
	} `json:"investments"`
	Debts []struct {
		Balance document.Amount `json:"balance"`
	} `json:"debts"`
	Receivables []struct {
		Amount document.Amount `json:"amount"`
		Status string          `json:"status"`
	} `json:"receivables"`
}

// SummarizeMonth reduces the ledger days whose date starts with yearMonth
// (a "YYYY-MM" key) and the account sections into a MonthSummary.
func SummarizeMonth(doc *document.Document, yearMonth string) MonthSummary {
	s := MonthSummary{Month: yearMonth}

	for i := range doc.Ledger.Days {
		day := &doc.Ledger.Days[i]
		if monthKey(day.Date) != yearMonth {
			continue
		}
		s.IncomeCash += day.Income.Cash.Float()
		s.IncomeVouchers += day.Income.Vouchers.Float()
		s.SpendCash += day.Spend.CashTotal()
		s.SpendVouchers += day.Spend.ShoppingVouchers.Float()
		s.FlexUsed += day.FlexFundUsed.Float()
	}

	var plan planView
	if doc.Plan != nil {
		_ = json.Unmarshal(doc.Plan, &plan)
	}
	s.RigidPlan = plan.SavingsPlan.MonthlyRigid.Float()
	if s.RigidPlan == 0 {
		s.RigidPlan = defaultMonthlyRigid
	}
	s.FlexPlan = plan.SavingsPlan.MonthlyFlexible.Float()
	if s.FlexPlan == 0 {
		s.FlexPlan = defaultMonthlyFlexible
	}

	s.FlexRemaining = s.FlexPlan - s.FlexUsed
	if s.FlexRemaining < 0 {
		s.FlexRemaining = 0
	}
	s.RealSavings = s.RigidPlan + s.FlexRemaining
	s.CashNet = s.IncomeCash - s.SpendCash - (s.RigidPlan + s.FlexPlan)
	s.VouchersNet = s.IncomeVouchers - s.SpendVouchers

	var accounts accountsView
	if doc.Accounts != nil {
		_ = json.Unmarshal(doc.Accounts, &accounts)
	}
	for _, inv := range accounts.Investments {
		s.InvestmentsTotal += inv.Principal.Float()
		s.AnnualYield += inv.Principal.Float() * inv.AnnualRate.Float()
	}
	for _, debt := range accounts.Debts {
		s.DebtTotal += debt.Balance.Float()
	}
	for _, rcv := range accounts.Receivables {
		if rcv.Status == "paid" {
			continue
		}
		s.ReceivablesTotal += rcv.Amount.Float()
	}
	return s
}

// monthKey is the first 7 characters of a YYYY-MM-DD date.
func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
