// Command report prints a month's dashboard figures from the local
// document: income/spend totals, savings position, soft alerts and goal
// progress.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/finanzas-dev/finanzas/internal/config"
	"github.com/finanzas-dev/finanzas/internal/document"
	"github.com/finanzas-dev/finanzas/internal/logger"
	"github.com/finanzas-dev/finanzas/internal/report"
	"github.com/finanzas-dev/finanzas/internal/storage"
)

func main() {
	log := logger.New()

	configPath := flag.String("config", "finanzas.yaml", "Path to finanzas.yaml")
	month := flag.String("month", "", "Month to summarize, YYYY-MM (default: current)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load config")
		}
		cfg = config.Default()
	}

	store := storage.NewFileStore(cfg.LocalPath)
	doc, ok, err := store.Read()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read local document")
	}
	if !ok {
		doc = document.NewSkeleton(cfg.Defaults())
	}

	ym := *month
	if ym == "" {
		ym = time.Now().Format("2006-01")
	}

	s := report.SummarizeMonth(doc, ym)
	currency := doc.Meta.Currency
	if currency == "" {
		currency = cfg.Currency
	}

	fmt.Printf("Finanzas %s (%s)\n\n", ym, currency)
	fmt.Printf("  Income (cash)      %12.2f   vouchers %12.2f\n", s.IncomeCash, s.IncomeVouchers)
	fmt.Printf("  Spend  (cash)      %12.2f   vouchers %12.2f\n", s.SpendCash, s.SpendVouchers)
	fmt.Printf("  Real savings       %12.2f   (rigid %.2f + flex remaining %.2f)\n", s.RealSavings, s.RigidPlan, s.FlexRemaining)
	fmt.Printf("  Net    (cash)      %12.2f   vouchers %12.2f\n", s.CashNet, s.VouchersNet)
	fmt.Printf("  Investments        %12.2f   est. annual yield %12.2f\n", s.InvestmentsTotal, s.AnnualYield)
	fmt.Printf("  Debts              %12.2f\n", s.DebtTotal)
	fmt.Printf("  Receivables        %12.2f\n\n", s.ReceivablesTotal)

	if goal, enabled := report.EvaluateGoal(doc, s); enabled {
		fmt.Printf("  Savings goal: %.0f%%, %.2f remaining of %.2f\n\n",
			goal.Percent*100, goal.Remaining, goal.TargetAmount)
	}

	alerts := report.EvaluateAlerts(doc, s, time.Now())
	if len(alerts) == 0 {
		fmt.Println("  No alerts")
		return
	}
	for _, a := range alerts {
		fmt.Printf("  [%s] %s\n", a.Severity, a.Message)
	}
}
