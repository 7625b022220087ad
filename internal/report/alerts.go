package report

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/finanzas-dev/finanzas/internal/document"
)

// staleDays is the number of calendar days without a capture after which
// the ledger is flagged as stale.
const staleDays = 3

// Alert is one soft warning chip for the dashboard.
type Alert struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// SeverityWarn is the only severity the evaluator currently emits.
const SeverityWarn = "warn"

// EvaluateAlerts runs the two soft checks, in order: flexible fund touched
// this month, and ledger not updated for staleDays or more. The staleness
// check compares calendar dates only, never time of day, and is silent when
// the ledger has no days at all.
func EvaluateAlerts(doc *document.Document, summary MonthSummary, now time.Time) []Alert {
	var alerts []Alert

	if summary.FlexUsed > 0 {
		alerts = append(alerts, Alert{Message: "flexible fund used this month", Severity: SeverityWarn})
	}

	last := ""
	for i := range doc.Ledger.Days {
		if doc.Ledger.Days[i].Date > last {
			last = doc.Ledger.Days[i].Date
		}
	}
	if last != "" {
		if lastDate, err := civil.ParseDate(last); err == nil {
			diff := civil.DateOf(now).DaysSince(lastDate)
			if diff >= staleDays {
				alerts = append(alerts, Alert{
					Message:  fmt.Sprintf("%d days without updates", diff),
					Severity: SeverityWarn,
				})
			}
		}
	}
	return alerts
}
