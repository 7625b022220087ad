// Package export flattens the ledger into BigQuery rows for ad-hoc
// analysis. One-shot and append-only: every run inserts a full snapshot of
// the ledger tagged with the export time.
package export

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/finanzas-dev/finanzas/internal/document"
)

// DayRow is the BigQuery shape of one ledger day.
type DayRow struct {
	DeviceID string     `bigquery:"device_id"`
	Date     civil.Date `bigquery:"date"`

	IncomeCash     float64 `bigquery:"income_cash"`
	IncomeVouchers float64 `bigquery:"income_vouchers"`
	SpendTravel    float64 `bigquery:"spend_travel"`
	SpendShopCash  float64 `bigquery:"spend_shopping_cash"`
	SpendShopVouch float64 `bigquery:"spend_shopping_vouchers"`
	SpendOther     float64 `bigquery:"spend_other"`
	FlexFundUsed   float64 `bigquery:"flex_fund_used"`
	Notes          string  `bigquery:"notes"`

	UpdatedAt  time.Time `bigquery:"updated_at"`
	ExportedAt time.Time `bigquery:"exported_at"`
}

// RowInserter is the slice of bigquery.Inserter the exporter needs.
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// Rows converts the ledger into DayRows stamped with now. Days whose date
// is not a parsable calendar date are skipped; BigQuery's DATE column has
// no room for the legacy empty-string keys the document model tolerates.
func Rows(doc *document.Document, now time.Time) []*DayRow {
	rows := make([]*DayRow, 0, len(doc.Ledger.Days))
	for i := range doc.Ledger.Days {
		day := &doc.Ledger.Days[i]
		date, err := civil.ParseDate(day.Date)
		if err != nil {
			continue
		}
		rows = append(rows, &DayRow{
			DeviceID:       doc.Meta.DeviceID,
			Date:           date,
			IncomeCash:     day.Income.Cash.Float(),
			IncomeVouchers: day.Income.Vouchers.Float(),
			SpendTravel:    day.Spend.Travel.Float(),
			SpendShopCash:  day.Spend.ShoppingCash.Float(),
			SpendShopVouch: day.Spend.ShoppingVouchers.Float(),
			SpendOther:     day.Spend.Other.Float(),
			FlexFundUsed:   day.FlexFundUsed.Float(),
			Notes:          day.Notes,
			UpdatedAt:      document.ParseTimestamp(day.UpdatedAt),
			ExportedAt:     now,
		})
	}
	return rows
}

// LedgerWithInserter inserts the document's ledger through the given
// inserter and returns the row count.
func LedgerWithInserter(ctx context.Context, ins RowInserter, doc *document.Document, now time.Time) (int, error) {
	rows := Rows(doc, now)
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ins.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("inserting ledger rows: %w", err)
	}
	return len(rows), nil
}

// Ledger inserts the document's ledger into project.dataset.table.
func Ledger(ctx context.Context, projectID, datasetID, tableID string, doc *document.Document) (int, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("bigquery client: %w", err)
	}
	defer client.Close()

	inserter := client.Dataset(datasetID).Table(tableID).Inserter()
	return LedgerWithInserter(ctx, inserter, doc, time.Now())
}
