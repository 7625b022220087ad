package document

import "time"

// GetOrCreateDay returns the record for date, creating and appending a
// zero-valued one stamped with now when absent. This mutates the document in
// place; it is the one deliberate exception to the otherwise snapshot-style
// model because it backs an editable capture form. The returned pointer is
// valid until the next call that grows the ledger.
func (d *Document) GetOrCreateDay(date string, now time.Time) *DayRecord {
	if day := d.Ledger.Day(date); day != nil {
		return day
	}
	d.Ledger.Days = append(d.Ledger.Days, NewDayRecord(date, now))
	return &d.Ledger.Days[len(d.Ledger.Days)-1]
}

// CaptureInput carries one day's figures from the capture form.
type CaptureInput struct {
	IncomeCash     Amount `json:"income_cash"`
	IncomeVouchers Amount `json:"income_vouchers"`
	SpendTravel    Amount `json:"spend_travel"`
	SpendShopCash  Amount `json:"spend_shopping_cash"`
	SpendShopVouch Amount `json:"spend_shopping_vouchers"`
	SpendOther     Amount `json:"spend_other"`
	FlexFundUsed   Amount `json:"flex_fund_used"`
	Notes          string `json:"notes"`
}

// ApplyCapture writes a capture onto the record for date, stamping both the
// day and the document with now.
func (d *Document) ApplyCapture(date string, in CaptureInput, now time.Time) *DayRecord {
	day := d.GetOrCreateDay(date, now)
	day.Income.Cash = in.IncomeCash
	day.Income.Vouchers = in.IncomeVouchers
	day.Spend.Travel = in.SpendTravel
	day.Spend.ShoppingCash = in.SpendShopCash
	day.Spend.ShoppingVouchers = in.SpendShopVouch
	day.Spend.Other = in.SpendOther
	day.FlexFundUsed = in.FlexFundUsed
	day.Notes = in.Notes
	day.UpdatedAt = FormatTimestamp(now)
	d.Meta.UpdatedAt = FormatTimestamp(now)
	return day
}

// DeleteDay removes the record for date and reports whether one existed.
// Removal leaves no tombstone: a later sync against a remote copy that still
// carries the day brings it back.
func (d *Document) DeleteDay(date string, now time.Time) bool {
	days := d.Ledger.Days
	for i := range days {
		if days[i].Date == date {
			d.Ledger.Days = append(days[:i], days[i+1:]...)
			d.Meta.UpdatedAt = FormatTimestamp(now)
			return true
		}
	}
	return false
}
