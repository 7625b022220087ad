package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ledger is the dated ledger: one record per calendar day, unique by date.
// Storage order is insignificant; the reconciler emits ascending date order.
type Ledger struct {
	Days []DayRecord

	extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler. A days value that is present
// but not an array is the one structural failure the model refuses to load.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	fields, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("%w: ledger is not an object", ErrMalformed)
	}
	for key, raw := range fields {
		switch key {
		case "days":
			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
				continue
			}
			if trimmed[0] != '[' {
				return fmt.Errorf("%w: ledger.days is not a list", ErrMalformed)
			}
			if err := json.Unmarshal(raw, &l.Days); err != nil {
				return err
			}
		default:
			if l.extra == nil {
				l.extra = make(map[string]json.RawMessage)
			}
			l.extra[key] = raw
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	days := l.Days
	if days == nil {
		days = []DayRecord{}
	}
	w.anyField("days", days)
	w.extras(l.extra)
	return w.finish()
}

func (l Ledger) clone() Ledger {
	out := Ledger{extra: cloneRawMap(l.extra)}
	if l.Days != nil {
		out.Days = make([]DayRecord, len(l.Days))
		for i := range l.Days {
			out.Days[i] = l.Days[i].Clone()
		}
	}
	return out
}

// Day returns the record for an exact date, or nil.
func (l *Ledger) Day(date string) *DayRecord {
	for i := range l.Days {
		if l.Days[i].Date == date {
			return &l.Days[i]
		}
	}
	return nil
}

// DayRecord is one calendar day's transactions. Date is the natural key,
// immutable once created; UpdatedAt is the sole tie-breaker during merge.
type DayRecord struct {
	Date         string
	UpdatedAt    string
	Income       IncomeBreakdown
	Spend        SpendBreakdown
	FlexFundUsed Amount
	DebtPayments json.RawMessage
	Notes        string

	extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler. The date key must be a string
// when present; everything else is coerced leniently.
func (r *DayRecord) UnmarshalJSON(data []byte) error {
	fields, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("%w: day record is not an object", ErrMalformed)
	}
	for key, raw := range fields {
		switch key {
		case "date":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("%w: day record has unusable date key", ErrMalformed)
			}
			r.Date = s
		case "updated_at":
			decodeString(raw, &r.UpdatedAt)
		case "income":
			// Malformed sub-objects decode to zero values.
			_ = json.Unmarshal(raw, &r.Income)
		case "spend":
			_ = json.Unmarshal(raw, &r.Spend)
		case "flex_fund_used":
			_ = json.Unmarshal(raw, &r.FlexFundUsed)
		case "debt_payments":
			r.DebtPayments = raw
		case "notes":
			decodeString(raw, &r.Notes)
		default:
			if r.extra == nil {
				r.extra = make(map[string]json.RawMessage)
			}
			r.extra[key] = raw
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r DayRecord) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.anyField("date", r.Date)
	w.anyField("updated_at", r.UpdatedAt)
	w.field("income", &r.Income)
	w.field("spend", &r.Spend)
	w.anyField("flex_fund_used", r.FlexFundUsed)
	payments := r.DebtPayments
	if payments == nil {
		payments = json.RawMessage("[]")
	}
	w.rawField("debt_payments", payments)
	w.anyField("notes", r.Notes)
	w.extras(r.extra)
	return w.finish()
}

// Clone returns a deep copy of the record.
func (r DayRecord) Clone() DayRecord {
	r.Income.extra = cloneRawMap(r.Income.extra)
	r.Spend.extra = cloneRawMap(r.Spend.extra)
	r.DebtPayments = cloneRaw(r.DebtPayments)
	r.extra = cloneRawMap(r.extra)
	return r
}

// IncomeBreakdown splits a day's income between cash and meal vouchers.
type IncomeBreakdown struct {
	Cash     Amount
	Vouchers Amount

	extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *IncomeBreakdown) UnmarshalJSON(data []byte) error {
	fields, err := splitObject(data)
	if err != nil {
		return err
	}
	for key, raw := range fields {
		switch key {
		case "cash":
			_ = json.Unmarshal(raw, &b.Cash)
		case "vouchers":
			_ = json.Unmarshal(raw, &b.Vouchers)
		default:
			if b.extra == nil {
				b.extra = make(map[string]json.RawMessage)
			}
			b.extra[key] = raw
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b *IncomeBreakdown) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.anyField("cash", b.Cash)
	w.anyField("vouchers", b.Vouchers)
	w.extras(b.extra)
	return w.finish()
}

// SpendBreakdown splits a day's spend across the capture categories.
type SpendBreakdown struct {
	Travel           Amount
	ShoppingCash     Amount
	ShoppingVouchers Amount
	Other            Amount

	extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *SpendBreakdown) UnmarshalJSON(data []byte) error {
	fields, err := splitObject(data)
	if err != nil {
		return err
	}
	for key, raw := range fields {
		switch key {
		case "travel":
			_ = json.Unmarshal(raw, &b.Travel)
		case "shopping_cash":
			_ = json.Unmarshal(raw, &b.ShoppingCash)
		case "shopping_vouchers":
			_ = json.Unmarshal(raw, &b.ShoppingVouchers)
		case "other":
			_ = json.Unmarshal(raw, &b.Other)
		default:
			if b.extra == nil {
				b.extra = make(map[string]json.RawMessage)
			}
			b.extra[key] = raw
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b *SpendBreakdown) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.anyField("travel", b.Travel)
	w.anyField("shopping_cash", b.ShoppingCash)
	w.anyField("shopping_vouchers", b.ShoppingVouchers)
	w.anyField("other", b.Other)
	w.extras(b.extra)
	return w.finish()
}

// CashTotal is travel + shopping cash + other.
func (b *SpendBreakdown) CashTotal() float64 {
	return b.Travel.Float() + b.ShoppingCash.Float() + b.Other.Float()
}
