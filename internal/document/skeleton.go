package document

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is stamped into meta.version of every new document.
const SchemaVersion = "1.0.0"

// Defaults is the configuration surface the model consumes. Everything else
// (credentials, remote file ids) belongs to the collaborators around it.
type Defaults struct {
	Currency string
	Timezone string
}

// NewSkeleton builds a structurally valid, empty-ledger document for a first
// run on a device, stamped with the current time and a fresh device id.
func NewSkeleton(defaults Defaults) *Document {
	return SkeletonAt(defaults, time.Now(), uuid.New().String())
}

// SkeletonAt is NewSkeleton with the clock and device id fixed by the
// caller. Pure function of its arguments.
func SkeletonAt(defaults Defaults, now time.Time, deviceID string) *Document {
	ts := FormatTimestamp(now)
	return &Document{
		Meta: Meta{
			Version:   SchemaVersion,
			Currency:  defaults.Currency,
			Timezone:  defaults.Timezone,
			CreatedAt: ts,
			UpdatedAt: ts,
			DeviceID:  deviceID,
		},
		Settings: json.RawMessage(`{"week_starts_on":"MON","weekly_summary_day":"SUN","monthly_close_day":"LAST_DAY","dark_mode":true}`),
		Plan: json.RawMessage(`{` +
			`"income":{"weekly_income_amount":2870.44,"notes":"Ingreso semanal"},` +
			`"savings_plan":{"monthly_total":6000,"monthly_rigid":5000,"monthly_flexible":1000,"flexible_rules":"Fondo flexible mensual"},` +
			`"fixed_costs":{"rent_monthly":2300,"travel_daily":100,"travel_no_spend_weekday":"SUN","shopping_monthly_cash":580}}`),
		Accounts: json.RawMessage(`{"investments":[],"debts":[],"receivables":[],` +
			`"vouchers":{"monthly_average":900,"balance_estimated":0,"notes":"Vales"}}`),
		Ledger: Ledger{Days: []DayRecord{}},
		Goals:  json.RawMessage(`{}`),
		Alerts: json.RawMessage(`{"soft_alerts_enabled":true,"rules":{}}`),
	}
}

// NewDayRecord builds a zero-valued record for a date.
func NewDayRecord(date string, now time.Time) DayRecord {
	return DayRecord{
		Date:         date,
		UpdatedAt:    FormatTimestamp(now),
		DebtPayments: json.RawMessage("[]"),
	}
}
