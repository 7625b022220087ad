// Package reconcile resolves two snapshots of the finance document, one
// local and one remote, into a single merged document. It is pure: no I/O,
// inputs treated as immutable, deterministic once the clock is fixed.
package reconcile

import (
	"sort"
	"time"

	"github.com/finanzas-dev/finanzas/internal/document"
)

// Merger merges documents under a per-day, timestamp-based policy.
// The zero value uses the wall clock and no currency/timezone fallbacks.
type Merger struct {
	// Defaults fill meta.currency and meta.timezone only when the merged
	// result lacks them. Local values are never consulted for these
	// fields; the remote copy is the base for everything outside the
	// ledger.
	Defaults document.Defaults

	// Now supplies the merge instant. Tests freeze it; nil means time.Now.
	Now func() time.Time
}

// Merge reconciles local against remote. The remote document is the
// structural base: plan, accounts, goals, alerts and any meta fields not
// recomputed here are carried from it verbatim, so local-only edits to
// those sections do not survive a sync. Day records are merged per date
// with the newer updated_at winning and local winning exact ties.
func (m *Merger) Merge(local, remote *document.Document) *document.Document {
	out := remote.Clone()

	merged := make(map[string]document.DayRecord, len(out.Ledger.Days))
	for _, day := range remote.Ledger.Days {
		merged[day.Date] = day.Clone()
	}
	for _, day := range local.Ledger.Days {
		theirs, ok := merged[day.Date]
		if !ok {
			merged[day.Date] = day.Clone()
			continue
		}
		ours := document.ParseTimestamp(day.UpdatedAt)
		its := document.ParseTimestamp(theirs.UpdatedAt)
		if !ours.Before(its) {
			merged[day.Date] = day.Clone()
		}
	}

	days := make([]document.DayRecord, 0, len(merged))
	for _, day := range merged {
		days = append(days, day)
	}
	// YYYY-MM-DD sorts chronologically as plain strings.
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	out.Ledger.Days = days

	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	stamp := document.ParseTimestamp(local.Meta.UpdatedAt)
	if ru := document.ParseTimestamp(remote.Meta.UpdatedAt); ru.After(stamp) {
		stamp = ru
	}
	if now.After(stamp) {
		stamp = now
	}
	out.Meta.UpdatedAt = document.FormatTimestamp(stamp)

	if out.Meta.Currency == "" {
		out.Meta.Currency = m.Defaults.Currency
	}
	if out.Meta.Timezone == "" {
		out.Meta.Timezone = m.Defaults.Timezone
	}
	return out
}

// MergeJSON decodes both payloads and merges them. Structural problems in
// either ledger surface as document.ErrMalformed; a payload that is not
// JSON at all surfaces as document.ErrParse.
func (m *Merger) MergeJSON(local, remote []byte) (*document.Document, error) {
	l, err := document.Decode(local)
	if err != nil {
		return nil, err
	}
	r, err := document.Decode(remote)
	if err != nil {
		return nil, err
	}
	return m.Merge(l, r), nil
}
