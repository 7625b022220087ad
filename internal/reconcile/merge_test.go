package reconcile

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finanzas-dev/finanzas/internal/document"
)

var frozenNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func frozenMerger() *Merger {
	return &Merger{
		Defaults: document.Defaults{Currency: "MXN", Timezone: "America/Mexico_City"},
		Now:      func() time.Time { return frozenNow },
	}
}

func mustDecode(t *testing.T, payload string) *document.Document {
	t.Helper()
	doc, err := document.Decode([]byte(payload))
	require.NoError(t, err)
	return doc
}

func mustEncode(t *testing.T, doc *document.Document) string {
	t.Helper()
	out, err := doc.Encode()
	require.NoError(t, err)
	return string(out)
}

func dates(doc *document.Document) []string {
	out := make([]string, 0, len(doc.Ledger.Days))
	for _, d := range doc.Ledger.Days {
		out = append(out, d.Date)
	}
	return out
}

func TestMergeUnionOfDates(t *testing.T) {
	local := mustDecode(t, `{
		"meta": {"updated_at":"2024-03-02T10:00:00.000Z"},
		"ledger": {"days":[
			{"date":"2024-03-01","updated_at":"2024-03-01T09:00:00.000Z"},
			{"date":"2024-03-03","updated_at":"2024-03-03T09:00:00.000Z"}
		]}
	}`)
	remote := mustDecode(t, `{
		"meta": {"updated_at":"2024-03-02T11:00:00.000Z"},
		"ledger": {"days":[
			{"date":"2024-03-02","updated_at":"2024-03-02T09:00:00.000Z"}
		]}
	}`)

	out := frozenMerger().Merge(local, remote)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, dates(out))
}

func TestMergePerDayWinner(t *testing.T) {
	tests := []struct {
		name      string
		localTS   string
		remoteTS  string
		wantNotes string
	}{
		{"local newer", "2024-03-01T12:00:00.000Z", "2024-03-01T10:00:00.000Z", "local"},
		{"remote newer", "2024-03-01T10:00:00.000Z", "2024-03-01T12:00:00.000Z", "remote"},
		{"exact tie goes local", "2024-03-01T10:00:00.000Z", "2024-03-01T10:00:00.000Z", "local"},
		{"unparsable local loses", "garbage", "2024-03-01T10:00:00.000Z", "remote"},
		{"unparsable remote loses", "2024-03-01T10:00:00.000Z", "garbage", "local"},
		{"both unparsable ties local", "garbage", "also garbage", "local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := mustDecode(t, `{"ledger":{"days":[
				{"date":"2024-03-01","updated_at":"`+tt.localTS+`","notes":"local"}
			]}}`)
			remote := mustDecode(t, `{"ledger":{"days":[
				{"date":"2024-03-01","updated_at":"`+tt.remoteTS+`","notes":"remote"}
			]}}`)

			out := frozenMerger().Merge(local, remote)
			require.Len(t, out.Ledger.Days, 1)
			assert.Equal(t, tt.wantNotes, out.Ledger.Days[0].Notes)
		})
	}
}

func TestMergeWinnerTakenWhole(t *testing.T) {
	// The winning record replaces the loser entirely; no field-level blend.
	local := mustDecode(t, `{"ledger":{"days":[
		{"date":"2024-03-01","updated_at":"2024-03-01T12:00:00.000Z",
		 "income":{"cash":100},"notes":"","mood":"good"}
	]}}`)
	remote := mustDecode(t, `{"ledger":{"days":[
		{"date":"2024-03-01","updated_at":"2024-03-01T10:00:00.000Z",
		 "income":{"cash":0},"spend":{"other":77},"notes":"stale"}
	]}}`)

	out := frozenMerger().Merge(local, remote)
	require.Len(t, out.Ledger.Days, 1)
	day := out.Ledger.Days[0]
	assert.Equal(t, 100.0, day.Income.Cash.Float())
	assert.Equal(t, 0.0, day.Spend.Other.Float())
	assert.Equal(t, "", day.Notes)
}

func TestMergeSortOrder(t *testing.T) {
	local := mustDecode(t, `{"ledger":{"days":[
		{"date":"2024-03-15","updated_at":"2024-03-15T09:00:00.000Z"},
		{"date":"2024-01-02","updated_at":"2024-01-02T09:00:00.000Z"}
	]}}`)
	remote := mustDecode(t, `{"ledger":{"days":[
		{"date":"2024-12-01","updated_at":"2024-12-01T09:00:00.000Z"},
		{"date":"2024-02-28","updated_at":"2024-02-28T09:00:00.000Z"}
	]}}`)

	out := frozenMerger().Merge(local, remote)
	assert.Equal(t, []string{"2024-01-02", "2024-02-28", "2024-03-15", "2024-12-01"}, dates(out))
}

func TestMergeIdempotent(t *testing.T) {
	doc := mustDecode(t, `{
		"meta": {"version":"1.0.0","currency":"MXN","timezone":"America/Mexico_City",
			"updated_at":"2024-03-05T10:00:00.000Z","device_id":"dev-1"},
		"plan": {"savings_plan":{"monthly_rigid":5000,"monthly_flexible":1000}},
		"ledger": {"days":[
			{"date":"2024-03-01","updated_at":"2024-03-01T09:00:00.000Z","income":{"cash":100},"notes":"a"},
			{"date":"2024-03-02","updated_at":"2024-03-02T09:00:00.000Z","spend":{"travel":40},"notes":"b"}
		]}
	}`)

	m := frozenMerger()
	once := m.Merge(doc, doc)
	twice := m.Merge(once, once)

	if diff := cmp.Diff(mustEncode(t, once), mustEncode(t, twice)); diff != "" {
		t.Errorf("second merge changed the document (-once +twice):\n%s", diff)
	}
}

func TestMergeMonotonicTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		localTS  string
		remoteTS string
		want     string
	}{
		{
			"now wins when both are older",
			"2024-03-01T10:00:00.000Z", "2024-03-02T10:00:00.000Z",
			document.FormatTimestamp(frozenNow),
		},
		{
			"future local meta wins over now",
			"2024-03-20T10:00:00.000Z", "2024-03-02T10:00:00.000Z",
			"2024-03-20T10:00:00.000Z",
		},
		{
			"future remote meta wins over now",
			"2024-03-02T10:00:00.000Z", "2024-03-21T10:00:00.000Z",
			"2024-03-21T10:00:00.000Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := mustDecode(t, `{"meta":{"updated_at":"`+tt.localTS+`"},"ledger":{"days":[]}}`)
			remote := mustDecode(t, `{"meta":{"updated_at":"`+tt.remoteTS+`"},"ledger":{"days":[]}}`)

			out := frozenMerger().Merge(local, remote)
			assert.Equal(t, tt.want, out.Meta.UpdatedAt)
		})
	}
}

func TestMergeRemoteIsBase(t *testing.T) {
	local := mustDecode(t, `{
		"meta": {"currency":"USD","device_id":"local-dev"},
		"plan": {"savings_plan":{"monthly_rigid":9999}},
		"accounts": {"investments":[{"name":"local only"}]},
		"ledger": {"days":[]}
	}`)
	remote := mustDecode(t, `{
		"meta": {"currency":"EUR","device_id":"remote-dev"},
		"plan": {"savings_plan":{"monthly_rigid":5000}},
		"accounts": {"investments":[]},
		"goals": {"savings_total_target":80000},
		"ledger": {"days":[]}
	}`)

	out := frozenMerger().Merge(local, remote)
	assert.Equal(t, "EUR", out.Meta.Currency)
	assert.Equal(t, "remote-dev", out.Meta.DeviceID)
	assert.JSONEq(t, `{"savings_plan":{"monthly_rigid":5000}}`, string(out.Plan))
	assert.JSONEq(t, `{"investments":[]}`, string(out.Accounts))
	assert.JSONEq(t, `{"savings_total_target":80000}`, string(out.Goals))
}

func TestMergeFillsDefaults(t *testing.T) {
	local := mustDecode(t, `{"ledger":{"days":[]}}`)
	remote := mustDecode(t, `{"meta":{"device_id":"d"},"ledger":{"days":[]}}`)

	out := frozenMerger().Merge(local, remote)
	assert.Equal(t, "MXN", out.Meta.Currency)
	assert.Equal(t, "America/Mexico_City", out.Meta.Timezone)

	// An explicit currency on the remote copy is never overridden.
	remote2 := mustDecode(t, `{"meta":{"currency":"EUR"},"ledger":{"days":[]}}`)
	out2 := frozenMerger().Merge(local, remote2)
	assert.Equal(t, "EUR", out2.Meta.Currency)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	localJSON := `{
		"meta": {"updated_at":"2024-03-01T10:00:00.000Z"},
		"ledger": {"days":[{"date":"2024-03-01","updated_at":"2024-03-01T10:00:00.000Z","notes":"local"}]}
	}`
	remoteJSON := `{
		"meta": {"updated_at":"2024-03-02T10:00:00.000Z"},
		"ledger": {"days":[{"date":"2024-03-02","updated_at":"2024-03-02T10:00:00.000Z","notes":"remote"}]}
	}`
	local := mustDecode(t, localJSON)
	remote := mustDecode(t, remoteJSON)
	localBefore := mustEncode(t, local)
	remoteBefore := mustEncode(t, remote)

	out := frozenMerger().Merge(local, remote)
	out.Ledger.Days[0].Notes = "scribbled"
	out.Meta.UpdatedAt = "scribbled"

	assert.Equal(t, localBefore, mustEncode(t, local))
	assert.Equal(t, remoteBefore, mustEncode(t, remote))
}

func TestMergeDeterministic(t *testing.T) {
	local := mustDecode(t, `{"ledger":{"days":[
		{"date":"2024-03-03","updated_at":"2024-03-03T09:00:00.000Z"},
		{"date":"2024-03-01","updated_at":"2024-03-01T09:00:00.000Z"}
	]}}`)
	remote := mustDecode(t, `{"ledger":{"days":[
		{"date":"2024-03-02","updated_at":"2024-03-02T09:00:00.000Z"},
		{"date":"2024-03-04","updated_at":"2024-03-04T09:00:00.000Z"}
	]}}`)

	m := frozenMerger()
	first := mustEncode(t, m.Merge(local, remote))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, mustEncode(t, m.Merge(local, remote)))
	}
}

// Two devices captured different days offline; syncing must interleave them
// and lose nothing.
func TestMergeScenarioDivergentDays(t *testing.T) {
	local := mustDecode(t, `{
		"meta": {"updated_at":"2024-03-05T20:00:00.000Z","device_id":"phone"},
		"ledger": {"days":[
			{"date":"2024-03-04","updated_at":"2024-03-04T21:00:00.000Z","income":{"cash":410},"notes":"phone"},
			{"date":"2024-03-05","updated_at":"2024-03-05T20:00:00.000Z","spend":{"travel":100},"notes":"phone"}
		]}
	}`)
	remote := mustDecode(t, `{
		"meta": {"updated_at":"2024-03-05T21:30:00.000Z","device_id":"laptop"},
		"ledger": {"days":[
			{"date":"2024-03-03","updated_at":"2024-03-03T22:00:00.000Z","income":{"cash":410},"notes":"laptop"},
			{"date":"2024-03-05","updated_at":"2024-03-05T21:30:00.000Z","spend":{"travel":100,"other":55},"notes":"laptop"}
		]}
	}`)

	out := frozenMerger().Merge(local, remote)
	assert.Equal(t, []string{"2024-03-03", "2024-03-04", "2024-03-05"}, dates(out))
	assert.Equal(t, "laptop", out.Ledger.Days[0].Notes)
	assert.Equal(t, "phone", out.Ledger.Days[1].Notes)
	// 03-05 edited later on the laptop.
	assert.Equal(t, "laptop", out.Ledger.Days[2].Notes)
	assert.Equal(t, 55.0, out.Ledger.Days[2].Spend.Other.Float())
}

func TestMergeJSON(t *testing.T) {
	out, err := frozenMerger().MergeJSON(
		[]byte(`{"ledger":{"days":[{"date":"2024-03-01","updated_at":"2024-03-01T09:00:00.000Z"}]}}`),
		[]byte(`{"ledger":{"days":[{"date":"2024-03-02","updated_at":"2024-03-02T09:00:00.000Z"}]}}`),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, dates(out))
}

func TestMergeJSONRejectsMalformedLedger(t *testing.T) {
	good := []byte(`{"ledger":{"days":[]}}`)
	bad := []byte(`{"ledger":{"days":{"2024-03-01":{}}}}`)

	_, err := frozenMerger().MergeJSON(good, bad)
	assert.ErrorIs(t, err, document.ErrMalformed)

	_, err = frozenMerger().MergeJSON(bad, good)
	assert.ErrorIs(t, err, document.ErrMalformed)

	_, err = frozenMerger().MergeJSON(good, []byte(`not json`))
	assert.ErrorIs(t, err, document.ErrParse)
}

// Deleting a day locally leaves no tombstone, so a remote copy that still
// carries it brings it back on the next merge. Accepted behavior.
func TestMergeResurrectsLocallyDeletedDay(t *testing.T) {
	local := mustDecode(t, `{
		"meta": {"updated_at":"2024-03-09T10:00:00.000Z"},
		"ledger": {"days":[]}
	}`)
	remote := mustDecode(t, `{
		"meta": {"updated_at":"2024-03-08T10:00:00.000Z"},
		"ledger": {"days":[{"date":"2024-03-07","updated_at":"2024-03-07T10:00:00.000Z","notes":"deleted on phone"}]}
	}`)

	out := frozenMerger().Merge(local, remote)
	assert.Equal(t, []string{"2024-03-07"}, dates(out))
}

func TestMergePreservesUnknownDayKeys(t *testing.T) {
	local := mustDecode(t, `{"ledger":{"days":[
		{"date":"2024-03-01","updated_at":"2024-03-01T12:00:00.000Z","mood":"great","tags":["a","b"]}
	]}}`)
	remote := mustDecode(t, `{"ledger":{"days":[]}}`)

	out := frozenMerger().Merge(local, remote)
	encoded := mustEncode(t, out)
	assert.Contains(t, encoded, `"mood"`)
	assert.Contains(t, encoded, `"tags"`)
}
