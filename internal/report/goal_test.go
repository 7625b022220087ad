package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateGoal(t *testing.T) {
	doc := mustDecode(t, `{
		"accounts": {"investments":[{"principal":60000}]},
		"goals": {"savings_total_target":{"enabled":true,"target_amount":80000}},
		"ledger": {"days":[]}
	}`)
	summary := SummarizeMonth(doc, "2024-03")

	p, ok := EvaluateGoal(doc, summary)
	require.True(t, ok)
	assert.Equal(t, 80000.0, p.TargetAmount)
	assert.Equal(t, 60000.0, p.Achieved)
	assert.Equal(t, 0.75, p.Percent)
	assert.Equal(t, 20000.0, p.Remaining)
}

func TestEvaluateGoalOvershoot(t *testing.T) {
	doc := mustDecode(t, `{
		"accounts": {"investments":[{"principal":90000}]},
		"goals": {"savings_total_target":{"enabled":true,"target_amount":80000}},
		"ledger": {"days":[]}
	}`)

	p, ok := EvaluateGoal(doc, SummarizeMonth(doc, "2024-03"))
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Percent)
	assert.Equal(t, 0.0, p.Remaining)
}

func TestEvaluateGoalDisabledOrAbsent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no goals section", `{"ledger":{"days":[]}}`},
		{"empty goals", `{"goals":{},"ledger":{"days":[]}}`},
		{"disabled target", `{"goals":{"savings_total_target":{"enabled":false,"target_amount":80000}},"ledger":{"days":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDecode(t, tt.payload)
			_, ok := EvaluateGoal(doc, SummarizeMonth(doc, "2024-03"))
			assert.False(t, ok)
		})
	}
}
