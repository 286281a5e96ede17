package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

func outcome(tools []model.Tool, results map[model.Tool]string) model.ValidationOutcome {
	return model.ValidationOutcome{
		Claim:         model.Claim{Quotation: "claim"},
		ToolsSelected: tools,
		Results:       results,
	}
}

func TestSummarizeConfidenceScore(t *testing.T) {
	// Both tools attempted and succeeded: 100% success capped at 100
	// even with the +10/+5 bonuses.
	s := Summarize([]model.ValidationOutcome{
		outcome([]model.Tool{model.ToolNews, model.ToolRegistry}, map[model.Tool]string{
			model.ToolNews:     "Supported: fine.",
			model.ToolRegistry: "Mentioned: partial.",
		}),
	})
	assert.Equal(t, 100.0, s.ConfidenceScore)
	assert.Equal(t, model.RiskLow, s.RiskRating)

	// News failed, registry succeeded: 1/2 * 100 + 10 = 60.
	s = Summarize([]model.ValidationOutcome{
		outcome([]model.Tool{model.ToolNews, model.ToolRegistry}, map[model.Tool]string{
			model.ToolNews:     "[Error] feed unreachable",
			model.ToolRegistry: "Mentioned: partial.",
		}),
	})
	assert.Equal(t, 60.0, s.ConfidenceScore)

	// Only news attempted and succeeded: 100 + 5 capped at 100.
	s = Summarize([]model.ValidationOutcome{
		outcome([]model.Tool{model.ToolNews}, map[model.Tool]string{
			model.ToolNews: "Not Mentioned: silent.",
		}),
	})
	assert.Equal(t, 100.0, s.ConfidenceScore)

	// Nothing attempted: zero confidence, not a division by zero.
	s = Summarize([]model.ValidationOutcome{
		outcome([]model.Tool{model.ToolNone}, nil),
	})
	assert.Equal(t, 0.0, s.ConfidenceScore)
	assert.Equal(t, model.RiskLow, s.RiskRating)
}

func TestSummarizeRiskRating(t *testing.T) {
	contradicted := func(n int) []model.ValidationOutcome {
		var outs []model.ValidationOutcome
		for i := 0; i < n; i++ {
			outs = append(outs, outcome([]model.Tool{model.ToolNews}, map[model.Tool]string{
				model.ToolNews: "Contradicted: disputed by coverage.",
			}))
		}
		return outs
	}

	assert.Equal(t, model.RiskLow, Summarize(contradicted(0)).RiskRating)
	assert.Equal(t, model.RiskMedium, Summarize(contradicted(1)).RiskRating)
	assert.Equal(t, model.RiskMedium, Summarize(contradicted(2)).RiskRating)
	assert.Equal(t, model.RiskHigh, Summarize(contradicted(3)).RiskRating)
}

func TestSummarizeCountsNumberedContradictions(t *testing.T) {
	// A single verdict can carry several contradiction lines.
	s := Summarize([]model.ValidationOutcome{
		outcome([]model.Tool{model.ToolNews}, map[model.Tool]string{
			model.ToolNews: "1. Contradicted: first claim disputed.\n2. Supported: second holds.\n3. Contradicted: third disputed.\nContradicted: fourth disputed.",
		}),
	})
	assert.Equal(t, model.RiskHigh, s.RiskRating)
}

func TestIsErrorVerdict(t *testing.T) {
	assert.True(t, isErrorVerdict("[Error] feed unreachable"))
	assert.True(t, isErrorVerdict("  [Error] Missing news result."))
	assert.False(t, isErrorVerdict("Supported: fine."))

	// A whitelist warning is not a failure.
	warned := "[Warning] \"Acme\" not in whitelist. Validation proceeded; treat results with caution.\nContradicted: disputed."
	assert.False(t, isErrorVerdict(warned))

	// But a warning stacked on a failure placeholder still is one.
	warnedError := "[Warning] \"Acme\" not in whitelist. Validation proceeded; treat results with caution.\n[Error] feed unreachable"
	assert.True(t, isErrorVerdict(warnedError))
}

func TestSummarizeWarnedVerdictStillCountsRisk(t *testing.T) {
	s := Summarize([]model.ValidationOutcome{
		outcome([]model.Tool{model.ToolNews}, map[model.Tool]string{
			model.ToolNews: "[Warning] \"Acme\" not in whitelist. Validation proceeded; treat results with caution.\nContradicted: disputed by coverage.",
		}),
	})
	assert.Equal(t, model.RiskMedium, s.RiskRating)
}

func TestRecommendationsReflectToolOutcomes(t *testing.T) {
	s := Summarize([]model.ValidationOutcome{
		outcome([]model.Tool{model.ToolNews, model.ToolRegistry}, map[model.Tool]string{
			model.ToolNews:     "[Error] feed unreachable",
			model.ToolRegistry: "Mentioned: partial.",
		}),
	})

	joined := ""
	for _, r := range s.Recommendations {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "News validation did not complete")
	assert.Contains(t, joined, "registry's independently reported metrics")
	assert.Contains(t, joined, "absence of contradiction is not verification")
}
