package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/metrics"
	"github.com/clearleaf/greenwash-cli/internal/model"
)

// Scoring engine modes.
const (
	RulesModeRubric = "rules_llm"
	RulesModeLegacy = "legacy"
)

const noAnalysisPlaceholder = "No analysis content was produced for this document."

// scoreMetrics runs the configured scoring engine over the combined
// analysis text. Scoring never fails the stage: an engine that cannot
// produce a parseable score yields the all-zero metrics tagged "error".
func (e *Executor) scoreMetrics(ctx context.Context, st *State) {
	text := combinedAnalysisText(st)

	switch st.RulesMode {
	case RulesModeLegacy:
		st.Metrics = e.scoreLegacy(ctx, text)
	default:
		st.Metrics = e.scoreRubric(ctx, text)
	}
}

// scoreRubric is the rules_llm engine: scan for rule hits, score via the
// strict rubric prompt, retry exactly once with the strict header on a
// parse failure, and fall back to zero metrics if the retry also fails.
func (e *Executor) scoreRubric(ctx context.Context, text string) model.Metrics {
	hits := metrics.Scan(text)
	prompt := metrics.RubricPrompt(truncate(text, 16000), hits)

	raw, err := e.deps.Oracle.Complete(ctx, prompt)
	if err != nil {
		zap.L().Warn("rubric scoring call failed", zap.Error(err))
		return metrics.Zero("error", err.Error())
	}

	data, err := metrics.ParseStrict(raw)
	if err != nil {
		zap.L().Warn("rubric response not parseable, retrying with strict header", zap.Error(err))
		raw, retryErr := e.deps.Oracle.Complete(ctx, metrics.StrictRetryHeader+prompt)
		if retryErr == nil {
			data, retryErr = metrics.ParseStrict(raw)
		}
		if retryErr != nil {
			zap.L().Warn("strict retry failed, scoring zero", zap.Error(retryErr))
			return metrics.Zero("error", retryErr.Error())
		}
	}

	m := metrics.Normalize(data)
	m.Engine = "rules-v1|llm-rubric"
	return m
}

// scoreLegacy is the free-form engine kept for result compatibility.
func (e *Executor) scoreLegacy(ctx context.Context, text string) model.Metrics {
	out, err := e.deps.Oracle.Complete(ctx, fmt.Sprintf(legacyMetricsPrompt, truncate(text, 16000)))
	if err != nil {
		zap.L().Warn("legacy scoring call failed", zap.Error(err))
		return metrics.Zero("error", err.Error())
	}

	data, err := metrics.ParseStrict(out)
	if err != nil {
		zap.L().Warn("legacy scoring response not parseable", zap.Error(err))
		return metrics.Zero("error", err.Error())
	}

	m := metrics.Normalize(convertLegacy(data))
	m.Engine = "legacy"
	return m
}

// convertLegacy lifts the label-keyed 0-10 legacy shape into the radar
// schema the normalizer expects. Responses already carrying a radar pass
// through untouched.
func convertLegacy(data map[string]any) map[string]any {
	if _, ok := data["radar"].(map[string]any); ok {
		return data
	}

	labelToDim := make(map[string]string, len(model.DimLabels))
	for dim, label := range model.DimLabels {
		labelToDim[strings.ToLower(label)] = dim
	}

	radar := make(map[string]any)
	rationale := make(map[string]any)
	for key, val := range data {
		dim, ok := labelToDim[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		entry, ok := val.(map[string]any)
		if !ok {
			continue
		}
		if score, ok := entry["score"].(float64); ok {
			radar[dim] = score * 10
		}
		if reason, ok := entry["reason"].(string); ok {
			rationale[dim] = reason
		}
	}

	out := map[string]any{"radar": radar, "rationale": rationale}
	if overall, ok := data["overall_greenwashing_score"].(map[string]any); ok {
		out["overall"] = overall["score"]
		out["overall_greenwashing_score"] = overall
	}
	if conf, ok := data["confidence"]; ok {
		out["confidence"] = conf
	}
	return out
}

// combinedAnalysisText is what the scoring engines see: the findings plus
// each validated claim with its verdicts.
func combinedAnalysisText(st *State) string {
	var b strings.Builder
	for _, f := range st.Findings {
		b.WriteString(f)
		b.WriteString("\n\n")
	}
	for _, v := range st.Validations {
		if v.Claim.Quotation != "" {
			fmt.Fprintf(&b, "Claim: %s\nWhy it matters: %s\n", v.Claim.Quotation, v.Claim.Explanation)
		}
		for _, tool := range v.ToolsSelected {
			if verdict, ok := v.Results[tool]; ok {
				fmt.Fprintf(&b, "%s validation: %s\n", tool, verdict)
			}
		}
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return noAnalysisPlaceholder
	}
	return text
}

// metricsJSON renders metrics for the synthesis prompt.
func metricsJSON(m model.Metrics) string {
	out, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(out)
}
