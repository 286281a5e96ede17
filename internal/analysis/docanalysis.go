package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const genericEvidenceQuery = "environmental claims sustainability commitments greenwashing"

// documentAnalysis produces one finding per selected hypothesis: retrieve
// the most relevant passages, then analyze them under that hypothesis.
// A failed hypothesis degrades to raw passages or a fallback marker; the
// stage itself never fails.
func (e *Executor) documentAnalysis(ctx context.Context, st *State) {
	st.Findings = st.Findings[:0]

	if len(st.Selected) == 0 {
		st.Findings = append(st.Findings, e.genericExcerpts(ctx, st))
		return
	}
	for _, hyp := range st.Selected {
		st.Findings = append(st.Findings, e.analyzeHypothesis(ctx, st, hyp))
	}
}

func (e *Executor) analyzeHypothesis(ctx context.Context, st *State, hypothesis string) string {
	sctx, cancel := context.WithTimeout(ctx, e.deps.SearchTimeout)
	passages, err := st.Evidence.Search(sctx, hypothesis, 10)
	cancel()
	if err != nil {
		zap.L().Warn("evidence search failed for hypothesis", zap.Error(err))
		return e.genericExcerpts(ctx, st)
	}

	prompt := fmt.Sprintf(hypothesisAnalysisPrompt, st.Subject, hypothesis, truncate(joinPassages(passages), 12000))
	out, err := e.deps.Oracle.Complete(ctx, prompt)
	if err != nil {
		zap.L().Warn("hypothesis analysis failed, keeping raw excerpts", zap.Error(err))
		if raw := joinPassages(passages); raw != "" {
			return "Document excerpts (analysis unavailable):\n" + truncate(raw, 6000)
		}
		return e.genericExcerpts(ctx, st)
	}
	return out
}

// genericExcerpts is the last-resort finding: raw passages from a generic
// greenwashing query, or an explicit marker when even that fails.
func (e *Executor) genericExcerpts(ctx context.Context, st *State) string {
	sctx, cancel := context.WithTimeout(ctx, e.deps.SearchTimeout)
	defer cancel()

	passages, err := st.Evidence.Search(sctx, genericEvidenceQuery, 8)
	if err != nil || len(passages) == 0 {
		return "[Fallback] Document context could not be retrieved for this analysis."
	}
	return "Document excerpts (analysis unavailable):\n" + truncate(joinPassages(passages), 6000)
}
