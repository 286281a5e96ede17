package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// generateHypotheses asks the oracle for four analytic approaches. This is
// the entry stage, so it also advances the iteration counter.
func (e *Executor) generateHypotheses(ctx context.Context, st *State) {
	st.Iteration++

	out, err := e.deps.Oracle.Complete(ctx, fmt.Sprintf(hypothesesPrompt, st.Subject))
	if err != nil {
		st.fail(StageGenerateHypotheses, err)
		return
	}

	st.Hypotheses = parseStringList(out)
	zap.L().Debug("hypotheses generated", zap.Int("count", len(st.Hypotheses)))
}

// evaluateHypotheses selects the top three approaches. A response that
// does not parse falls back to the first three generated ones; downstream
// tolerates any list length.
func (e *Executor) evaluateHypotheses(ctx context.Context, st *State) {
	if len(st.Hypotheses) == 0 {
		st.Selected = nil
		return
	}

	out, err := e.deps.Oracle.Complete(ctx, fmt.Sprintf(evaluatePrompt, strings.Join(st.Hypotheses, "\n\n")))
	if err != nil {
		st.fail(StageEvaluateHypotheses, err)
		return
	}

	selected := parseStringList(out)
	if len(selected) == 0 {
		zap.L().Warn("hypothesis evaluation unparseable, keeping first three generated")
		selected = st.Hypotheses
	}
	if len(selected) > 3 {
		selected = selected[:3]
	}
	st.Selected = selected
}
