package analysis

import (
	"context"
	"fmt"
	"strings"
)

// synthesize produces the final narrative report. This is the one late
// stage whose failure is a pipeline error: without a report there is
// nothing to deliver.
func (e *Executor) synthesize(ctx context.Context, st *State) {
	prompt := fmt.Sprintf(synthesisPrompt,
		st.Subject,
		st.Language,
		truncate(strings.Join(st.Findings, "\n\n"), 12000),
		truncate(validationDigest(st), 12000),
		metricsJSON(st.Metrics),
	)

	out, err := e.deps.Oracle.Complete(ctx, prompt)
	if err != nil {
		st.fail(StageSynthesize, err)
		return
	}
	st.Report = strings.TrimSpace(out)
}

// validationDigest flattens validation outcomes for the synthesis prompt.
func validationDigest(st *State) string {
	if len(st.Validations) == 0 {
		return "No claims were validated."
	}
	var b strings.Builder
	for i, v := range st.Validations {
		fmt.Fprintf(&b, "%d. Claim: %s\n", i+1, v.Claim.Quotation)
		for _, tool := range v.ToolsSelected {
			if verdict, ok := v.Results[tool]; ok {
				fmt.Fprintf(&b, "   %s: %s\n", tool, verdict)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
