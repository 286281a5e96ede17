package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// extractClaims pulls falsifiable claims out of the joined findings.
// Malformed output means no claims, never a stage error: the pipeline
// still completes with a report and zero-default validation.
func (e *Executor) extractClaims(ctx context.Context, st *State) {
	st.Claims = nil
	if len(st.Findings) == 0 {
		return
	}

	prompt := fmt.Sprintf(claimsPrompt, st.Subject, truncate(strings.Join(st.Findings, "\n\n"), 16000))
	out, err := e.deps.Oracle.Complete(ctx, prompt)
	if err != nil {
		zap.L().Warn("claim extraction call failed, continuing without claims", zap.Error(err))
		return
	}

	claims, err := parseClaims(out)
	if err != nil {
		zap.L().Warn("claim extraction response not parseable, continuing without claims",
			zap.Error(err),
			zap.Int("response_len", len(out)),
		)
		return
	}
	st.Claims = claims
}
