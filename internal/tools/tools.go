// Package tools implements the evidence tools claims are validated
// against: recent news coverage and the open company-metrics registry.
// Each tool takes a batched claim list, gathers its evidence, and asks
// the oracle for a per-claim verdict.
package tools

import (
	"context"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

// Validator validates a numbered batch of claims about a subject against
// one evidence source. The returned text carries one verdict per claim,
// separated by blank lines. Failures surface as errors, never as empty
// strings.
type Validator interface {
	Name() model.Tool
	Validate(ctx context.Context, subject, claimBatch string) (string, error)
}
