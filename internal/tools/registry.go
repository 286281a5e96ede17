package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/model"
	"github.com/clearleaf/greenwash-cli/internal/resilience"
	"github.com/clearleaf/greenwash-cli/pkg/oracle"
	"github.com/clearleaf/greenwash-cli/pkg/wikirate"
)

const registryValidationPrompt = `You are validating environmental claims made by %s against independently reported company metrics.

Reported metrics:
%s

Claims to validate:
%s

For each numbered claim, give a verdict in one short paragraph starting with one of:
- Supported: the reported data corroborates the claim
- Contradicted: the reported data disputes the claim
- Mentioned: related data exists but neither confirms nor disputes the claim
- Not Mentioned: no reported data addresses the claim

Keep the claims in order. Separate verdicts with a blank line.`

// RegistryTool validates claims against the company-metrics registry.
type RegistryTool struct {
	client wikirate.Client
	oracle oracle.Client
}

// NewRegistryTool creates the registry validation tool.
func NewRegistryTool(client wikirate.Client, o oracle.Client) *RegistryTool {
	return &RegistryTool{client: client, oracle: o}
}

// Name returns the tool identifier used in tool plans.
func (t *RegistryTool) Name() model.Tool {
	return model.ToolRegistry
}

// Validate looks the subject up in the registry and asks the oracle for
// per-claim verdicts against the reported data. A subject with no record
// is a real verdict, not an error.
func (t *RegistryTool) Validate(ctx context.Context, subject, claimBatch string) (string, error) {
	company, err := t.client.CompanyMetrics(ctx, subject)
	if errors.Is(err, wikirate.ErrNotFound) {
		zap.L().Info("subject not in registry", zap.String("subject", subject))
		return fmt.Sprintf("%s not found in the company-metrics registry. Manual verification required.", subject), nil
	}
	if err != nil {
		return "", resilience.WithKind(resilience.KindToolUnavailable,
			eris.Wrap(err, "registry validation"))
	}
	if len(company.Answers) == 0 {
		return fmt.Sprintf("%s has a registry record but no reported metrics. Manual verification required.", subject), nil
	}

	prompt := fmt.Sprintf(registryValidationPrompt, subject, formatAnswers(company.Answers), claimBatch)
	verdict, err := t.oracle.Complete(ctx, prompt)
	if err != nil {
		return "", eris.Wrap(err, "registry validation")
	}
	return verdict, nil
}

func formatAnswers(answers []wikirate.Answer) string {
	var b strings.Builder
	for _, a := range answers {
		fmt.Fprintf(&b, "- %s (%d): %s\n", a.Metric, a.Year, a.Value)
	}
	return strings.TrimSpace(b.String())
}
