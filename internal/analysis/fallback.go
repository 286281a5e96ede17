package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/metrics"
	"github.com/clearleaf/greenwash-cli/internal/model"
	"github.com/clearleaf/greenwash-cli/internal/tools"
	"github.com/clearleaf/greenwash-cli/pkg/oracle"
)

// Supervisor is the whole-pipeline fallback: a linear, bulk-granularity
// run of the same analysis used when the staged executor cannot be built
// or panics. It populates the same State fields the staged path does, so
// the result envelope is structurally identical. Its own oracle failures
// propagate to the caller; per-tool failures degrade to error verdicts.
type Supervisor struct {
	Oracle    oracle.Client
	News      tools.Validator
	Registry  tools.Validator
	Whitelist map[string]bool
}

// Run executes the linear sequence: bulk document analysis, bulk news
// validation, bulk registry validation, bulk metrics, synthesis.
func (s *Supervisor) Run(ctx context.Context, st *State) error {
	if s.Oracle == nil {
		return eris.New("fallback: oracle not configured")
	}
	zap.L().Info("fallback supervisor running", zap.String("subject", st.Subject))

	doc, err := s.bulkDocumentAnalysis(ctx, st)
	if err != nil {
		return eris.Wrap(err, "fallback: document analysis")
	}
	st.Findings = []string{doc}

	digest := truncate(doc, 8000)
	newsVerdict := s.bulkValidate(ctx, s.News, st.Subject, digest)
	registryVerdict := s.bulkValidate(ctx, s.Registry, st.Subject, digest)

	st.Validations = []model.ValidationOutcome{{
		Claim: model.Claim{
			Quotation:   "(bulk validation of the document's environmental claims)",
			Explanation: "Claim-level extraction was unavailable; the analysis was validated as a whole.",
		},
		ToolsSelected: []model.Tool{model.ToolNews, model.ToolRegistry},
		Results: map[model.Tool]string{
			model.ToolNews:     newsVerdict,
			model.ToolRegistry: registryVerdict,
		},
	}}

	st.Metrics = s.bulkMetrics(ctx, st)

	report, err := s.Oracle.Complete(ctx, fmt.Sprintf(synthesisPrompt,
		st.Subject,
		st.Language,
		truncate(doc, 12000),
		truncate(validationDigest(st), 12000),
		metricsJSON(st.Metrics),
	))
	if err != nil {
		return eris.Wrap(err, "fallback: synthesis")
	}
	st.Report = strings.TrimSpace(report)
	return nil
}

func (s *Supervisor) bulkDocumentAnalysis(ctx context.Context, st *State) (string, error) {
	var excerpts string
	if st.Evidence != nil {
		passages, err := st.Evidence.Search(ctx, genericEvidenceQuery, 8)
		if err != nil {
			zap.L().Warn("fallback evidence search failed", zap.Error(err))
		} else {
			excerpts = joinPassages(passages)
		}
	}
	if excerpts == "" {
		excerpts = "(no document excerpts available)"
	}
	return s.Oracle.Complete(ctx, fmt.Sprintf(fallbackAnalysisPrompt, st.Subject, truncate(excerpts, 12000)))
}

func (s *Supervisor) bulkValidate(ctx context.Context, v tools.Validator, subject, digest string) string {
	// The supervisor runs precisely when wiring is broken, so a missing
	// tool is an expected condition here, not a programming error.
	if v == nil {
		return "[Error] validation tool not configured."
	}
	batch := "1. Claim: The environmental claims described in the analysis below.\n   Context: " + digest
	out, err := v.Validate(ctx, subject, batch)
	if err != nil {
		zap.L().Warn("fallback tool validation failed",
			zap.String("tool", string(v.Name())),
			zap.Error(err),
		)
		return "[Error] " + err.Error()
	}
	if len(s.Whitelist) > 0 && !s.Whitelist[strings.ToLower(strings.TrimSpace(subject))] {
		return fmt.Sprintf("[Warning] %q not in whitelist. Validation proceeded; treat results with caution.\n%s", subject, out)
	}
	return out
}

func (s *Supervisor) bulkMetrics(ctx context.Context, st *State) model.Metrics {
	text := combinedAnalysisText(st)
	out, err := s.Oracle.Complete(ctx, fmt.Sprintf(legacyMetricsPrompt, truncate(text, 16000)))
	if err != nil {
		zap.L().Warn("fallback metrics call failed", zap.Error(err))
		return metrics.Zero("error", err.Error())
	}
	data, err := metrics.ParseStrict(out)
	if err != nil {
		zap.L().Warn("fallback metrics response not parseable", zap.Error(err))
		return metrics.Zero("error", err.Error())
	}
	m := metrics.Normalize(convertLegacy(data))
	m.Engine = "fallback"
	return m
}
