// Package analysis implements the staged greenwashing analysis pipeline:
// an explicit state machine from hypothesis generation through claim
// validation to the final synthesized report, with a linear fallback
// supervisor for when the staged path cannot run.
package analysis

import (
	"github.com/clearleaf/greenwash-cli/internal/evidence"
	"github.com/clearleaf/greenwash-cli/internal/model"
	"github.com/clearleaf/greenwash-cli/internal/resilience"
)

// Stage identifies one state of the pipeline state machine.
type Stage string

const (
	StageGenerateHypotheses Stage = "generate_hypotheses"
	StageEvaluateHypotheses Stage = "evaluate_hypotheses"
	StageDocumentAnalysis   Stage = "document_analysis"
	StageExtractClaims      Stage = "extract_claims"
	StagePlanTools          Stage = "plan_tools"
	StageValidateClaims     Stage = "validate_claims"
	StageScoreMetrics       Stage = "score_metrics"
	StageSynthesize         Stage = "synthesize"
	StageComplete           Stage = "complete"
	StageError              Stage = "error"
)

// State is the pipeline's working memory for one request. Stages mutate
// it one at a time; nothing else touches it while the pipeline runs.
type State struct {
	Subject       string
	Language      string
	RulesMode     string
	Evidence      evidence.Searcher
	Hypotheses    []string
	Selected      []string
	Findings      []string
	Claims        []model.Claim
	ToolPlan      []model.ToolPlanEntry
	Validations   []model.ValidationOutcome
	Metrics       model.Metrics
	Report        string
	Iteration     int
	MaxIterations int
	Err           *model.ErrorInfo
}

// fail records a stage failure. Later stages see Err and become no-ops;
// the machine still walks its transitions to the terminal decision.
func (s *State) fail(stage Stage, err error) {
	s.Err = &model.ErrorInfo{
		Kind:    string(resilience.KindOf(err)),
		Message: err.Error(),
		Stage:   string(stage),
	}
}
