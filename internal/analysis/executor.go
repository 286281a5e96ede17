package analysis

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/resilience"
	"github.com/clearleaf/greenwash-cli/internal/tools"
	"github.com/clearleaf/greenwash-cli/pkg/oracle"
)

// Deps are the collaborators the executor dispatches to. The evidence
// searcher is session-scoped and travels on the State instead.
type Deps struct {
	Oracle   oracle.Client
	News     tools.Validator
	Registry tools.Validator
	// Whitelist holds lowercased subject names cleared for validation.
	// Empty disables the check.
	Whitelist map[string]bool
	// Workers bounds concurrent tool dispatch. Default 3.
	Workers int
	// SearchTimeout bounds each evidence search. Default 6s.
	SearchTimeout time.Duration
}

// Executor drives the pipeline state machine.
type Executor struct {
	deps Deps
}

// NewExecutor validates dependency wiring. A construction failure is not
// retried; callers fall back to the linear supervisor.
func NewExecutor(deps Deps) (*Executor, error) {
	if deps.Oracle == nil {
		return nil, resilience.WithKind(resilience.KindConstruction, eris.New("executor: oracle not wired"))
	}
	if deps.News == nil {
		return nil, resilience.WithKind(resilience.KindConstruction, eris.New("executor: news tool not wired"))
	}
	if deps.Registry == nil {
		return nil, resilience.WithKind(resilience.KindConstruction, eris.New("executor: registry tool not wired"))
	}
	if deps.Workers <= 0 {
		deps.Workers = 3
	}
	if deps.SearchTimeout <= 0 {
		deps.SearchTimeout = 6 * time.Second
	}
	return &Executor{deps: deps}, nil
}

// transitions maps each working stage to its successor. Synthesize has no
// static successor; decideCompletion picks the terminal or loops.
var transitions = map[Stage]Stage{
	StageGenerateHypotheses: StageEvaluateHypotheses,
	StageEvaluateHypotheses: StageDocumentAnalysis,
	StageDocumentAnalysis:   StageExtractClaims,
	StageExtractClaims:      StagePlanTools,
	StagePlanTools:          StageValidateClaims,
	StageValidateClaims:     StageScoreMetrics,
	StageScoreMetrics:       StageSynthesize,
}

// Run walks the state machine to a terminal stage and returns it.
func (e *Executor) Run(ctx context.Context, st *State) Stage {
	if st.MaxIterations <= 0 {
		st.MaxIterations = 3
	}

	stage := StageGenerateHypotheses
	for {
		start := time.Now()
		e.step(ctx, stage, st)
		zap.L().Info("stage complete",
			zap.String("stage", string(stage)),
			zap.String("subject", st.Subject),
			zap.Int("iteration", st.Iteration),
			zap.Duration("elapsed", time.Since(start)),
		)

		if stage == StageSynthesize {
			next := decideCompletion(st)
			if next == StageGenerateHypotheses {
				zap.L().Info("report incomplete, iterating",
					zap.Int("iteration", st.Iteration),
					zap.Int("max_iterations", st.MaxIterations),
				)
				stage = next
				continue
			}
			return next
		}
		stage = transitions[stage]
	}
}

// step runs one stage. Every stage after the entry short-circuits when a
// prior stage has failed.
func (e *Executor) step(ctx context.Context, stage Stage, st *State) {
	if st.Err != nil && stage != StageGenerateHypotheses {
		return
	}
	switch stage {
	case StageGenerateHypotheses:
		e.generateHypotheses(ctx, st)
	case StageEvaluateHypotheses:
		e.evaluateHypotheses(ctx, st)
	case StageDocumentAnalysis:
		e.documentAnalysis(ctx, st)
	case StageExtractClaims:
		e.extractClaims(ctx, st)
	case StagePlanTools:
		e.planTools(ctx, st)
	case StageValidateClaims:
		e.validateClaims(ctx, st)
	case StageScoreMetrics:
		e.scoreMetrics(ctx, st)
	case StageSynthesize:
		e.synthesize(ctx, st)
	}
}

// decideCompletion is the conditional edge out of synthesis: error beats
// everything, a produced report completes, hitting the iteration bound
// completes best-effort, otherwise loop back to the entry stage.
func decideCompletion(st *State) Stage {
	switch {
	case st.Err != nil:
		return StageError
	case st.Report != "":
		return StageComplete
	case st.Iteration >= st.MaxIterations:
		return StageComplete
	default:
		return StageGenerateHypotheses
	}
}
