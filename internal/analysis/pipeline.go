package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/clearleaf/greenwash-cli/internal/evidence"
	"github.com/clearleaf/greenwash-cli/internal/metrics"
	"github.com/clearleaf/greenwash-cli/internal/model"
	"github.com/clearleaf/greenwash-cli/internal/store"
)

// Request is one analysis request. The evidence searcher is
// session-scoped: the caller binds it to the ingested document.
type Request struct {
	Subject       string
	Evidence      evidence.Searcher
	Language      string
	RulesMode     string
	MaxIterations int
}

// Pipeline is the entry point tying the staged executor, the fallback
// supervisor, persistence, and the validation orchestrator together.
type Pipeline struct {
	deps  Deps
	store store.Store
}

// New creates a Pipeline. The store may be nil; persistence is best
// effort either way.
func New(deps Deps, st store.Store) *Pipeline {
	return &Pipeline{deps: deps, store: st}
}

// Run executes one request and always returns a structurally complete
// result when it returns a result at all: every failure mode short of a
// fallback-path failure lands in the result as data.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.AnalysisResult, error) {
	start := time.Now()
	if req.Subject == "" {
		return nil, eris.New("analysis: subject required")
	}
	if req.Evidence == nil {
		return nil, eris.New("analysis: evidence searcher required")
	}

	st := &State{
		Subject:       req.Subject,
		Language:      normalizeLanguage(req.Language),
		RulesMode:     req.RulesMode,
		Evidence:      req.Evidence,
		MaxIterations: req.MaxIterations,
	}

	var run *model.Run
	if p.store != nil {
		created, err := p.store.CreateRun(ctx, req.Subject)
		if err != nil {
			zap.L().Warn("run persistence unavailable", zap.Error(err))
		} else {
			run = created
		}
	}

	engine := "staged"
	exec, err := NewExecutor(p.deps)
	if err != nil {
		zap.L().Warn("executor construction failed, using fallback supervisor", zap.Error(err))
		engine = "fallback"
		if ferr := p.supervisor().Run(ctx, st); ferr != nil {
			p.markRunFailed(ctx, run)
			return nil, ferr
		}
	} else if perr := p.runStaged(ctx, exec, st); perr != nil {
		zap.L().Error("staged pipeline failed hard, using fallback supervisor", zap.Error(perr))
		engine = "fallback"
		st = &State{
			Subject:       st.Subject,
			Language:      st.Language,
			RulesMode:     st.RulesMode,
			Evidence:      st.Evidence,
			MaxIterations: st.MaxIterations,
		}
		if ferr := p.supervisor().Run(ctx, st); ferr != nil {
			p.markRunFailed(ctx, run)
			return nil, ferr
		}
	}

	res := assemble(st, engine)
	res.Duration = time.Since(start)
	if run != nil {
		res.RunID = run.ID
		if err := p.store.SaveResult(ctx, run.ID, res); err != nil {
			zap.L().Warn("result persistence failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	return res, nil
}

// markRunFailed flips the run to error when no result will be saved, so
// a fallback-path failure never leaves the row stuck in pending.
func (p *Pipeline) markRunFailed(ctx context.Context, run *model.Run) {
	if run == nil {
		return
	}
	if err := p.store.UpdateRunStatus(ctx, run.ID, model.RunError); err != nil {
		zap.L().Warn("run status update failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// runStaged runs the executor, converting a panic into an error so the
// fallback path can take over.
func (p *Pipeline) runStaged(ctx context.Context, exec *Executor, st *State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("staged pipeline panic: %v", r)
		}
	}()
	exec.Run(ctx, st)
	return nil
}

func (p *Pipeline) supervisor() *Supervisor {
	return &Supervisor{
		Oracle:    p.deps.Oracle,
		News:      p.deps.News,
		Registry:  p.deps.Registry,
		Whitelist: p.deps.Whitelist,
	}
}

// assemble builds the caller-facing envelope from pipeline state. Both
// paths feed through here, which is what keeps them structurally equal.
func assemble(st *State, engine string) *model.AnalysisResult {
	m := st.Metrics
	if m.Radar == nil {
		// The pipeline errored before scoring; the envelope still
		// carries schema-valid metrics.
		if st.Err != nil {
			m = metrics.Zero("error", st.Err.Message)
		} else {
			m = metrics.Zero("unknown", "")
		}
	}

	return &model.AnalysisResult{
		Subject:            st.Subject,
		InitialAnalysis:    strings.Join(st.Selected, "\n\n"),
		DocumentAnalysis:   strings.Join(st.Findings, "\n\n"),
		NewsValidation:     joinToolVerdicts(st.Validations, model.ToolNews),
		RegistryValidation: joinToolVerdicts(st.Validations, model.ToolRegistry),
		ToolPlan:           st.ToolPlan,
		Validations:        st.Validations,
		Metrics:            m,
		Report:             st.Report,
		Summary:            Summarize(st.Validations),
		Error:              st.Err,
		Engine:             engine,
	}
}

func joinToolVerdicts(outcomes []model.ValidationOutcome, tool model.Tool) string {
	var parts []string
	for _, o := range outcomes {
		if verdict, ok := o.Results[tool]; ok {
			parts = append(parts, verdict)
		}
	}
	return strings.Join(parts, "\n\n")
}

// normalizeLanguage validates the requested report language, falling
// back to English rather than erroring on junk input.
func normalizeLanguage(lang string) string {
	if lang == "" {
		return "en"
	}
	tag, err := language.Parse(lang)
	if err != nil {
		zap.L().Warn("invalid language tag, defaulting to en", zap.String("language", lang))
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}
