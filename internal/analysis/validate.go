package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clearleaf/greenwash-cli/internal/model"
	"github.com/clearleaf/greenwash-cli/internal/tools"
)

// validateClaims groups the tool plan by tool, issues one batched tool
// call per non-empty group under the worker pool, and realigns the split
// verdicts back onto claims. One group's failure yields error verdicts
// for its claims only; the other group is unaffected.
func (e *Executor) validateClaims(ctx context.Context, st *State) {
	st.Validations = make([]model.ValidationOutcome, len(st.ToolPlan))
	for i, entry := range st.ToolPlan {
		st.Validations[i] = model.ValidationOutcome{
			Claim:         entry.Claim,
			ToolsSelected: entry.Tools,
			Results:       make(map[model.Tool]string),
		}
	}

	// Plan indices per tool, in listed order. An entry can be in both.
	groups := make(map[model.Tool][]int)
	for i, entry := range st.ToolPlan {
		for _, tool := range entry.Tools {
			if tool == model.ToolNews || tool == model.ToolRegistry {
				groups[tool] = append(groups[tool], i)
			}
		}
	}

	var mu sync.Mutex
	verdicts := make(map[model.Tool][]string, len(groups))

	// Joint await only: group failures become error verdicts, never an
	// early cancel of the sibling group.
	var g errgroup.Group
	g.SetLimit(e.deps.Workers)
	for tool, idxs := range groups {
		tool, idxs := tool, idxs
		g.Go(func() error {
			segs := e.runToolGroup(ctx, tool, idxs, st)
			mu.Lock()
			verdicts[tool] = segs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for tool, idxs := range groups {
		segs := verdicts[tool]
		for pos, idx := range idxs {
			if pos < len(segs) {
				st.Validations[idx].Results[tool] = segs[pos]
			} else {
				st.Validations[idx].Results[tool] = fmt.Sprintf("[Error] Missing %s result.", tool)
			}
		}
	}
}

// runToolGroup validates one tool's claims in a single batched call and
// splits the response into per-claim verdicts.
func (e *Executor) runToolGroup(ctx context.Context, tool model.Tool, idxs []int, st *State) []string {
	var validator tools.Validator
	switch tool {
	case model.ToolNews:
		validator = e.deps.News
	case model.ToolRegistry:
		validator = e.deps.Registry
	default:
		return nil
	}

	batch := claimBatch(st.ToolPlan, idxs)
	out, err := validator.Validate(ctx, st.Subject, batch)
	if err != nil {
		zap.L().Warn("tool group failed",
			zap.String("tool", string(tool)),
			zap.Int("claims", len(idxs)),
			zap.Error(err),
		)
		msg := "[Error] " + err.Error()
		segs := make([]string, len(idxs))
		for i := range segs {
			segs[i] = msg
		}
		return segs
	}

	segs := splitVerdicts(out)
	if len(segs) < len(idxs) {
		zap.L().Warn("batched response has fewer verdicts than claims",
			zap.String("tool", string(tool)),
			zap.Int("claims", len(idxs)),
			zap.Int("verdicts", len(segs)),
		)
	}

	// The whitelist gates trust, not execution: off-list subjects are
	// still validated, their verdicts just carry the warning.
	if !e.whitelisted(st.Subject) {
		warning := fmt.Sprintf("[Warning] %q not in whitelist. Validation proceeded; treat results with caution.", st.Subject)
		for i := range segs {
			segs[i] = warning + "\n" + segs[i]
		}
	}
	return segs
}

func (e *Executor) whitelisted(subject string) bool {
	if len(e.deps.Whitelist) == 0 {
		return true
	}
	return e.deps.Whitelist[strings.ToLower(strings.TrimSpace(subject))]
}

// claimBatch renders the numbered claim list for one tool group.
func claimBatch(plan []model.ToolPlanEntry, idxs []int) string {
	var b strings.Builder
	for n, idx := range idxs {
		claim := plan[idx].Claim
		fmt.Fprintf(&b, "%d. Claim: %s\n   Context: %s\n", n+1, claim.Quotation, claim.Explanation)
	}
	return strings.TrimSpace(b.String())
}

// splitVerdicts cuts a batched response on blank lines, in listed order.
func splitVerdicts(out string) []string {
	var segs []string
	for _, seg := range strings.Split(strings.TrimSpace(out), "\n\n") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}
