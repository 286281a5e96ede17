package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

// toolAliases maps the names the oracle actually emits onto tools.
var toolAliases = map[string]model.Tool{
	"news":                model.ToolNews,
	"news_validation":     model.ToolNews,
	"registry":            model.ToolRegistry,
	"wikirate":            model.ToolRegistry,
	"registry_validation": model.ToolRegistry,
}

// planTools routes each claim to its validation tools. Claims not marked
// as requiring verification get {none} without any oracle call.
func (e *Executor) planTools(ctx context.Context, st *State) {
	st.ToolPlan = make([]model.ToolPlanEntry, 0, len(st.Claims))
	for _, claim := range st.Claims {
		entry := model.ToolPlanEntry{Claim: claim, Tools: []model.Tool{model.ToolNone}}
		if claim.VerificationRequired.True() {
			entry.Tools = e.selectTools(ctx, st.Subject, claim)
		}
		st.ToolPlan = append(st.ToolPlan, entry)
	}
}

// selectTools asks the oracle which tools fit one claim. Anything that
// goes wrong means {none}: an unplanned claim is skipped, not fatal.
func (e *Executor) selectTools(ctx context.Context, subject string, claim model.Claim) []model.Tool {
	out, err := e.deps.Oracle.Complete(ctx,
		fmt.Sprintf(toolSelectPrompt, subject, claim.Quotation, claim.Explanation))
	if err != nil {
		zap.L().Warn("tool selection failed, skipping validation for claim", zap.Error(err))
		return []model.Tool{model.ToolNone}
	}

	selected := parseToolList(out)
	if len(selected) == 0 {
		return []model.Tool{model.ToolNone}
	}
	return selected
}

// parseToolList parses a comma-separated tool response, dropping unknown
// names and deduplicating.
func parseToolList(raw string) []model.Tool {
	var out []model.Tool
	seen := make(map[model.Tool]bool)
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		name = strings.Trim(name, `"'.`)
		tool, ok := toolAliases[name]
		if !ok || seen[tool] {
			continue
		}
		seen[tool] = true
		out = append(out, tool)
	}
	return out
}
