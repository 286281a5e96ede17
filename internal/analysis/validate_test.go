package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

func planOf(entries ...model.ToolPlanEntry) *State {
	return &State{Subject: "Acme Corp", ToolPlan: entries}
}

func claimEntry(quotation string, tools ...model.Tool) model.ToolPlanEntry {
	return model.ToolPlanEntry{
		Claim: model.Claim{Quotation: quotation, Explanation: "context for " + quotation},
		Tools: tools,
	}
}

func TestValidateClaimsRealignsShortResponses(t *testing.T) {
	// Three claims, two verdict segments back.
	news := &stubValidator{name: model.ToolNews, out: "Supported: first.\n\nContradicted: second."}
	registry := &stubValidator{name: model.ToolRegistry}

	exec, err := NewExecutor(testDeps(happyOracle(), news, registry))
	require.NoError(t, err)

	st := planOf(
		claimEntry("claim one", model.ToolNews),
		claimEntry("claim two", model.ToolNews),
		claimEntry("claim three", model.ToolNews),
	)
	exec.validateClaims(context.Background(), st)

	require.Len(t, st.Validations, 3)
	assert.Equal(t, "Supported: first.", st.Validations[0].Results[model.ToolNews])
	assert.Equal(t, "Contradicted: second.", st.Validations[1].Results[model.ToolNews])
	assert.Equal(t, "[Error] Missing news result.", st.Validations[2].Results[model.ToolNews])
	assert.Equal(t, 0, registry.callCount())
}

func TestValidateClaimsGroupFailureIsIsolated(t *testing.T) {
	news := &stubValidator{name: model.ToolNews, err: errors.New("feed unreachable")}
	registry := &stubValidator{name: model.ToolRegistry, out: "Mentioned: partial data.\n\nNot Mentioned: no record."}

	exec, err := NewExecutor(testDeps(happyOracle(), news, registry))
	require.NoError(t, err)

	st := planOf(
		claimEntry("claim one", model.ToolNews, model.ToolRegistry),
		claimEntry("claim two", model.ToolNews, model.ToolRegistry),
	)
	exec.validateClaims(context.Background(), st)

	require.Len(t, st.Validations, 2)
	for _, v := range st.Validations {
		assert.Equal(t, "[Error] feed unreachable", v.Results[model.ToolNews])
	}
	// The registry group completed normally despite the news failure.
	assert.Equal(t, "Mentioned: partial data.", st.Validations[0].Results[model.ToolRegistry])
	assert.Equal(t, "Not Mentioned: no record.", st.Validations[1].Results[model.ToolRegistry])
}

func TestValidateClaimsWhitelistWarningDoesNotSuppressVerdicts(t *testing.T) {
	news := &stubValidator{name: model.ToolNews, out: "Contradicted: coverage disputes the claim."}
	registry := &stubValidator{name: model.ToolRegistry}

	deps := testDeps(happyOracle(), news, registry)
	deps.Whitelist = map[string]bool{"someone else": true}
	exec, err := NewExecutor(deps)
	require.NoError(t, err)

	st := planOf(claimEntry("claim one", model.ToolNews))
	exec.validateClaims(context.Background(), st)

	verdict := st.Validations[0].Results[model.ToolNews]
	assert.True(t, strings.HasPrefix(verdict, `[Warning] "Acme Corp" not in whitelist.`), verdict)
	// Validation still ran and its verdict is intact below the warning.
	assert.Equal(t, 1, news.callCount())
	assert.Contains(t, verdict, "Contradicted: coverage disputes the claim.")
}

func TestValidateClaimsBatchesPerTool(t *testing.T) {
	// 50 dual-tool claims must produce exactly one call per tool.
	var newsOut, registryOut strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&newsOut, "Not Mentioned: no coverage of claim %d.\n\n", i)
		fmt.Fprintf(&registryOut, "Mentioned: registry entry %d.\n\n", i)
	}
	news := &stubValidator{name: model.ToolNews, out: newsOut.String()}
	registry := &stubValidator{name: model.ToolRegistry, out: registryOut.String()}

	exec, err := NewExecutor(testDeps(happyOracle(), news, registry))
	require.NoError(t, err)

	entries := make([]model.ToolPlanEntry, 50)
	for i := range entries {
		entries[i] = claimEntry(fmt.Sprintf("claim %d", i+1), model.ToolNews, model.ToolRegistry)
	}
	st := planOf(entries...)
	exec.validateClaims(context.Background(), st)

	assert.Equal(t, 1, news.callCount())
	assert.Equal(t, 1, registry.callCount())
	assert.Contains(t, news.batches[0], "50. Claim: claim 50")

	require.Len(t, st.Validations, 50)
	assert.Equal(t, "Not Mentioned: no coverage of claim 1.", st.Validations[0].Results[model.ToolNews])
	assert.Equal(t, "Mentioned: registry entry 50.", st.Validations[49].Results[model.ToolRegistry])
}

func TestValidateClaimsSkipsUnroutedClaims(t *testing.T) {
	news := &stubValidator{name: model.ToolNews, out: "Supported: verified."}
	registry := &stubValidator{name: model.ToolRegistry}

	exec, err := NewExecutor(testDeps(happyOracle(), news, registry))
	require.NoError(t, err)

	st := planOf(
		claimEntry("checked claim", model.ToolNews),
		claimEntry("unchecked claim", model.ToolNone),
	)
	exec.validateClaims(context.Background(), st)

	require.Len(t, st.Validations, 2)
	assert.Len(t, st.Validations[0].Results, 1)
	assert.Empty(t, st.Validations[1].Results)
	assert.Equal(t, "unchecked claim", st.Validations[1].Claim.Quotation)
}

func TestClaimBatchNumbering(t *testing.T) {
	plan := []model.ToolPlanEntry{
		claimEntry("alpha", model.ToolNews),
		claimEntry("beta", model.ToolRegistry),
		claimEntry("gamma", model.ToolNews),
	}
	// Indices 0 and 2 belong to the news group; numbering restarts at 1.
	batch := claimBatch(plan, []int{0, 2})
	assert.Contains(t, batch, "1. Claim: alpha")
	assert.Contains(t, batch, "2. Claim: gamma")
	assert.NotContains(t, batch, "beta")
	assert.Contains(t, batch, "Context: context for alpha")
}

func TestSplitVerdicts(t *testing.T) {
	segs := splitVerdicts("first verdict\n\n\n\nsecond verdict\n\n   \n\nthird")
	assert.Equal(t, []string{"first verdict", "second verdict", "third"}, segs)

	assert.Nil(t, splitVerdicts("   \n\n  "))
	assert.Equal(t, []string{"single"}, splitVerdicts("single"))
}
