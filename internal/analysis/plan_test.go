package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

func TestPlanToolsSkipsUnverifiableClaimsWithoutOracleCall(t *testing.T) {
	o := &scriptedOracle{respond: func(string) (string, error) {
		return "news", nil
	}}
	exec, err := NewExecutor(testDeps(o, &stubValidator{name: model.ToolNews}, &stubValidator{name: model.ToolRegistry}))
	require.NoError(t, err)

	st := &State{
		Subject: "Acme Corp",
		Claims: []model.Claim{
			{Quotation: "needs checking", VerificationRequired: "true"},
			{Quotation: "self-evident", VerificationRequired: "false"},
			{Quotation: "unmarked"},
		},
	}
	exec.planTools(context.Background(), st)

	require.Len(t, st.ToolPlan, 3)
	assert.Equal(t, []model.Tool{model.ToolNews}, st.ToolPlan[0].Tools)
	assert.Equal(t, []model.Tool{model.ToolNone}, st.ToolPlan[1].Tools)
	assert.Equal(t, []model.Tool{model.ToolNone}, st.ToolPlan[2].Tools)
	assert.Equal(t, 1, o.callCount(), "only the verification-required claim consults the oracle")
}

func TestSelectToolsDegradesToNoneOnOracleFailure(t *testing.T) {
	o := &scriptedOracle{respond: func(string) (string, error) {
		return "", errors.New("rate limit exceeded")
	}}
	exec, err := NewExecutor(testDeps(o, &stubValidator{name: model.ToolNews}, &stubValidator{name: model.ToolRegistry}))
	require.NoError(t, err)

	tools := exec.selectTools(context.Background(), "Acme Corp", model.Claim{Quotation: "claim"})
	assert.Equal(t, []model.Tool{model.ToolNone}, tools)
}

func TestParseToolList(t *testing.T) {
	cases := []struct {
		raw  string
		want []model.Tool
	}{
		{"news, registry", []model.Tool{model.ToolNews, model.ToolRegistry}},
		{"Registry", []model.Tool{model.ToolRegistry}},
		{"wikirate", []model.Tool{model.ToolRegistry}},
		{`"news".`, []model.Tool{model.ToolNews}},
		{"news, news_validation", []model.Tool{model.ToolNews}},
		{"news, browser, registry_validation", []model.Tool{model.ToolNews, model.ToolRegistry}},
		{"none", nil},
		{"", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseToolList(tc.raw), tc.raw)
	}
}
