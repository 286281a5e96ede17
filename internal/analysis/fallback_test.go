package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

const fallbackLegacyResponse = `{
	"Vague or unsubstantiated claims": {"score": 7, "reason": "undefined terms"},
	"Absence of third-party verification": {"score": 9, "reason": "self-certified"},
	"overall_greenwashing_score": {"score": 7.0, "reasoning": "largely unverified"}
}`

func fallbackOracle() *scriptedOracle {
	return &scriptedOracle{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "In plain prose, describe the environmental claims"):
			return "The document claims full carbon neutrality with no audit trail.", nil
		case strings.Contains(prompt, "Score the following analysis"):
			return fallbackLegacyResponse, nil
		case strings.Contains(prompt, "Write the final greenwashing assessment"):
			return "Fallback assessment: high unverified-claim density.", nil
		default:
			return "", errors.New("unexpected prompt")
		}
	}}
}

func TestSupervisorProducesStagedShapedState(t *testing.T) {
	news := &stubValidator{name: model.ToolNews, out: "Contradicted: coverage disputes neutrality."}
	registry := &stubValidator{name: model.ToolRegistry, out: "Mentioned: emissions on record."}
	s := &Supervisor{Oracle: fallbackOracle(), News: news, Registry: registry}

	st := testState()
	require.NoError(t, s.Run(context.Background(), st))

	require.Len(t, st.Findings, 1)
	assert.Contains(t, st.Findings[0], "carbon neutrality")

	// One synthetic outcome carrying both tool verdicts, same shape the
	// staged dispatcher produces.
	require.Len(t, st.Validations, 1)
	v := st.Validations[0]
	assert.NotEmpty(t, v.Claim.Quotation)
	assert.ElementsMatch(t, []model.Tool{model.ToolNews, model.ToolRegistry}, v.ToolsSelected)
	assert.Equal(t, "Contradicted: coverage disputes neutrality.", v.Results[model.ToolNews])
	assert.Equal(t, "Mentioned: emissions on record.", v.Results[model.ToolRegistry])

	assert.Equal(t, "fallback", st.Metrics.Engine)
	assert.Equal(t, 70, st.Metrics.Radar[model.DimVague])
	assert.Equal(t, 7.0, st.Metrics.Overall)
	assert.Equal(t, "Fallback assessment: high unverified-claim density.", st.Report)
	assert.Equal(t, 1, news.callCount())
	assert.Equal(t, 1, registry.callCount())
}

func TestSupervisorDegradesOnToolFailure(t *testing.T) {
	news := &stubValidator{name: model.ToolNews, err: errors.New("feed unreachable")}
	registry := &stubValidator{name: model.ToolRegistry, out: "Not Mentioned: no record."}
	s := &Supervisor{Oracle: fallbackOracle(), News: news, Registry: registry}

	st := testState()
	require.NoError(t, s.Run(context.Background(), st))

	v := st.Validations[0]
	assert.Equal(t, "[Error] feed unreachable", v.Results[model.ToolNews])
	assert.Equal(t, "Not Mentioned: no record.", v.Results[model.ToolRegistry])
	assert.NotEmpty(t, st.Report)
}

func TestSupervisorHandlesMissingTools(t *testing.T) {
	s := &Supervisor{Oracle: fallbackOracle()}

	st := testState()
	require.NoError(t, s.Run(context.Background(), st))
	assert.Equal(t, "[Error] validation tool not configured.", st.Validations[0].Results[model.ToolNews])
	assert.Equal(t, "[Error] validation tool not configured.", st.Validations[0].Results[model.ToolRegistry])
}

func TestSupervisorPropagatesOracleFailures(t *testing.T) {
	o := &scriptedOracle{respond: func(string) (string, error) {
		return "", errors.New("api key invalid")
	}}
	s := &Supervisor{
		Oracle:   o,
		News:     &stubValidator{name: model.ToolNews},
		Registry: &stubValidator{name: model.ToolRegistry},
	}

	err := s.Run(context.Background(), testState())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document analysis")
}

func TestSupervisorZeroesMetricsOnParseFailure(t *testing.T) {
	o := fallbackOracle()
	base := o.respond
	o.respond = func(prompt string) (string, error) {
		if strings.Contains(prompt, "Score the following analysis") {
			return "no scores today", nil
		}
		return base(prompt)
	}
	s := &Supervisor{
		Oracle:   o,
		News:     &stubValidator{name: model.ToolNews, out: "ok"},
		Registry: &stubValidator{name: model.ToolRegistry, out: "ok"},
	}

	st := testState()
	require.NoError(t, s.Run(context.Background(), st))
	assert.Equal(t, "error", st.Metrics.Engine)
	assert.NotEmpty(t, st.Report, "synthesis still runs over zeroed metrics")
}

func TestSupervisorAppliesWhitelistWarning(t *testing.T) {
	s := &Supervisor{
		Oracle:    fallbackOracle(),
		News:      &stubValidator{name: model.ToolNews, out: "Not Mentioned: silent."},
		Registry:  &stubValidator{name: model.ToolRegistry, out: "Not Mentioned: no record."},
		Whitelist: map[string]bool{"someone else": true},
	}

	st := testState()
	require.NoError(t, s.Run(context.Background(), st))
	verdict := st.Validations[0].Results[model.ToolNews]
	assert.True(t, strings.HasPrefix(verdict, `[Warning] "Acme Corp" not in whitelist.`), verdict)
	assert.Contains(t, verdict, "Not Mentioned: silent.")
}
