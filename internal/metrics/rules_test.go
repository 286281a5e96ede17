package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

const sampleCopy = `Our eco-friendly packaging is 100% recyclable and we are
committed to a net-zero future. As an award-winning brand we believe our
internal standards exceed industry norms.`

func TestScanFindsDimensionHits(t *testing.T) {
	hits := Scan(sampleCopy)
	require.NotEmpty(t, hits)

	dims := make(map[string]int)
	for _, h := range hits {
		dims[h.Dim]++
		assert.Contains(t, sampleCopy, h.Pattern)
		assert.Contains(t, h.Excerpt, h.Pattern)
	}
	assert.Positive(t, dims[model.DimVague])
	assert.Positive(t, dims[model.DimLackMetrics])
	assert.Positive(t, dims[model.DimMisleading])
	assert.Positive(t, dims[model.DimCherry])
	assert.Positive(t, dims[model.DimNo3rd])
}

func TestScanDeterministic(t *testing.T) {
	assert.Equal(t, Scan(sampleCopy), Scan(sampleCopy))
	assert.Empty(t, Scan("the quarterly report lists revenue by region"))
}

func TestRubricPromptIncludesHitsAndText(t *testing.T) {
	hits := Scan(sampleCopy)
	prompt := RubricPrompt(sampleCopy, hits)
	assert.Contains(t, prompt, "eco-friendly")
	assert.Contains(t, prompt, sampleCopy)
	assert.Contains(t, prompt, `"radar"`)

	empty := RubricPrompt("plain text", nil)
	assert.Contains(t, empty, "no rule matches")
}

func TestParseStrict(t *testing.T) {
	raw := "```json\n{\"radar\": {\"vague\": 70}, \"overall\": 6.5, \"confidence\": \"medium\"}\n```"
	data, err := ParseStrict(raw)
	require.NoError(t, err)
	assert.Equal(t, 6.5, data["overall"])

	_, err = ParseStrict("I cannot score this document.")
	require.Error(t, err)
}

func TestCleanJSON(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                        `{"a":1}`,
		"```json\n{\"a\":1}\n```":          `{"a":1}`,
		"```\n{\"a\":1}\n```":              `{"a":1}`,
		"Here is the score:\n{\"a\":1}\n": `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanJSON(in), in)
	}
}

func TestExcerptRuneBoundaries(t *testing.T) {
	text := strings.Repeat("é", 100) + " sustainable " + strings.Repeat("ü", 100)
	hits := Scan(text)
	require.NotEmpty(t, hits)
	// Excerpts must be valid UTF-8 slices despite the byte-offset window.
	for _, h := range hits {
		assert.True(t, strings.HasPrefix(h.Excerpt, "é") || strings.Contains(h.Excerpt, "sustainable"))
	}
}
