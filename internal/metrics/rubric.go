package metrics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/clearleaf/greenwash-cli/internal/resilience"
)

const rubricPromptTmpl = `You are scoring a corporate sustainability document for greenwashing risk.

A rules engine scanned the document and its analysis for greenwashing-indicative language. Matches by dimension:

%s

Score each of the five dimensions from 0 (no risk) to 100 (severe risk):
- vague: vague or ambiguous environmental language without substance
- lack_metrics: commitments and goals with no specific, measurable targets
- misleading: absolute or unverifiable claims likely to mislead
- cherry: selective highlighting of favorable data or recognition
- no_3rd: reliance on self-assessment instead of third-party verification

Also produce:
- overall: aggregate greenwashing risk from 0.0 (none) to 10.0 (severe)
- confidence: "low", "medium", or "high" given the evidence available
- rationale: one sentence per dimension keyed by dimension name

Analyzed text:
%s

Respond with a JSON object:
{"radar": {"vague": 0, "lack_metrics": 0, "misleading": 0, "cherry": 0, "no_3rd": 0}, "overall": 0.0, "confidence": "low", "rationale": {"vague": "...", "lack_metrics": "...", "misleading": "...", "cherry": "...", "no_3rd": "..."}}`

// StrictRetryHeader is prepended to the rubric prompt on the single retry
// after a parse failure.
const StrictRetryHeader = `Your previous response was not valid JSON. Respond with ONLY the JSON object described below. No prose, no markdown fences, no explanation before or after.

`

// RubricPrompt builds the rules-grounded scoring prompt.
func RubricPrompt(text string, hits []Hit) string {
	return fmt.Sprintf(rubricPromptTmpl, formatHits(hits), text)
}

func formatHits(hits []Hit) string {
	if len(hits) == 0 {
		return "(no rule matches; score on the analyzed text alone)"
	}
	var b strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&b, "- [%s] %q in: ...%s...\n", h.Dim, h.Pattern, h.Excerpt)
	}
	return b.String()
}

// ParseStrict decodes the oracle's scoring response into a raw object for
// the normalizer. Markdown fences are tolerated; anything that does not
// contain a JSON object is a malformed-output error.
func ParseStrict(raw string) (map[string]any, error) {
	cleaned := cleanJSON(raw)
	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, resilience.WithKind(resilience.KindMalformedOutput,
			eris.Wrap(err, "parse rubric response"))
	}
	return data, nil
}

// cleanJSON strips markdown code fences and any prose surrounding the
// first JSON object in the response.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
		if end := strings.LastIndex(s, "```"); end != -1 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		if end := strings.LastIndex(s, "```"); end != -1 {
			s = s[:end]
		}
	}
	s = strings.TrimSpace(s)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end != -1 && end > start {
		s = s[start : end+1]
	}
	return s
}
