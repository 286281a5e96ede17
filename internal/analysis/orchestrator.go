package analysis

import (
	"strings"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

// Summarize is the validation orchestrator: pure post-processing of the
// dispatcher output into a confidence score, a risk rating, and
// templated recommendations.
func Summarize(outcomes []model.ValidationOutcome) model.ValidationSummary {
	attempted := make(map[model.Tool]bool)
	succeeded := make(map[model.Tool]bool)
	var riskIndicators int

	for _, o := range outcomes {
		for _, tool := range o.ToolsSelected {
			if tool == model.ToolNone {
				continue
			}
			attempted[tool] = true
			verdict, ok := o.Results[tool]
			if !ok {
				continue
			}
			if !isErrorVerdict(verdict) {
				succeeded[tool] = true
				riskIndicators += countRiskMarkers(verdict)
			}
		}
	}

	var score float64
	if len(attempted) > 0 {
		score = float64(len(succeeded)) / float64(len(attempted)) * 100
	}
	if succeeded[model.ToolRegistry] {
		score += 10
	}
	if succeeded[model.ToolNews] {
		score += 5
	}
	if score > 100 {
		score = 100
	}

	rating := model.RiskLow
	switch {
	case riskIndicators >= 3:
		rating = model.RiskHigh
	case riskIndicators >= 1:
		rating = model.RiskMedium
	}

	return model.ValidationSummary{
		ConfidenceScore: score,
		RiskRating:      rating,
		Recommendations: recommendations(attempted, succeeded, rating),
	}
}

// isErrorVerdict reports whether a verdict is a dispatcher failure
// placeholder rather than tool output. The whitelist warning prefix does
// not make a verdict a failure.
func isErrorVerdict(verdict string) bool {
	v := strings.TrimSpace(verdict)
	if strings.HasPrefix(v, "[Warning]") {
		if idx := strings.Index(v, "\n"); idx != -1 {
			v = strings.TrimSpace(v[idx+1:])
		}
	}
	return strings.HasPrefix(v, "[Error]")
}

// countRiskMarkers counts contradiction verdicts: claims independent
// evidence disputes.
func countRiskMarkers(verdict string) int {
	var n int
	for _, para := range strings.Split(verdict, "\n") {
		para = strings.TrimSpace(para)
		para = strings.TrimLeft(para, "0123456789. ")
		if strings.HasPrefix(para, "Contradicted") {
			n++
		}
	}
	return n
}

func recommendations(attempted, succeeded map[model.Tool]bool, rating string) []string {
	var recs []string

	if succeeded[model.ToolNews] {
		recs = append(recs, "Cross-check flagged claims against the cited news coverage before publication decisions.")
	} else if attempted[model.ToolNews] {
		recs = append(recs, "News validation did not complete; verify media coverage of the flagged claims manually.")
	}
	if succeeded[model.ToolRegistry] {
		recs = append(recs, "Compare the document's figures against the registry's independently reported metrics.")
	} else if attempted[model.ToolRegistry] {
		recs = append(recs, "Registry validation did not complete; request underlying ESG data from the company.")
	}

	switch rating {
	case model.RiskHigh:
		recs = append(recs, "Multiple claims are contradicted by independent evidence; treat the document's environmental claims as unreliable.")
	case model.RiskMedium:
		recs = append(recs, "At least one claim is contradicted by independent evidence; seek substantiation before relying on it.")
	default:
		recs = append(recs, "No contradictions surfaced, but absence of contradiction is not verification; review the unverified claims.")
	}
	return recs
}
