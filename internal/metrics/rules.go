package metrics

import (
	"regexp"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

// Hit is one rule match: a pattern of greenwashing-indicative language
// found in the analyzed text, attributed to a risk dimension.
type Hit struct {
	Dim     string `json:"dim"`
	Pattern string `json:"pattern"`
	Excerpt string `json:"excerpt"`
}

// maxHitsPerDim caps how many matches per dimension feed the rubric
// prompt; beyond that more examples add tokens, not signal.
const maxHitsPerDim = 8

var rulePatterns = []struct {
	dim string
	re  *regexp.Regexp
}{
	{model.DimVague, regexp.MustCompile(`(?i)\b(eco-?friendly|environmentally friendly|earth-?conscious|all-?natural|green|sustainable|clean|pure|conscious)\b`)},
	{model.DimLackMetrics, regexp.MustCompile(`(?i)\b(committed to|aims? to|striv(?:e|es|ing) (?:for|to)|dedicated to|working towards?|on a journey|our (?:goal|ambition|vision) is)\b`)},
	{model.DimMisleading, regexp.MustCompile(`(?i)\b(100%|fully|completely|entirely|zero[- ]emissions?|carbon[- ]neutral|climate[- ]positive|net[- ]zero|plastic[- ]free)\b`)},
	{model.DimCherry, regexp.MustCompile(`(?i)\b(award[- ]winning|recognized|recognised|ranked|industry[- ]leading|best[- ]in[- ]class|top[- ]rated|first (?:company|brand) to)\b`)},
	{model.DimNo3rd, regexp.MustCompile(`(?i)\b(self[- ](?:assessed|certified|reported|declared)|our (?:own|internal) (?:standards?|criteria|assessments?|audits?)|we believe|in our view)\b`)},
}

// Scan finds rule hits in the combined analysis text, dimension by
// dimension in canonical order. Deterministic for a given input.
func Scan(text string) []Hit {
	var hits []Hit
	for _, rule := range rulePatterns {
		idxs := rule.re.FindAllStringIndex(text, maxHitsPerDim)
		for _, loc := range idxs {
			hits = append(hits, Hit{
				Dim:     rule.dim,
				Pattern: text[loc[0]:loc[1]],
				Excerpt: excerpt(text, loc[0], loc[1]),
			})
		}
	}
	return hits
}

// excerpt returns the match with up to 60 bytes of context either side,
// snapped to rune boundaries.
func excerpt(text string, start, end int) string {
	lo := start - 60
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && !isRuneStart(text[lo]) {
		lo--
	}
	hi := end + 60
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !isRuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
