package analysis

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/evidence"
	"github.com/clearleaf/greenwash-cli/internal/model"
)

// cleanJSONList strips markdown fences and surrounding prose from a
// response expected to carry a JSON array.
func cleanJSONList(s string) string {
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
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start != -1 && end != -1 && end > start {
		s = s[start : end+1]
	}
	return s
}

// parseStringList decodes a JSON list into strings. Object elements are
// kept as their compact JSON form. A response that is not a JSON list at
// all degrades to paragraph splitting.
func parseStringList(raw string) []string {
	var items []any
	if err := json.Unmarshal([]byte(cleanJSONList(raw)), &items); err != nil {
		zap.L().Debug("response not a JSON list, splitting paragraphs", zap.Error(err))
		return splitParagraphs(raw)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				out = append(out, v)
			}
		default:
			compact, err := json.Marshal(v)
			if err == nil {
				out = append(out, string(compact))
			}
		}
	}
	return out
}

// splitParagraphs is the degraded parse: blank-line separated blocks.
func splitParagraphs(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseClaims decodes the claim-extraction response.
func parseClaims(raw string) ([]model.Claim, error) {
	var claims []model.Claim
	if err := json.Unmarshal([]byte(cleanJSONList(raw)), &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// joinPassages flattens retrieved passages into prompt context.
func joinPassages(passages []evidence.Passage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, p.Content)
	}
	return strings.Join(parts, "\n\n")
}

// truncate caps prompt context length without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && s[maxLen]&0xC0 == 0x80 {
		maxLen--
	}
	return s[:maxLen]
}
