// Package metrics scores analyzed text along the five greenwashing risk
// dimensions and normalizes oracle-produced scores into the invariant
// schema every downstream consumer relies on.
package metrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

// Normalize coerces an arbitrary decoded JSON object into a schema-valid
// Metrics. It is total (never fails, whatever the input) and idempotent:
// normalizing the JSON form of its own output is a no-op. Missing radar
// dimensions become 0, out-of-range values clamp, non-numeric values
// default, confidence falls back to low, and the legacy breakdown is
// synthesized from the radar.
func Normalize(raw map[string]any) model.Metrics {
	m := model.Metrics{
		Radar:      make(map[string]int, len(model.RadarDims)),
		Rationale:  make(map[string]string, len(model.RadarDims)),
		Confidence: model.ConfidenceLow,
		Engine:     "unknown",
	}
	if raw == nil {
		raw = map[string]any{}
	}

	radar, _ := raw["radar"].(map[string]any)
	rationale, _ := raw["rationale"].(map[string]any)
	for _, dim := range model.RadarDims {
		v, _ := coerceFloat(radar[dim])
		m.Radar[dim] = clampInt(roundHalfUp(v), 0, 100)
		if r, ok := rationale[dim].(string); ok {
			m.Rationale[dim] = r
		}
	}

	overall, _ := coerceFloat(raw["overall"])
	m.Overall = clampFloat(overall, 0, 10)

	if c, ok := raw["confidence"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case model.ConfidenceHigh:
			m.Confidence = model.ConfidenceHigh
		case model.ConfidenceMedium:
			m.Confidence = model.ConfidenceMedium
		}
	}

	if e, ok := raw["engine"].(string); ok && strings.TrimSpace(e) != "" {
		m.Engine = e
	}
	if errMsg, ok := raw["error"].(string); ok {
		m.Error = errMsg
	}

	m.Breakdown = breakdownFromRadar(m.Radar)

	reasoning := "Aggregated from dimension scores"
	if legacy, ok := raw["overall_greenwashing_score"].(map[string]any); ok {
		if r, ok := legacy["reasoning"].(string); ok && r != "" {
			reasoning = r
		}
	}
	m.OverallGreenwashingScore = model.OverallScore{Score: m.Overall, Reasoning: reasoning}

	return m
}

// Zero returns the all-zero metrics used when scoring cannot run at all.
func Zero(engine, errMsg string) model.Metrics {
	m := Normalize(nil)
	if engine != "" {
		m.Engine = engine
	}
	m.Error = errMsg
	return m
}

// breakdownFromRadar mirrors the radar into the legacy five-row breakdown:
// canonical order, fixed type strings, values equal to the radar values.
func breakdownFromRadar(radar map[string]int) []model.BreakdownEntry {
	out := make([]model.BreakdownEntry, 0, len(model.RadarDims))
	for _, dim := range model.RadarDims {
		out = append(out, model.BreakdownEntry{
			Type:  model.DimLabels[dim],
			Value: float64(radar[dim]),
		})
	}
	return out
}

// coerceFloat accepts the numeric shapes the oracle actually emits:
// JSON numbers, numeric strings, and booleans.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
