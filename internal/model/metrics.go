package model

// Radar dimension keys. Exactly these five, always present in a normalized
// Metrics, always in this order in the breakdown.
const (
	DimVague       = "vague"
	DimLackMetrics = "lack_metrics"
	DimMisleading  = "misleading"
	DimCherry      = "cherry"
	DimNo3rd       = "no_3rd"
)

// RadarDims lists the radar dimensions in canonical order.
var RadarDims = []string{DimVague, DimLackMetrics, DimMisleading, DimCherry, DimNo3rd}

// DimLabels maps radar keys to the fixed type strings carried by the
// legacy breakdown consumed by older report templates. The strings are
// part of the wire contract; do not reword them.
var DimLabels = map[string]string{
	DimVague:       "Vague or unsubstantiated claims",
	DimLackMetrics: "Lack of specific metrics or targets",
	DimMisleading:  "Misleading terminology",
	DimCherry:      "Cherry-picked data",
	DimNo3rd:       "Absence of third-party verification",
}

// Confidence levels for the overall score.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// BreakdownEntry is one legacy-shaped scoring row mirroring a radar
// dimension on the same 0..100 scale.
type BreakdownEntry struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// OverallScore is the legacy scalar mirror of the canonical overall value.
type OverallScore struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Metrics is the normalized greenwashing risk score. Every instance that
// leaves the normalizer satisfies the schema invariants: five radar dims in
// [0,100], overall in [0,10], confidence one of low/medium/high, exactly
// five breakdown entries mirroring the radar, and a non-empty engine tag.
type Metrics struct {
	Radar      map[string]int    `json:"radar"`
	Overall    float64           `json:"overall"`
	Confidence string            `json:"confidence"`
	Rationale  map[string]string `json:"rationale"`
	Breakdown  []BreakdownEntry  `json:"breakdown"`
	// OverallGreenwashingScore mirrors Overall for legacy consumers.
	OverallGreenwashingScore OverallScore `json:"overall_greenwashing_score"`
	Engine                   string       `json:"engine"`
	Error                    string       `json:"error,omitempty"`
}
