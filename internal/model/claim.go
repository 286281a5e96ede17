// Package model holds the data types shared across the analysis pipeline:
// extracted claims, tool plans, validation outcomes, metrics, and the
// caller-facing result envelope.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TruthyString is a string-typed flag as emitted by the generation oracle.
// The oracle is asked for "true"/"false" but in practice emits booleans,
// mixed case, and padded whitespace; all of those unmarshal without error.
type TruthyString string

// UnmarshalJSON accepts strings, booleans, and numbers.
func (t *TruthyString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TruthyString(s)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = TruthyString(strconv.FormatBool(b))
		return nil
	}
	// Anything else (numbers, null) collapses to its raw text.
	*t = TruthyString(strings.Trim(string(data), `"`))
	return nil
}

// True reports whether the value means "true", ignoring case and
// surrounding whitespace.
func (t TruthyString) True() bool {
	return strings.EqualFold(strings.TrimSpace(string(t)), "true")
}

// LenientInt is an integer score that tolerates JSON floats and numeric
// strings. Unparseable values decode to zero rather than failing the
// containing claim list.
type LenientInt int

// UnmarshalJSON accepts ints, floats, and numeric strings.
func (n *LenientInt) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = LenientInt(int(f))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = LenientInt(int(f))
			return nil
		}
	}
	*n = 0
	return nil
}

// Claim is a falsifiable statement extracted from the analyzed document.
// All fields are oracle-asserted and treated as untrusted input.
type Claim struct {
	Quotation            string       `json:"quotation"`
	Explanation          string       `json:"explanation"`
	LikelihoodScore      LenientInt   `json:"likelihood_score"`
	VerificationRequired TruthyString `json:"verification_required"`
	VerificationMethod   string       `json:"verification_method"`
	DataNeeded           string       `json:"data_needed"`
}

// Tool identifies an external validation tool.
type Tool string

// Validation tools a claim can be routed to. ToolNone marks a claim that
// needs no external validation; it never co-occurs with the other two.
const (
	ToolNews     Tool = "news"
	ToolRegistry Tool = "registry"
	ToolNone     Tool = "none"
)

// ToolPlanEntry binds a claim to the tools chosen for it. Tools is never
// empty: a claim that needs no validation carries exactly {ToolNone}.
type ToolPlanEntry struct {
	Claim Claim  `json:"claim"`
	Tools []Tool `json:"tools"`
}

// Needs reports whether the entry routes to the given tool.
func (e ToolPlanEntry) Needs(t Tool) bool {
	for _, have := range e.Tools {
		if have == t {
			return true
		}
	}
	return false
}

// ValidationOutcome records what each tool said about one claim. Results
// holds zero to len(ToolsSelected) verdicts; a tool that failed contributes
// a verdict prefixed with "[Error]" rather than a missing key.
type ValidationOutcome struct {
	Claim         Claim           `json:"claim"`
	ToolsSelected []Tool          `json:"tools_selected"`
	Results       map[Tool]string `json:"results"`
}
