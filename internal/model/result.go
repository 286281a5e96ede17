package model

import "time"

// RiskRating buckets for the validation summary.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"
)

// ErrorInfo describes a pipeline failure as data. Kind is one of the
// resilience error kinds; Stage names the pipeline stage that failed.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Stage   string `json:"stage"`
}

// ValidationSummary is the orchestrator overlay computed from the
// dispatcher output after the pipeline finishes.
type ValidationSummary struct {
	ConfidenceScore float64  `json:"confidence_score"`
	RiskRating      string   `json:"risk_rating"`
	Recommendations []string `json:"recommendations"`
}

// AnalysisResult is the caller-facing envelope. The staged pipeline and
// the fallback supervisor populate the same field set, so callers never
// branch on which path produced the result.
type AnalysisResult struct {
	RunID              string              `json:"run_id"`
	Subject            string              `json:"subject"`
	InitialAnalysis    string              `json:"initial_analysis"`
	DocumentAnalysis   string              `json:"document_analysis"`
	NewsValidation     string              `json:"news_validation"`
	RegistryValidation string              `json:"registry_validation"`
	ToolPlan           []ToolPlanEntry     `json:"tool_plan"`
	Validations        []ValidationOutcome `json:"validations"`
	Metrics            Metrics             `json:"metrics"`
	Report             string              `json:"report"`
	Summary            ValidationSummary   `json:"summary"`
	Error              *ErrorInfo          `json:"error,omitempty"`
	Engine             string              `json:"engine"`
	Duration           time.Duration       `json:"duration"`
}

// Run statuses persisted by the store.
const (
	RunPending  = "pending"
	RunComplete = "complete"
	RunError    = "error"
)

// Run is the persistence record for one analysis request.
type Run struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
