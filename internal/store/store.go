// Package store persists analysis runs and their results.
package store

import (
	"context"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  string `json:"status,omitempty"`
	Subject string `json:"subject,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis runs.
type Store interface {
	CreateRun(ctx context.Context, subject string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status string) error
	SaveResult(ctx context.Context, runID string, result *model.AnalysisResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	GetResult(ctx context.Context, runID string) (*model.AnalysisResult, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
