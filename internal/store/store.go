// Package store persists analysis runs, their phases, and the per-class area
// records they produce.
package store

import (
	"context"

	"github.com/meridian-geo/lulc-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Region string          `json:"region,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, region string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Area records
	InsertAreaRecords(ctx context.Context, runID string, records []model.AreaRecord) error
	ListAreaRecords(ctx context.Context, runID string) ([]model.AreaRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
