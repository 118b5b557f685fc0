package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusLoading     RunStatus = "loading"
	RunStatusEncoding    RunStatus = "encoding"
	RunStatusSampling    RunStatus = "sampling"
	RunStatusTraining    RunStatus = "training"
	RunStatusForecasting RunStatus = "forecasting"
	RunStatusAggregating RunStatus = "aggregating"
	RunStatusRendering   RunStatus = "rendering"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Run represents a single analysis run.
type Run struct {
	ID        string     `json:"id"`
	Region    string     `json:"region"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	SampleCount int           `json:"sample_count"`
	TrainCount  int           `json:"train_count"`
	TestCount   int           `json:"test_count"`
	Accuracy    float64       `json:"accuracy"`
	Kappa       float64       `json:"kappa"`
	Epochs      []int         `json:"epochs"`
	Areas       []AreaRecord  `json:"areas,omitempty"`
	Phases      []PhaseResult `json:"phases"`
	ChartPath   string        `json:"chart_path,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// RunPhase represents a phase within a run.
type RunPhase struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    PhaseStatus  `json:"status"`
	Result    *PhaseResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// PhaseStatus represents the current state of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
)

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Name     string      `json:"name"`
	Status   PhaseStatus `json:"status"`
	Duration int64       `json:"duration_ms"`
	Records  int         `json:"records,omitempty"`
	Error    string      `json:"error,omitempty"`
}
