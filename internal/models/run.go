package models

import "time"

// PipelineStage names the step an analysis run is in.
type PipelineStage string

const (
	StageIdle                 PipelineStage = "idle"
	StageExtracting           PipelineStage = "extracting"
	StageAnalyzingCV          PipelineStage = "analyzing_cv"
	StageClassifyingInterests PipelineStage = "classifying_interests"
	StageFetchingTrend        PipelineStage = "fetching_trend"
	StageMerging              PipelineStage = "merging"
	StageSucceeded            PipelineStage = "succeeded"
	StageFailed               PipelineStage = "failed"
)

type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunFailure carries the error kind and the user-facing message.
type RunFailure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RunState is a tagged variant: Report is set only when Succeeded, Failure
// only when Failed, Stage only when Running. Build it through the
// constructors below so the combinations stay consistent.
type RunState struct {
	ID        string         `json:"id"`
	Status    RunStatus      `json:"status"`
	Stage     PipelineStage  `json:"stage,omitempty"`
	Report    *UnifiedReport `json:"report,omitempty"`
	Failure   *RunFailure    `json:"failure,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func IdleState(id string, now time.Time) RunState {
	return RunState{ID: id, Status: RunIdle, CreatedAt: now, UpdatedAt: now}
}

// Running moves the run to the given stage, dropping any terminal payload.
func (s RunState) Running(stage PipelineStage, now time.Time) RunState {
	return RunState{ID: s.ID, Status: RunRunning, Stage: stage, CreatedAt: s.CreatedAt, UpdatedAt: now}
}

func (s RunState) Succeeded(report *UnifiedReport, now time.Time) RunState {
	return RunState{ID: s.ID, Status: RunSucceeded, Report: report, CreatedAt: s.CreatedAt, UpdatedAt: now}
}

func (s RunState) Failed(kind, message string, now time.Time) RunState {
	return RunState{
		ID:        s.ID,
		Status:    RunFailed,
		Failure:   &RunFailure{Kind: kind, Message: message},
		CreatedAt: s.CreatedAt,
		UpdatedAt: now,
	}
}

// Terminal reports whether the run can no longer change.
func (s RunState) Terminal() bool {
	return s.Status == RunSucceeded || s.Status == RunFailed
}
