package domain

import (
	"context"
	"time"
)

// StepName identifies one stage of an orchestration run.
type StepName string

const (
	StepEnsureRepository StepName = "ensure-repository"
	StepBackup           StepName = "backup"
	StepPrune            StepName = "prune"
	StepStats            StepName = "stats"
	StepRestore          StepName = "restore"
)

// StepOutcome records how one stage of a run finished.
type StepOutcome struct {
	Step     StepName      `json:"step"`
	Error    string        `json:"error,omitempty"`
	Warning  string        `json:"warning,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RunReport accumulates the outcome of one orchestration run for a
// single source. It is owned by the orchestrator for the duration of
// the run and published to sinks afterwards.
type RunReport struct {
	Source     string        `json:"source"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Steps      []StepOutcome `json:"steps"`
	Backup     *BackupResult `json:"backup,omitempty"`
	Stats      *StatsResult  `json:"stats,omitempty"`
	Snapshots  int           `json:"snapshots"`
	Warnings   []string      `json:"warnings,omitempty"`
	FailedStep StepName      `json:"failed_step,omitempty"`
	Err        string        `json:"error,omitempty"`

	// RawBackupStream is the captured event stream of the backup
	// invocation, kept out of the rendered report and archived
	// separately by the run-log store.
	RawBackupStream string `json:"-"`
}

// Succeeded reports whether every required step completed.
func (r *RunReport) Succeeded() bool {
	return r.FailedStep == ""
}

// ReportSink publishes a finished run report somewhere an operator can
// see it. Sink failures are never run failures.
type ReportSink interface {
	Publish(ctx context.Context, report *RunReport) error
}
