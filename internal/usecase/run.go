package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/semmidev/custodia/internal/domain"
)

// Logger is the narrow logging surface the orchestrator needs.
type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// Source is one directory the orchestrator backs up.
type Source struct {
	Name    string
	Path    string
	Options domain.BackupOptions
	Restore *RestoreRequest
}

// RestoreRequest asks for a restore step after a successful backup.
// An empty SnapshotID restores the most recent snapshot.
type RestoreRequest struct {
	SnapshotID string
	Target     string
}

// Orchestrator drives one source through the full sequence:
// ensure-repository, backup, prune, stats, optional restore. Steps run
// strictly one after another; a fatal step failure aborts everything
// after it, a soft one is recorded as a warning and the run goes on.
type Orchestrator struct {
	repo   domain.Repository
	policy domain.RetentionPolicy
	source Source
	logger Logger
}

func NewOrchestrator(repo domain.Repository, policy domain.RetentionPolicy, source Source, logger Logger) *Orchestrator {
	return &Orchestrator{
		repo:   repo,
		policy: policy,
		source: source,
		logger: logger,
	}
}

// step pairs a stage with its failure policy, so ordering and fatality
// stay auditable in one place.
type step struct {
	name  domain.StepName
	fatal bool
	skip  bool
	run   func(ctx context.Context, report *domain.RunReport) error
}

// Execute performs one orchestration run and always returns the
// report, even when the run failed partway.
func (uc *Orchestrator) Execute(ctx context.Context) (*domain.RunReport, error) {
	report := &domain.RunReport{
		Source:    uc.source.Name,
		StartedAt: time.Now(),
	}
	uc.logger.Infof("[%s] Starting backup run for %s", uc.source.Name, uc.source.Path)

	steps := []step{
		{name: domain.StepEnsureRepository, fatal: true, run: uc.ensureRepository},
		{name: domain.StepBackup, fatal: true, run: uc.backup},
		{name: domain.StepPrune, fatal: true, run: uc.prune},
		{name: domain.StepStats, fatal: false, run: uc.collectStats},
		{name: domain.StepRestore, fatal: true, skip: uc.source.Restore == nil, run: uc.restore},
	}

	for _, st := range steps {
		if st.skip {
			report.Steps = append(report.Steps, domain.StepOutcome{Step: st.name, Skipped: true})
			continue
		}

		start := time.Now()
		err := st.run(ctx, report)
		outcome := domain.StepOutcome{Step: st.name, Duration: time.Since(start)}

		if err != nil {
			if st.fatal {
				outcome.Error = err.Error()
				report.Steps = append(report.Steps, outcome)
				report.FailedStep = st.name
				report.Err = err.Error()
				report.Duration = time.Since(report.StartedAt)
				uc.logger.Errorf("[%s] Run aborted at %s: %v", uc.source.Name, st.name, err)
				return report, fmt.Errorf("%s: %w", st.name, err)
			}

			outcome.Warning = err.Error()
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", st.name, err))
			uc.logger.Warnf("[%s] %s failed, continuing: %v", uc.source.Name, st.name, err)
		}

		report.Steps = append(report.Steps, outcome)
	}

	report.Duration = time.Since(report.StartedAt)
	uc.logger.Infof("[%s] Run completed in %s, snapshot %s",
		uc.source.Name, report.Duration.Round(time.Second), snapshotOf(report))
	return report, nil
}

func (uc *Orchestrator) ensureRepository(ctx context.Context, _ *domain.RunReport) error {
	if uc.repo.IsAccessible(ctx) {
		uc.logger.Infof("[%s] Repository is accessible", uc.source.Name)
		return nil
	}

	uc.logger.Infof("[%s] Repository not accessible, initializing", uc.source.Name)
	outcome, err := uc.repo.Init(ctx)
	if err != nil {
		return fmt.Errorf("initialize repository: %w", err)
	}

	switch outcome {
	case domain.InitAlreadyInitialized:
		uc.logger.Infof("[%s] Repository was already initialized", uc.source.Name)
	default:
		uc.logger.Infof("[%s] Repository initialized", uc.source.Name)
	}
	return nil
}

func (uc *Orchestrator) backup(ctx context.Context, report *domain.RunReport) error {
	result, raw, err := uc.repo.Backup(ctx, uc.source.Path, uc.source.Options)
	report.RawBackupStream = raw
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	report.Backup = &result
	uc.logger.Infof("[%s] Backup done: %d new, %d changed, %d unmodified, %d bytes added (snapshot %s)",
		uc.source.Name, result.FilesNew, result.FilesChanged, result.FilesUnmodified,
		result.DataAdded, result.SnapshotID)
	return nil
}

func (uc *Orchestrator) prune(ctx context.Context, _ *domain.RunReport) error {
	if err := uc.repo.Forget(ctx, uc.policy, uc.source.Options.Tag); err != nil {
		return fmt.Errorf("apply retention policy: %w", err)
	}
	uc.logger.Infof("[%s] Retention policy applied", uc.source.Name)
	return nil
}

func (uc *Orchestrator) collectStats(ctx context.Context, report *domain.RunReport) error {
	stats, err := uc.repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("collect stats: %w", err)
	}
	report.Stats = &stats

	// Snapshot count is observational too; its failure must not mask
	// the stats we already have.
	snapshots, err := uc.repo.Snapshots(ctx, uc.source.Options.Tag)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("list snapshots: %v", err))
		uc.logger.Warnf("[%s] Snapshot listing failed: %v", uc.source.Name, err)
		return nil
	}
	report.Snapshots = len(snapshots)

	uc.logger.Infof("[%s] Repository: %d files, %d bytes, %d snapshot(s)",
		uc.source.Name, stats.TotalFileCount, stats.TotalSize, len(snapshots))
	return nil
}

func (uc *Orchestrator) restore(ctx context.Context, _ *domain.RunReport) error {
	req := uc.source.Restore
	if err := uc.repo.Restore(ctx, req.SnapshotID, req.Target, uc.source.Options.Tag); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	uc.logger.Infof("[%s] Restore to %s completed", uc.source.Name, req.Target)
	return nil
}

func snapshotOf(report *domain.RunReport) string {
	if report.Backup == nil {
		return domain.UnknownSnapshotID
	}
	return report.Backup.SnapshotID
}
