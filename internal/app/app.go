package app

import (
	"context"
	"fmt"

	"github.com/semmidev/custodia/internal/adapter/report"
	"github.com/semmidev/custodia/internal/adapter/restic"
	"github.com/semmidev/custodia/internal/config"
	"github.com/semmidev/custodia/internal/domain"
	"github.com/semmidev/custodia/internal/infrastructure/logger"
	"github.com/semmidev/custodia/internal/infrastructure/scheduler"
	"github.com/semmidev/custodia/internal/usecase"
)

// runLogPruneSchedule fires the run-log cleanup daily at 4 AM.
const runLogPruneSchedule = "0 0 4 * * *"

type namedSink struct {
	Name string
	Sink domain.ReportSink
}

type runJob struct {
	SourceName   string
	Schedule     string
	Orchestrator *usecase.Orchestrator
}

type App struct {
	config    *config.Config
	logger    *logger.Logger
	scheduler *scheduler.Scheduler
	runLogs   *report.LocalStore
	sinks     []namedSink
	jobs      []runJob
	auth      *DriveAuthService
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)
	log.Infof("Repository: %s", cfg.Repository.Location)

	runner := restic.NewExecRunner(&cfg.Repository)
	repo := restic.NewRepository(runner, cfg.Repository.MetadataTimeout)

	var runLogs *report.LocalStore
	if cfg.RunLogs.Path != "" {
		runLogs, err = report.NewLocalStore(cfg.RunLogs.Path, cfg.RunLogs.RetentionDays)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize run-log store: %w", err)
		}
		log.Infof("✓ Run logs stored in %s (retention %d days)",
			cfg.RunLogs.Path, cfg.RunLogs.RetentionDays)
	}

	sinks := initializeReportSinks(cfg, log)
	jobs := initializeRunJobs(cfg, repo, log)
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no enabled sources found")
	}

	var auth *DriveAuthService
	if cfg.Auth.Enabled {
		auth, err = NewDriveAuthService(log, cfg.Auth.ClientSecretFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize drive auth helper: %w", err)
		}
	}

	return &App{
		config:    cfg,
		logger:    log,
		scheduler: scheduler.New(),
		runLogs:   runLogs,
		sinks:     sinks,
		jobs:      jobs,
		auth:      auth,
	}, nil
}

func initializeReportSinks(cfg *config.Config, log *logger.Logger) []namedSink {
	var sinks []namedSink

	for _, targetCfg := range cfg.GetEnabledReportTargets() {
		var sink domain.ReportSink
		var err error

		switch targetCfg.Type {
		case "s3":
			sink, err = report.NewS3Sink(&targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize S3 report sink: %v", err)
				continue
			}
			log.Infof("✓ S3 reports enabled (bucket: %s)", targetCfg.Bucket)

		case "gdrive":
			sink, err = report.NewDriveSink(&targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize Google Drive report sink: %v", err)
				continue
			}
			log.Infof("✓ Google Drive reports enabled")

		case "telegram":
			sink, err = report.NewTelegramSink(&targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize Telegram report sink: %v", err)
				continue
			}
			log.Infof("✓ Telegram notifications enabled")

		default:
			log.Warnf("Unknown report target type: %s", targetCfg.Type)
			continue
		}

		sinks = append(sinks, namedSink{Name: targetCfg.Type, Sink: sink})
	}

	return sinks
}

func initializeRunJobs(cfg *config.Config, repo domain.Repository, log *logger.Logger) []runJob {
	var jobs []runJob

	for _, srcCfg := range cfg.GetEnabledSources() {
		source := usecase.Source{
			Name: srcCfg.Name,
			Path: srcCfg.Path,
			Options: domain.BackupOptions{
				Tag:         srcCfg.Tag,
				Excludes:    srcCfg.Excludes,
				ExcludeFile: srcCfg.ExcludeFile,
			},
		}
		if srcCfg.Restore.Enabled {
			source.Restore = &usecase.RestoreRequest{
				SnapshotID: srcCfg.Restore.Snapshot,
				Target:     srcCfg.Restore.Target,
			}
		}

		jobs = append(jobs, runJob{
			SourceName:   srcCfg.Name,
			Schedule:     srcCfg.Schedule,
			Orchestrator: usecase.NewOrchestrator(repo, cfg.Retention, source, log),
		})
		log.Infof("✓ Scheduled backup for %s: %s", srcCfg.Name, srcCfg.Schedule)
	}

	return jobs
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Application started with %d backup job(s)", len(a.jobs))

	if a.auth != nil {
		if err := a.auth.StartServer(ctx, a.config.Auth.Addr); err != nil {
			return fmt.Errorf("failed to start drive auth helper: %w", err)
		}
	}

	for _, job := range a.jobs {
		if err := a.scheduler.AddJob(job.Schedule, func(ctx context.Context) error {
			a.logger.Infof("=== Triggered scheduled run for %s ===", job.SourceName)
			return a.runSource(ctx, job)
		}); err != nil {
			return fmt.Errorf("failed to schedule run for %s: %w", job.SourceName, err)
		}
	}

	if a.runLogs != nil {
		if err := a.scheduler.AddJob(runLogPruneSchedule, a.pruneRunLogs); err != nil {
			return fmt.Errorf("failed to schedule run-log pruning: %w", err)
		}
	}

	a.scheduler.Start()
	a.logger.Infof("Scheduler started successfully")

	<-ctx.Done()
	return nil
}

// RunOnce executes every job immediately, one after another, and
// returns the first fatal error. Used by the -once flag for cron-less
// operation.
func (a *App) RunOnce(ctx context.Context) error {
	var firstErr error
	for _, job := range a.jobs {
		if err := a.runSource(ctx, job); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) runSource(ctx context.Context, job runJob) error {
	runReport, err := job.Orchestrator.Execute(ctx)
	a.publishReport(ctx, runReport)
	return err
}

func (a *App) publishReport(ctx context.Context, runReport *domain.RunReport) {
	if a.runLogs != nil {
		if err := a.runLogs.Publish(ctx, runReport); err != nil {
			a.logger.Warnf("Failed to store run log for %s: %v", runReport.Source, err)
		}
	}

	for _, sink := range a.sinks {
		if err := sink.Sink.Publish(ctx, runReport); err != nil {
			a.logger.Warnf("Failed to publish report to %s: %v", sink.Name, err)
		}
	}
}

func (a *App) pruneRunLogs(ctx context.Context) error {
	deleted, err := a.runLogs.Prune(ctx)
	if err != nil {
		a.logger.Errorf("Run-log pruning failed: %v", err)
		return err
	}
	if deleted > 0 {
		a.logger.Infof("Pruned %d old run log artifact(s)", deleted)
	}
	return nil
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down application...")
	a.scheduler.Stop()
	if a.auth != nil {
		if err := a.auth.Shutdown(context.Background()); err != nil {
			a.logger.Errorf("Drive auth helper shutdown: %v", err)
		}
	}
	a.logger.Close()
}
