package restic

import (
	"context"
	"strings"
	"time"

	"github.com/semmidev/custodia/internal/domain"
)

// alreadyInitializedMarker is the diagnostic substring that identifies
// an init failure as the idempotent already-satisfied case. Substring
// matching is the documented mechanism here; restic exposes no
// structured status for it.
const alreadyInitializedMarker = "already initialized"

// statsMode selects how restic accounts repository size.
const statsMode = "restore-size"

// Repository exposes typed restic operations over a Runner. Quick
// metadata operations (snapshots, stats, init) run under the bounded
// metadata timeout; backup, forget and restore run unbounded because
// their duration is data-dependent.
type Repository struct {
	runner      domain.Runner
	metaTimeout time.Duration
}

func NewRepository(runner domain.Runner, metadataTimeout time.Duration) *Repository {
	if metadataTimeout <= 0 {
		metadataTimeout = time.Hour
	}
	return &Repository{
		runner:      runner,
		metaTimeout: metadataTimeout,
	}
}

// IsAccessible probes the repository with a read-only listing. Any
// failure, whatever its cause, counts as not accessible.
func (r *Repository) IsAccessible(ctx context.Context) bool {
	_, err := r.runner.Run(ctx, "snapshots", snapshotsArgs(""), r.metaTimeout)
	return err == nil
}

// Init creates the repository. A non-zero exit whose diagnostics say
// the repository is already initialized resolves to
// InitAlreadyInitialized, identical to success: initializing twice
// never fails the second time.
func (r *Repository) Init(ctx context.Context) (domain.InitOutcome, error) {
	out, err := r.runner.Run(ctx, "init", nil, r.metaTimeout)
	if err == nil {
		return domain.InitCreated, nil
	}
	if strings.Contains(out.Stderr, alreadyInitializedMarker) {
		return domain.InitAlreadyInitialized, nil
	}
	return 0, err
}

// Backup runs one backup invocation over sourcePath and reduces its
// event stream. The raw stream is returned for archival regardless of
// outcome; the result is only meaningful when err is nil.
func (r *Repository) Backup(ctx context.Context, sourcePath string, opts domain.BackupOptions) (domain.BackupResult, string, error) {
	out, err := r.runner.Run(ctx, "backup", backupArgs(sourcePath, opts), 0)
	if err != nil {
		return domain.BackupResult{}, out.Stdout, err
	}
	return parseBackupOutput(out.Stdout), out.Stdout, nil
}

// Forget applies the retention policy and prunes unreferenced data in
// the same invocation.
func (r *Repository) Forget(ctx context.Context, policy domain.RetentionPolicy, tag string) error {
	_, err := r.runner.Run(ctx, "forget", forgetArgs(policy, tag), 0)
	return err
}

// Snapshots lists the repository's snapshots, optionally scoped to a
// tag. An empty repository yields an empty listing, not an error.
func (r *Repository) Snapshots(ctx context.Context, tag string) ([]domain.Snapshot, error) {
	out, err := r.runner.Run(ctx, "snapshots", snapshotsArgs(tag), r.metaTimeout)
	if err != nil {
		return nil, err
	}
	return parseSnapshots(out.Stdout)
}

// Stats reports repository-wide totals.
func (r *Repository) Stats(ctx context.Context) (domain.StatsResult, error) {
	out, err := r.runner.Run(ctx, "stats", statsArgs(statsMode), r.metaTimeout)
	if err != nil {
		return domain.StatsResult{}, err
	}
	return parseStats(out.Stdout)
}

// Restore materializes a snapshot under target. An empty snapshotID
// restores the most recent snapshot.
func (r *Repository) Restore(ctx context.Context, snapshotID, target, tag string) error {
	if snapshotID == "" {
		snapshotID = "latest"
	}
	_, err := r.runner.Run(ctx, "restore", restoreArgs(snapshotID, target, tag), 0)
	return err
}
