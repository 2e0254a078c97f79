package domain

import "context"

// InitOutcome tags how a repository initialization resolved. The
// already-initialized case is an idempotent precondition, not a
// failure.
type InitOutcome int

const (
	InitCreated InitOutcome = iota
	InitAlreadyInitialized
)

// Repository is the external backup tool seen as a synchronous
// request/response collaborator: one subprocess per operation, exit
// status plus two text streams back. The orchestrator is written
// against this seam so it can be exercised with a substitutable fake.
type Repository interface {
	// IsAccessible probes the repository with a read-only listing.
	IsAccessible(ctx context.Context) bool

	// Init creates the repository; idempotent.
	Init(ctx context.Context) (InitOutcome, error)

	// Backup captures sourcePath and returns the reduced event
	// stream result plus the raw stream text for archival.
	Backup(ctx context.Context, sourcePath string, opts BackupOptions) (BackupResult, string, error)

	// Forget applies the retention policy and prunes.
	Forget(ctx context.Context, policy RetentionPolicy, tag string) error

	// Snapshots lists snapshots, optionally scoped by tag.
	Snapshots(ctx context.Context, tag string) ([]Snapshot, error)

	// Stats reports repository-wide totals.
	Stats(ctx context.Context) (StatsResult, error)

	// Restore materializes a snapshot under target; an empty
	// snapshotID means the most recent one.
	Restore(ctx context.Context, snapshotID, target, tag string) error
}
