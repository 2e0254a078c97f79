package domain

import "time"

// UnknownSnapshotID is reported when a backup run never emitted a
// snapshot identifier on its event stream.
const UnknownSnapshotID = "unknown"

// BackupResult is the reduction of one backup invocation's event stream.
type BackupResult struct {
	SnapshotID          string
	FilesNew            int64
	FilesChanged        int64
	FilesUnmodified     int64
	DataAdded           int64
	TotalBytesProcessed int64
}

// StatsResult holds repository-wide statistics.
type StatsResult struct {
	TotalSize      int64
	TotalFileCount int64
}

// Snapshot is one entry of the repository's snapshot listing.
type Snapshot struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Hostname string    `json:"hostname"`
	Username string    `json:"username"`
	Paths    []string  `json:"paths"`
	Tags     []string  `json:"tags"`
}
