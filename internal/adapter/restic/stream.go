package restic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/semmidev/custodia/internal/domain"
)

// backupMessage is the union of the event-stream record kinds a backup
// invocation emits. The message_type discriminant selects which fields
// are meaningful; unknown kinds are ignored.
type backupMessage struct {
	MessageType         string `json:"message_type"`
	FilesNew            int64  `json:"files_new"`
	FilesChanged        int64  `json:"files_changed"`
	FilesUnmodified     int64  `json:"files_unmodified"`
	DataAdded           int64  `json:"data_added"`
	TotalBytesProcessed int64  `json:"total_bytes_processed"`
	SnapshotID          string `json:"snapshot_id"`
}

// parseBackupOutput reduces the newline-delimited JSON stream of one
// backup invocation to a single result. Lines that fail to decode are
// discarded: restic mixes diagnostic text into stdout and the absence
// of a parseable summary is not a failure, it degrades to a zero
// result. Later summary records supersede earlier ones. The snapshot
// id from a dedicated snapshot record wins over one embedded in the
// summary itself.
func parseBackupOutput(raw string) domain.BackupResult {
	var summary *backupMessage
	var snapshotID string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var msg backupMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			continue
		}

		if msg.MessageType == "summary" {
			m := msg
			summary = &m
			continue
		}
		if msg.SnapshotID != "" {
			snapshotID = msg.SnapshotID
		}
	}

	result := domain.BackupResult{}
	if summary != nil {
		result.FilesNew = summary.FilesNew
		result.FilesChanged = summary.FilesChanged
		result.FilesUnmodified = summary.FilesUnmodified
		result.DataAdded = summary.DataAdded
		result.TotalBytesProcessed = summary.TotalBytesProcessed
		if snapshotID == "" {
			snapshotID = summary.SnapshotID
		}
	}

	if snapshotID == "" {
		snapshotID = domain.UnknownSnapshotID
	}
	result.SnapshotID = snapshotID

	return result
}

func parseStats(raw string) (domain.StatsResult, error) {
	var stats struct {
		TotalSize      int64 `json:"total_size"`
		TotalFileCount int64 `json:"total_file_count"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &stats); err != nil {
		return domain.StatsResult{}, fmt.Errorf("decode stats output: %w", err)
	}
	return domain.StatsResult{
		TotalSize:      stats.TotalSize,
		TotalFileCount: stats.TotalFileCount,
	}, nil
}

func parseSnapshots(raw string) ([]domain.Snapshot, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return []domain.Snapshot{}, nil
	}

	var snapshots []domain.Snapshot
	if err := json.Unmarshal([]byte(trimmed), &snapshots); err != nil {
		return nil, fmt.Errorf("decode snapshot listing: %w", err)
	}
	return snapshots, nil
}
