package report

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/semmidev/custodia/internal/domain"
)

// reportFilename names a run's artifacts: <source>_<timestamp>.
func reportFilename(r *domain.RunReport) string {
	return fmt.Sprintf("%s_%s", r.Source, r.StartedAt.Format("20060102_150405"))
}

func renderReport(r *domain.RunReport) ([]byte, error) {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return payload, nil
}

// LocalStore keeps per-run artifacts on disk: the rendered JSON report
// and, when a backup actually ran, its raw event stream compressed
// with gzip. Old artifacts are pruned by age.
type LocalStore struct {
	basePath      string
	retentionDays int
}

func NewLocalStore(basePath string, retentionDays int) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run-log directory: %w", err)
	}
	return &LocalStore{basePath: basePath, retentionDays: retentionDays}, nil
}

func (s *LocalStore) Publish(ctx context.Context, report *domain.RunReport) error {
	payload, err := renderReport(report)
	if err != nil {
		return err
	}

	base := reportFilename(report)
	reportPath := filepath.Join(s.basePath, base+".json")
	if err := os.WriteFile(reportPath, payload, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if report.RawBackupStream != "" {
		streamPath := filepath.Join(s.basePath, base+".stream.gz")
		if err := writeGzip(streamPath, []byte(report.RawBackupStream)); err != nil {
			return err
		}
	}

	return nil
}

func writeGzip(destPath string, data []byte) error {
	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create stream archive: %w", err)
	}
	defer destFile.Close()

	gzipWriter, err := gzip.NewWriterLevel(destFile, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := gzipWriter.Write(data); err != nil {
		gzipWriter.Close()
		return fmt.Errorf("failed to compress stream: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish stream archive: %w", err)
	}

	return nil
}

// Prune removes artifacts older than the retention window and returns
// how many were deleted. A zero retention keeps everything.
func (s *LocalStore) Prune(ctx context.Context) (int, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read run-log directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return deleted, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.basePath, entry.Name())); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", entry.Name(), err)
		}
		deleted++
	}

	return deleted, nil
}
