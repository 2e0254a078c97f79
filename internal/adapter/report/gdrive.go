package report

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/semmidev/custodia/internal/config"
	"github.com/semmidev/custodia/internal/domain"
)

// DriveSink uploads rendered run reports to a Google Drive folder.
type DriveSink struct {
	service  *drive.Service
	folderID string
}

func NewDriveSink(cfg *config.ReportTarget) (*DriveSink, error) {
	service, err := drive.NewService(context.Background(),
		option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveSink{
		service:  service,
		folderID: cfg.FolderID,
	}, nil
}

func (g *DriveSink) Publish(ctx context.Context, report *domain.RunReport) error {
	payload, err := renderReport(report)
	if err != nil {
		return err
	}

	fileMetadata := &drive.File{
		Name:     reportFilename(report) + ".json",
		Parents:  []string{g.folderID},
		MimeType: "application/json",
	}

	_, err = g.service.Files.Create(fileMetadata).
		Media(bytes.NewReader(payload)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload report to gdrive: %w", err)
	}

	return nil
}
