package report

import (
	"bytes"
	"context"
	"fmt"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/semmidev/custodia/internal/config"
	"github.com/semmidev/custodia/internal/domain"
)

// S3Sink uploads rendered run reports to a bucket.
type S3Sink struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

func NewS3Sink(cfg *appconfig.ReportTarget) (*S3Sink, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3Sink{
		uploader: s3manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}, nil
}

func (s *S3Sink) Publish(ctx context.Context, report *domain.RunReport) error {
	payload, err := renderReport(report)
	if err != nil {
		return err
	}

	key := path.Join(s.prefix, reportFilename(report)+".json")

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to S3: %w", err)
	}

	return nil
}
