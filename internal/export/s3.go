package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/me/busdesk/internal/config"
)

// Uploader is the part of manager.Uploader the publisher needs.
type Uploader interface {
	Upload(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Publisher uploads CSV exports to a bucket.
type Publisher struct {
	uploader Uploader
	cfg      config.ExportConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher builds an S3 uploader from the default AWS credential chain.
// A custom endpoint switches to path-style addressing for S3-compatible stores.
func NewPublisher(ctx context.Context, cfg config.ExportConfig, logger *slog.Logger) (*Publisher, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewPublisherWithUploader(manager.NewUploader(client), cfg, logger), nil
}

// NewPublisherWithUploader wires a publisher to an existing uploader.
func NewPublisherWithUploader(u Uploader, cfg config.ExportConfig, logger *slog.Logger) *Publisher {
	return &Publisher{
		uploader: u,
		cfg:      cfg,
		logger:   logger.With("component", "export"),
		now:      time.Now,
	}
}

// Publish renders t as CSV and uploads it under
// <prefix>/<collection>/<timestamp>.csv, returning the object key.
func (p *Publisher) Publish(ctx context.Context, collection string, t Table) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return "", err
	}
	key := path.Join(p.cfg.Prefix, collection, p.now().UTC().Format("20060102T150405Z")+".csv")

	out, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	p.logger.Info("export uploaded", "bucket", p.cfg.Bucket, "key", key, "rows", len(t.Rows), "location", out.Location)
	return key, nil
}
