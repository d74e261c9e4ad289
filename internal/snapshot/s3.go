package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/onnwee/leaderboard/internal/leaderboard"
	"github.com/onnwee/leaderboard/internal/tracing"
)

// objectStore is the subset of the S3 client used by S3Source.
type objectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Config holds configuration for an S3-compatible snapshot object.
type S3Config struct {
	Bucket          string
	Key             string
	Endpoint        string // Empty uses the AWS default resolver
	Region          string // Default: auto (R2)
	AccessKeyID     string
	SecretAccessKey string
}

// S3Source reads a JSON snapshot object published by the upstream
// repository to S3-compatible storage (AWS S3 or Cloudflare R2).
type S3Source struct {
	client objectStore
	bucket string
	key    string
	logger *slog.Logger
}

// NewS3Source creates an S3Source with a static-credential client.
func NewS3Source(cfg S3Config, logger *slog.Logger) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Key == "" {
		return nil, errors.New("object key is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("access key ID and secret access key are required")
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return newS3Source(s3.New(opts), cfg.Bucket, cfg.Key, logger), nil
}

func newS3Source(client objectStore, bucket, key string, logger *slog.Logger) *S3Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Source{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger,
	}
}

// Snapshot downloads and decodes the snapshot object.
func (s *S3Source) Snapshot(ctx context.Context) (entries []leaderboard.Entry, err error) {
	ctx, endSpan := tracing.StartSourceSpan(ctx, "s3", "get_object")
	defer func() { endSpan(err) }()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot object s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	entries, err = decodeEntries(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot object s3://%s/%s: %w", s.bucket, s.key, err)
	}

	s.logger.DebugContext(ctx, "loaded snapshot from object storage",
		"bucket", s.bucket,
		"key", s.key,
		"entries", len(entries))
	return entries, nil
}

// HealthCheck verifies the snapshot object exists and is readable.
func (s *S3Source) HealthCheck(ctx context.Context) (err error) {
	ctx, endSpan := tracing.StartSourceSpan(ctx, "s3", "head_object")
	defer func() { endSpan(err) }()

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	return err
}
