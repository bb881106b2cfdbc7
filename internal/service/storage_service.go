package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/activation_api/internal/config"
)

// BlobStore stores uploaded paperwork and returns a reference to it.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Attachment is an uploaded file carried with a document.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// S3Service stores attachments in an S3 bucket.
type S3Service struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewS3Service creates a new S3 service. Without credentials the service
// only computes object URLs and skips uploads.
func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 config is nil")
	}
	s := &S3Service{bucket: cfg.Bucket, region: cfg.Region, endpoint: strings.TrimRight(cfg.Endpoint, "/")}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return s, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			o.UsePathStyle = true
		}
	})
	return s, nil
}

// Put uploads data under key and returns the object URL.
func (s *S3Service) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.client == nil {
		log.Warn().Str("key", key).Msg("S3 credentials not configured - skipping upload")
		return s.GetObjectURL(key), nil
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload to S3")
		return "", fmt.Errorf("failed to upload: %w", err)
	}

	log.Info().Str("key", key).Int("size", len(data)).Msg("Successfully uploaded to S3")
	return s.GetObjectURL(key), nil
}

// GetObjectURL returns the URL for an S3 object
func (s *S3Service) GetObjectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// attachmentKey returns documents/YYYYMMDD/<uuid><ext>.
func attachmentKey(day time.Time, filename string) string {
	return fmt.Sprintf("documents/%s/%s%s", day.Format("20060102"), uuid.NewString(), strings.ToLower(path.Ext(filename)))
}
