package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads artifacts to <prefix>/<run-id>/<name> in a bucket.
type S3Sink struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Sink loads the default AWS configuration for region.
func NewS3Sink(ctx context.Context, region, bucket, prefix string) (*S3Sink, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &S3Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *S3Sink) Name() string { return "s3" }

// Key returns the object key of an artifact.
func (s *S3Sink) Key(runID, name string) string {
	return path.Join(s.prefix, runID, name)
}

func (s *S3Sink) Put(ctx context.Context, runID string, artifacts []Artifact) error {
	for _, a := range artifacts {
		input := &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.Key(runID, a.Name)),
			Body:   bytes.NewReader(a.Data),
		}
		if a.ContentType != "" {
			input.ContentType = aws.String(a.ContentType)
		}
		if _, err := s.client.PutObject(ctx, input); err != nil {
			return fmt.Errorf("failed to upload %s to S3: %w", a.Name, err)
		}
	}
	return nil
}

func (s *S3Sink) Close(ctx context.Context) error { return nil }
