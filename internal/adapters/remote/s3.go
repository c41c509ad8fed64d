package remote

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultS3Endpoint = "s3.amazonaws.com"
	s3NoSuchKey       = "NoSuchKey"
)

// S3 stores batches in an S3-compatible bucket.
type S3 struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ Store = (*S3)(nil)

// NewS3 creates an S3 store. Credentials come from the standard AWS
// environment variables.
func NewS3(endpoint, region, bucket, prefix string, useSSL bool) (*S3, error) {
	if endpoint == "" {
		endpoint = defaultS3Endpoint
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewEnvAWS(),
		Region: region,
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3{client: client, bucket: bucket, prefix: prefix}, nil
}

// FGetObject downloads into a temporary part file and renames it, so dst
// is never left half written.
func (s *S3) Fetch(ctx context.Context, leaderboard, dst string) error {
	name := ObjectName(s.prefix, leaderboard)
	err := s.client.FGetObject(ctx, s.bucket, name, dst, minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == s3NoSuchKey {
			return fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, name)
		}
		return fmt.Errorf("%w: s3://%s/%s: %w", ErrFetch, s.bucket, name, err)
	}
	return nil
}

func (s *S3) Publish(ctx context.Context, leaderboard, src string) error {
	name := ObjectName(s.prefix, leaderboard)
	_, err := s.client.FPutObject(ctx, s.bucket, name, src, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("%w: s3://%s/%s: %w", ErrPublish, s.bucket, name, err)
	}
	return nil
}

func (s *S3) Name() string { return "s3" }
