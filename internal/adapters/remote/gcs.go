package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const contentType = "application/octet-stream"

// GCS stores batches in a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ Store = (*GCS)(nil)

// NewGCS creates a GCS store. A non-empty endpoint targets an emulator
// and disables authentication.
func NewGCS(ctx context.Context, bucket, prefix, endpoint string) (*GCS, error) {
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCS) Fetch(ctx context.Context, leaderboard, dst string) error {
	name := ObjectName(s.prefix, leaderboard)
	reader, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: gs://%s/%s", ErrNotFound, s.bucket, name)
		}
		return fmt.Errorf("%w: gs://%s/%s: %w", ErrFetch, s.bucket, name, err)
	}
	defer reader.Close()

	if err := writeFileAtomic(dst, reader); err != nil {
		return fmt.Errorf("%w: gs://%s/%s: %w", ErrFetch, s.bucket, name, err)
	}
	return nil
}

func (s *GCS) Publish(ctx context.Context, leaderboard, src string) error {
	name := ObjectName(s.prefix, leaderboard)
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, src, err)
	}
	defer f.Close()

	// Cancelling the writer's context before Close aborts the upload, so
	// the previous object generation stays live.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(wctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, f); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("%w: gs://%s/%s: %w", ErrPublish, s.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: gs://%s/%s: %w", ErrPublish, s.bucket, name, err)
	}
	return nil
}

func (s *GCS) Name() string { return "gcs" }

// Close releases the underlying client.
func (s *GCS) Close() error { return s.client.Close() }
