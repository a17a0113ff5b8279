package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"recipes-backend/internal/shared/storage/object"
)

// Options configures the MinIO client.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type putObjectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store implements object.Streamer using any S3-compatible service reachable
// through minio-go.
type Store struct {
	client putObjectAPI
	bucket string
}

// New creates a MinIO client and verifies the bucket exists. Bucket
// provisioning is left to the operator.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", opts.Bucket)
	}

	return &Store{client: client, bucket: opts.Bucket}, nil
}

// Bucket returns the target bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// OpenStream starts a PutObject call fed by the returned stream. A known size
// lets minio-go send a single request instead of buffering multipart chunks.
func (s *Store) OpenStream(ctx context.Context, key string, opts object.StreamOptions) (object.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(key) == "" {
		return nil, object.ErrInvalidKey
	}

	putOpts := minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	}
	size := opts.SizeBytes
	if size < 0 {
		size = -1
	}

	return object.NewPipeStream(ctx, func(ctx context.Context, body io.Reader) error {
		if _, err := s.client.PutObject(ctx, s.bucket, key, body, size, putOpts); err != nil {
			return fmt.Errorf("put object %q: %w", key, err)
		}
		return nil
	}), nil
}

var _ object.Streamer = (*Store)(nil)
