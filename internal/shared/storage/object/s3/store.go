package s3

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"recipes-backend/internal/shared/storage/object"
)

// Options configures the S3-compatible client. Endpoint may point at AWS, at the
// Google Cloud Storage XML API, or at any other S3-compatible service.
type Options struct {
	Region          string
	Bucket          string
	Endpoint        string
	CredentialsFile string
	UsePathStyle    bool
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store implements object.Streamer on top of PutObject.
type Store struct {
	client putObjectAPI
	bucket string
}

// New creates a new S3-backed streamer.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		// GCS interoperability rejects the default trailing checksums.
		awsconfig.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.CredentialsFile != "" {
		provider, err := LoadCredentialsFile(opts.CredentialsFile)
		if err != nil {
			return nil, err
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(provider))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &Store{client: client, bucket: opts.Bucket}, nil
}

// Bucket returns the target bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// OpenStream starts a PutObject call that consumes everything written to the
// returned stream.
func (s *Store) OpenStream(ctx context.Context, objectKey string, opts object.StreamOptions) (object.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(objectKey) == "" {
		return nil, object.ErrInvalidKey
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.SizeBytes >= 0 {
		input.ContentLength = aws.Int64(opts.SizeBytes)
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}

	return object.NewPipeStream(ctx, func(ctx context.Context, body io.Reader) error {
		input.Body = body
		if _, err := s.client.PutObject(ctx, input); err != nil {
			return fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
		}
		return nil
	}), nil
}

type hmacKeyFile struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// ReadKeyFile reads a JSON file holding an HMAC key pair
// ({"access_key": "...", "secret_key": "..."}).
func ReadKeyFile(path string) (accessKey, secretKey string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read credentials file: %w", err)
	}
	var keys hmacKeyFile
	if err := json.Unmarshal(data, &keys); err != nil {
		return "", "", fmt.Errorf("parse credentials file: %w", err)
	}
	if keys.AccessKey == "" || keys.SecretKey == "" {
		return "", "", fmt.Errorf("credentials file %s: access_key and secret_key are required", path)
	}
	return keys.AccessKey, keys.SecretKey, nil
}

// LoadCredentialsFile wraps the key pair in path as a static provider.
func LoadCredentialsFile(path string) (aws.CredentialsProvider, error) {
	accessKey, secretKey, err := ReadKeyFile(path)
	if err != nil {
		return nil, err
	}
	return aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")), nil
}

var _ object.Streamer = (*Store)(nil)
