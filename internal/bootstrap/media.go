package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"recipes-backend/internal/media"
	"recipes-backend/internal/shared/config"
	"recipes-backend/internal/shared/storage/object"
	localstore "recipes-backend/internal/shared/storage/object/local"
	miniostore "recipes-backend/internal/shared/storage/object/minio"
	s3store "recipes-backend/internal/shared/storage/object/s3"
)

// Policy returns the validation policy described by cfg.
func Policy(cfg config.Config) media.ValidationPolicy {
	exts := cfg.UploadAllowedExtensions
	if len(exts) == 0 {
		exts = media.DefaultAllowedExtensions
	}
	size := cfg.UploadMaxSizeBytes
	if size <= 0 {
		size = media.DefaultMaxSizeBytes
	}
	return media.NewPolicy(exts, size)
}

// BuildBackend selects and configures the storage backend named by
// cfg.ObjectStoreType.
func BuildBackend(ctx context.Context, cfg config.Config) (media.Backend, error) {
	policy := Policy(cfg)
	clock := media.NewClock(nil)

	if cfg.ObjectStoreType == config.StoreLocal || strings.TrimSpace(cfg.ObjectStoreType) == "" {
		var enforced *media.ValidationPolicy
		if cfg.LocalEnforcePolicy {
			enforced = &policy
		}
		return media.NewLocalDisk(media.LocalConfig{
			Streamer: localstore.New(cfg.LocalStoreDir),
			Policy:   enforced,
			Clock:    clock,
			Timeout:  cfg.UploadTimeout,
		})
	}

	streamer, err := buildStreamer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return media.NewRemote(media.RemoteConfig{
		Streamer:     streamer,
		Bucket:       cfg.StorageBucket,
		Host:         cfg.StorageHost,
		PublicPrefix: cfg.PublicPrefix,
		Policy:       policy,
		Clock:        clock,
		Timeout:      cfg.UploadTimeout,
		Project:      cfg.GCSProject,
	})
}

func buildStreamer(ctx context.Context, cfg config.Config) (object.Streamer, error) {
	if strings.TrimSpace(cfg.StorageBucket) == "" {
		return nil, fmt.Errorf("OBJECT_STORE=%s requires GCS_BUCKET or STORAGE_BUCKET", cfg.ObjectStoreType)
	}
	switch cfg.ObjectStoreType {
	case config.StoreS3:
		return s3store.New(ctx, s3store.Options{
			Region:          cfg.StorageRegion,
			Bucket:          cfg.StorageBucket,
			Endpoint:        cfg.StorageEndpoint,
			CredentialsFile: cfg.GCSKeyFile,
			UsePathStyle:    true,
		})
	case config.StoreMinio:
		accessKey, secretKey := cfg.StorageAccessKey, cfg.StorageSecretKey
		if cfg.GCSKeyFile != "" {
			var err error
			accessKey, secretKey, err = s3store.ReadKeyFile(cfg.GCSKeyFile)
			if err != nil {
				return nil, err
			}
		}
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: accessKey,
			SecretKey: secretKey,
			Bucket:    cfg.StorageBucket,
			Region:    cfg.StorageRegion,
			UseSSL:    cfg.StorageUseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported OBJECT_STORE %q", cfg.ObjectStoreType)
	}
}
