package media

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"recipes-backend/internal/shared/storage/object"
)

const (
	// DefaultStorageHost serves public objects as https://<host>/<bucket>/<key>.
	DefaultStorageHost = "storage.googleapis.com"
	// DefaultPublicPrefix is the first key segment of every remote object.
	DefaultPublicPrefix = "public"
	// DefaultTimeout bounds a single remote write.
	DefaultTimeout = 30 * time.Second

	imagesSegment = "images"
)

// RemoteConfig configures a Remote backend.
type RemoteConfig struct {
	Streamer     object.Streamer
	Bucket       string
	Host         string
	PublicPrefix string
	Policy       ValidationPolicy
	Clock        *Clock
	Timeout      time.Duration
	// Project is attached to every object as metadata when set.
	Project string
}

// Remote validates uploads and streams them to an object-storage bucket,
// returning public URLs.
type Remote struct {
	streamer object.Streamer
	bucket   string
	base     *url.URL
	prefix   string
	policy   ValidationPolicy
	clock    *Clock
	timeout  time.Duration
	metadata map[string]string
}

// NewRemote builds a Remote backend.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.Streamer == nil {
		return nil, errors.New("remote backend requires a streamer")
	}
	bucket := strings.Trim(strings.TrimSpace(cfg.Bucket), "/")
	if bucket == "" {
		return nil, errors.New("remote backend requires a bucket name")
	}
	base, err := parseHost(cfg.Host)
	if err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = NewClock(nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	var metadata map[string]string
	if project := strings.TrimSpace(cfg.Project); project != "" {
		metadata = map[string]string{"project": project}
	}
	return &Remote{
		streamer: cfg.Streamer,
		bucket:   bucket,
		base:     base,
		prefix:   cfg.PublicPrefix,
		policy:   cfg.Policy,
		clock:    cfg.Clock,
		timeout:  cfg.Timeout,
		metadata: metadata,
	}, nil
}

func parseHost(host string) (*url.URL, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultStorageHost
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid storage host " + host)
	}
	return u, nil
}

func (r *Remote) Name() string { return "remote" }

// Policy returns the enforced validation policy.
func (r *Remote) Policy() ValidationPolicy { return r.policy }

// Validate runs the presence, extension and size checks.
func (r *Remote) Validate(req UploadRequest) error {
	return r.policy.Check(req)
}

// Folder is "<publicPrefix>/<destinationFolder>/images".
func (r *Remote) Folder(destinationFolder string) string {
	return JoinFolder(r.prefix, destinationFolder, imagesSegment)
}

// PublicURL resolves an object key to its public URL.
func (r *Remote) PublicURL(key string) string {
	u := *r.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + r.bucket + "/" + key
	return u.String()
}

// Store uploads req and waits for the outcome.
func (r *Remote) Store(ctx context.Context, req UploadRequest) (StoredObjectReference, error) {
	return r.StoreAsync(ctx, req).Wait(ctx)
}

// StoreAsync validates req synchronously and, when it passes, streams it in
// the background. Rejections settle immediately without opening a stream.
func (r *Remote) StoreAsync(ctx context.Context, req UploadRequest) *Pending {
	if err := r.Validate(req); err != nil {
		return settled(StoredObjectReference{}, err)
	}

	key := Key(r.Folder(req.DestinationFolder), r.clock.Next(), req.FieldName, req.OriginalName)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return startTransfer(ctx, cancel, r.timeout, func(ctx context.Context) (StoredObjectReference, error) {
		if err := transfer(ctx, r.streamer, key, req, r.metadata, r.policy.MaxSizeBytes, r.timeout); err != nil {
			return StoredObjectReference{}, err
		}
		return StoredObjectReference{
			Key:          key,
			Locator:      r.PublicURL(key),
			OriginalName: req.OriginalName,
		}, nil
	})
}

var _ Backend = (*Remote)(nil)
