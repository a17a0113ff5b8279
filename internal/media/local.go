package media

import (
	"context"
	"errors"
	"path"
	"time"

	"recipes-backend/internal/shared/storage/object"
)

// LocalConfig configures a LocalDisk backend. A nil Policy skips the type and
// size checks; the presence check always runs.
type LocalConfig struct {
	Streamer      object.Streamer
	Policy        *ValidationPolicy
	Clock         *Clock
	LocatorPrefix string
	Timeout       time.Duration
}

// LocalDisk writes uploads under a fixed root. The key is the bare file name;
// the destination folder is implied by the root.
type LocalDisk struct {
	streamer      object.Streamer
	policy        *ValidationPolicy
	clock         *Clock
	locatorPrefix string
	timeout       time.Duration
}

// NewLocalDisk builds a LocalDisk backend.
func NewLocalDisk(cfg LocalConfig) (*LocalDisk, error) {
	if cfg.Streamer == nil {
		return nil, errors.New("local backend requires a streamer")
	}
	if cfg.Clock == nil {
		cfg.Clock = NewClock(nil)
	}
	return &LocalDisk{
		streamer:      cfg.Streamer,
		policy:        cfg.Policy,
		clock:         cfg.Clock,
		locatorPrefix: cfg.LocatorPrefix,
		timeout:       cfg.Timeout,
	}, nil
}

func (l *LocalDisk) Name() string { return "local" }

// Validate checks presence and, when a policy is configured, type and size.
func (l *LocalDisk) Validate(req UploadRequest) error {
	if l.policy == nil {
		if !req.HasContent() {
			return noFileProvided()
		}
		return nil
	}
	return l.policy.Check(req)
}

// Store writes req to disk and returns once the file is in place.
func (l *LocalDisk) Store(ctx context.Context, req UploadRequest) (StoredObjectReference, error) {
	if err := l.Validate(req); err != nil {
		return StoredObjectReference{}, err
	}

	var cancel context.CancelFunc
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	var sizeLimit int64
	if l.policy != nil {
		sizeLimit = l.policy.MaxSizeBytes
	}

	name := FileName(l.clock.Next(), req.FieldName, req.OriginalName)
	return startTransfer(ctx, cancel, l.timeout, func(ctx context.Context) (StoredObjectReference, error) {
		if err := transfer(ctx, l.streamer, name, req, nil, sizeLimit, l.timeout); err != nil {
			return StoredObjectReference{}, err
		}
		locator := name
		if l.locatorPrefix != "" {
			locator = path.Join(l.locatorPrefix, name)
		}
		return StoredObjectReference{
			Key:          name,
			Locator:      locator,
			OriginalName: req.OriginalName,
		}, nil
	}).Wait(ctx)
}

var _ Backend = (*LocalDisk)(nil)
