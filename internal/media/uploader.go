package media

import (
	"context"
	"errors"
	"time"

	"recipes-backend/internal/shared/telemetry"
)

// Outcomes reported to an Observer.
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Observer receives one record per terminal outcome.
type Observer interface {
	RecordUpload(backend, outcome string, duration time.Duration, sizeBytes int64)
}

type nopObserver struct{}

func (nopObserver) RecordUpload(string, string, time.Duration, int64) {}

// Uploader is the entry point used by HTTP handlers and tools. It runs the
// configured backend and reports every outcome to logs and the observer.
type Uploader struct {
	backend  Backend
	observer Observer
}

// NewUploader wraps backend. A nil observer discards records.
func NewUploader(backend Backend, observer Observer) *Uploader {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Uploader{backend: backend, observer: observer}
}

// Backend returns the wrapped backend.
func (u *Uploader) Backend() Backend {
	return u.backend
}

// Upload stores req and returns its reference or an *UploadError.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest) (StoredObjectReference, error) {
	start := time.Now()
	ref, err := u.backend.Store(ctx, req)
	if err == nil && ref.Locator == "" {
		err = transportFailure(errors.New("backend returned an empty locator"), 0)
	}
	if err != nil {
		var uploadErr *UploadError
		if !errors.As(err, &uploadErr) {
			err = transportFailure(err, 0)
		}
		ref = StoredObjectReference{}
	}
	elapsed := time.Since(start)

	fields := map[string]any{
		"backend":     u.backend.Name(),
		"field":       req.FieldName,
		"folder":      req.DestinationFolder,
		"file_name":   req.OriginalName,
		"size_bytes":  req.Size(),
		"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
	}

	switch {
	case err == nil:
		fields["key"] = ref.Key
		telemetry.Info("media.upload.completed", fields)
		u.observer.RecordUpload(u.backend.Name(), OutcomeCompleted, elapsed, req.Size())
	case IsValidation(err):
		kind, _ := KindOf(err)
		fields["kind"] = string(kind)
		fields["err"] = err.Error()
		telemetry.Warn("media.upload.rejected", fields)
		u.observer.RecordUpload(u.backend.Name(), OutcomeRejected, elapsed, 0)
	default:
		fields["kind"] = string(KindTransportFailure)
		fields["err"] = err.Error()
		telemetry.Error("media.upload.failed", fields)
		u.observer.RecordUpload(u.backend.Name(), OutcomeFailed, elapsed, 0)
	}
	return ref, err
}
