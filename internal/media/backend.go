package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"recipes-backend/internal/shared/storage/object"
)

// Backend is a storage target for uploads. Validate runs the checks Store
// would run before writing anything; Store produces exactly one terminal
// outcome per request.
type Backend interface {
	Name() string
	Validate(req UploadRequest) error
	Store(ctx context.Context, req UploadRequest) (StoredObjectReference, error)
}

// Pending is the awaitable outcome of an asynchronous upload.
type Pending struct {
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc
	ref    StoredObjectReference
	err    error
}

func newPending(cancel context.CancelFunc) *Pending {
	if cancel == nil {
		cancel = func() {}
	}
	return &Pending{done: make(chan struct{}), cancel: cancel}
}

func settled(ref StoredObjectReference, err error) *Pending {
	p := newPending(nil)
	p.resolve(ref, err)
	return p
}

// resolve records the first outcome; later calls are ignored.
func (p *Pending) resolve(ref StoredObjectReference, err error) {
	p.once.Do(func() {
		if err != nil {
			ref = StoredObjectReference{}
		}
		p.ref, p.err = ref, err
		p.cancel()
		close(p.done)
	})
}

// startTransfer runs fn in the background under ctx. The outcome settles as a
// transport failure as soon as ctx ends, even when fn is stuck in a transport
// that never observes ctx.
func startTransfer(ctx context.Context, cancel context.CancelFunc, timeout time.Duration, fn func(context.Context) (StoredObjectReference, error)) *Pending {
	p := newPending(cancel)
	if err := ctx.Err(); err != nil {
		p.resolve(StoredObjectReference{}, transportFailure(err, timeout))
		return p
	}
	stop := context.AfterFunc(ctx, func() {
		p.resolve(StoredObjectReference{}, transportFailure(ctx.Err(), timeout))
	})
	go func() {
		ref, err := fn(ctx)
		stop()
		p.resolve(ref, err)
	}()
	return p
}

// Done is closed once the outcome is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Cancel aborts the upload. The outcome becomes a transport failure unless it
// had already settled.
func (p *Pending) Cancel() {
	p.cancel()
}

// Wait blocks until the outcome is available. If ctx ends first the upload is
// canceled and Wait still returns its terminal outcome.
func (p *Pending) Wait(ctx context.Context) (StoredObjectReference, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		p.cancel()
		<-p.done
	}
	return p.ref, p.err
}

// transfer streams req into key. sizeLimit > 0 bounds streamed sources whose
// size is not known up front; an overflow aborts the stream.
func transfer(ctx context.Context, streamer object.Streamer, key string, req UploadRequest, metadata map[string]string, sizeLimit int64, timeout time.Duration) error {
	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["field"] = req.FieldName
	stream, err := streamer.OpenStream(ctx, key, object.StreamOptions{
		ContentType: req.ContentType(),
		SizeBytes:   req.streamSize(),
		Metadata:    meta,
	})
	if err != nil {
		return transportFailure(fmt.Errorf("open stream: %w", err), timeout)
	}

	body := req.body()
	limited := req.Content == nil && sizeLimit > 0
	if limited {
		body = io.LimitReader(body, sizeLimit+1)
	}

	n, err := io.Copy(stream, body)
	if err != nil {
		stream.Abort(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		return transportFailure(err, timeout)
	}
	if limited && n > sizeLimit {
		tooLarge := ValidationPolicy{MaxSizeBytes: sizeLimit}.tooLarge()
		stream.Abort(tooLarge)
		return tooLarge
	}
	if err := ctx.Err(); err != nil {
		stream.Abort(err)
		return transportFailure(err, timeout)
	}
	if err := stream.Close(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(err, ctxErr)
		}
		return transportFailure(err, timeout)
	}
	return nil
}
