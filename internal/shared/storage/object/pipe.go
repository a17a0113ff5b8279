package object

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrStreamAborted is the outcome of a stream aborted without a cause.
var ErrStreamAborted = errors.New("stream aborted")

// UploadFunc consumes body until EOF and reports the transport outcome.
type UploadFunc func(ctx context.Context, body io.Reader) error

// NewPipeStream adapts a request-style upload call (one call that reads the
// whole body) into a Stream. The upload runs in its own goroutine; Close
// signals EOF and waits for it to finish. Once ctx ends, pending writes fail
// and Close stops waiting even if upload never returns.
func NewPipeStream(ctx context.Context, upload UploadFunc) Stream {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	s := &pipeStream{
		ctx:    ctx,
		pw:     pw,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.stop = context.AfterFunc(ctx, func() {
		_ = pw.CloseWithError(ctx.Err())
	})
	go func() {
		defer close(s.done)
		err := upload(ctx, pr)
		if err != nil {
			_ = pr.CloseWithError(err)
		} else {
			_ = pr.Close()
		}
		s.uploadErr = err
	}()
	return s
}

type pipeStream struct {
	ctx    context.Context
	pw     *io.PipeWriter
	cancel context.CancelFunc
	stop   func() bool
	done   chan struct{}

	// written by the upload goroutine before done is closed
	uploadErr error

	once   sync.Once
	result error
}

func (s *pipeStream) Write(p []byte) (int, error) {
	n, err := s.pw.Write(p)
	if err != nil {
		if ctxErr := s.ctx.Err(); ctxErr != nil && errors.Is(err, io.ErrClosedPipe) {
			return n, ctxErr
		}
	}
	return n, err
}

func (s *pipeStream) Close() error {
	s.once.Do(func() {
		_ = s.pw.Close()
		select {
		case <-s.done:
			s.result = s.uploadErr
		case <-s.ctx.Done():
			select {
			case <-s.done:
				s.result = s.uploadErr
			default:
				s.result = s.ctx.Err()
			}
		}
		s.stop()
		s.cancel()
	})
	return s.result
}

func (s *pipeStream) Abort(err error) {
	if err == nil {
		err = ErrStreamAborted
	}
	s.once.Do(func() {
		_ = s.pw.CloseWithError(err)
		s.stop()
		s.cancel()
		<-s.done
		s.result = err
	})
}
