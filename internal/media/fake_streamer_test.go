package media

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"recipes-backend/internal/shared/storage/object"
)

// fakeStreamer records every stream it opens. Objects become visible in
// committed only after a successful Close.
type fakeStreamer struct {
	mu        sync.Mutex
	opened    []string
	opts      []object.StreamOptions
	committed map[string][]byte

	openErr  error
	closeErr error
	// block makes Close wait for the context to end.
	block bool
}

func newFakeStreamer() *fakeStreamer {
	return &fakeStreamer{committed: make(map[string][]byte)}
}

func (f *fakeStreamer) OpenStream(ctx context.Context, key string, opts object.StreamOptions) (object.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, key)
	f.opts = append(f.opts, opts)
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeStream{ctx: ctx, parent: f, key: key}, nil
}

func (f *fakeStreamer) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opened)
}

func (f *fakeStreamer) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.committed[key]
	return data, ok
}

type fakeStream struct {
	ctx     context.Context
	parent  *fakeStreamer
	key     string
	buf     bytes.Buffer
	done    bool
	aborted error
}

func (s *fakeStream) Write(p []byte) (int, error) {
	if s.done {
		return 0, errors.New("write after close")
	}
	return s.buf.Write(p)
}

func (s *fakeStream) Close() error {
	if s.done {
		return s.aborted
	}
	s.done = true
	if s.parent.block {
		<-s.ctx.Done()
		return s.ctx.Err()
	}
	if s.parent.closeErr != nil {
		return s.parent.closeErr
	}
	s.parent.mu.Lock()
	s.parent.committed[s.key] = append([]byte(nil), s.buf.Bytes()...)
	s.parent.mu.Unlock()
	return nil
}

func (s *fakeStream) Abort(err error) {
	if s.done {
		return
	}
	s.done = true
	s.aborted = err
}

type streamerFunc func(ctx context.Context, key string, opts object.StreamOptions) (object.Stream, error)

func (f streamerFunc) OpenStream(ctx context.Context, key string, opts object.StreamOptions) (object.Stream, error) {
	return f(ctx, key, opts)
}

// stuckStream blocks every call until release is closed, whatever the context.
type stuckStream struct {
	release <-chan struct{}
}

func (s stuckStream) Write(p []byte) (int, error) {
	<-s.release
	return len(p), nil
}

func (s stuckStream) Close() error {
	<-s.release
	return nil
}

func (s stuckStream) Abort(error) {}
