package object

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned when a storage key is empty or escapes the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// StreamOptions carries per-object metadata attached when a stream is opened.
type StreamOptions struct {
	ContentType string
	// SizeBytes is the expected payload size, or -1 when unknown.
	SizeBytes int64
	Metadata  map[string]string
}

// Streamer opens write streams to a backing store.
type Streamer interface {
	OpenStream(ctx context.Context, key string, opts StreamOptions) (Stream, error)
}

// Stream is a single object write. The object becomes visible only after Close
// returns nil. Abort discards everything written so far; calling Close or Abort
// after the stream has terminated is a no-op that returns the first outcome.
type Stream interface {
	io.Writer
	Close() error
	Abort(err error)
}
