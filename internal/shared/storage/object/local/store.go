package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"recipes-backend/internal/shared/storage/object"
)

// Store implements object.Streamer on the local filesystem. Bytes are written to
// a temporary file next to the destination and renamed into place on Close.
type Store struct {
	baseDir string
}

// New creates a local store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// BaseDir returns the root directory of the store.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// OpenStream creates the temporary file backing a write to storageKey.
func (s *Store) OpenStream(ctx context.Context, storageKey string, opts object.StreamOptions) (object.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	tmpPath := filepath.Join(filepath.Dir(fullPath), ".tmp-"+randomID())
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	_ = opts
	return &stream{f: f, tmpPath: tmpPath, finalPath: fullPath}, nil
}

// Exists reports whether a finished object is present at storageKey.
func (s *Store) Exists(storageKey string) bool {
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

func (s *Store) resolve(storageKey string) (string, error) {
	if strings.TrimSpace(storageKey) == "" {
		return "", object.ErrInvalidKey
	}
	clean := filepath.Clean(filepath.FromSlash(storageKey))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", object.ErrInvalidKey
	}
	return filepath.Join(s.baseDir, clean), nil
}

type stream struct {
	mu        sync.Mutex
	f         *os.File
	tmpPath   string
	finalPath string
	done      bool
	result    error
}

func (w *stream) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		if w.result != nil {
			return 0, w.result
		}
		return 0, os.ErrClosed
	}
	n, err := w.f.Write(p)
	if err != nil {
		return n, fmt.Errorf("write body: %w", err)
	}
	return n, nil
}

func (w *stream) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return w.result
	}
	w.done = true

	if err := w.f.Sync(); err != nil {
		w.discard()
		w.result = fmt.Errorf("sync file: %w", err)
		return w.result
	}
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		w.result = fmt.Errorf("close file: %w", err)
		return w.result
	}
	if err := os.Rename(w.tmpPath, w.finalPath); err != nil {
		_ = os.Remove(w.tmpPath)
		w.result = fmt.Errorf("rename file: %w", err)
		return w.result
	}
	return nil
}

func (w *stream) Abort(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return
	}
	w.done = true
	if err == nil {
		err = errors.New("stream aborted")
	}
	w.result = err
	w.discard()
}

func (w *stream) discard() {
	_ = w.f.Close()
	_ = os.Remove(w.tmpPath)
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

var _ object.Streamer = (*Store)(nil)
