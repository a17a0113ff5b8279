package media

import (
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"recipes-backend/internal/shared/util"
)

const (
	fallbackExtension = "bin"
	fallbackFieldName = "file"
)

// Clock issues millisecond timestamps for object names. Every stamp is strictly
// greater than the previous one, so two uploads in the same process never share
// a name even within one millisecond. Separate processes writing to the same
// store can still collide.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClock returns a Clock reading now, or time.Now when nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Next returns the next stamp.
func (c *Clock) Next() int64 {
	ms := c.now().UnixMilli()
	c.mu.Lock()
	defer c.mu.Unlock()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return ms
}

// Extension returns the lowercased text after the last dot of name, or "" when
// there is none.
func Extension(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// FileName composes "<stamp>-<field>.<ext>".
func FileName(stamp int64, fieldName, originalName string) string {
	field := util.SanitizeSegment(fieldName)
	if field == "" {
		field = fallbackFieldName
	}
	ext := util.SanitizeSegment(Extension(originalName))
	if ext == "" {
		ext = fallbackExtension
	}
	return strconv.FormatInt(stamp, 10) + "-" + field + "." + ext
}

// Key places FileName under folder. Empty folder segments are skipped.
func Key(folder string, stamp int64, fieldName, originalName string) string {
	name := FileName(stamp, fieldName, originalName)
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// JoinFolder joins non-empty, sanitized segments with "/".
func JoinFolder(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		for _, p := range strings.Split(seg, "/") {
			if clean := util.SanitizeSegment(p); clean != "" {
				parts = append(parts, clean)
			}
		}
	}
	return strings.Join(parts, "/")
}
