package media

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultMaxSizeBytes is the upload ceiling applied when none is configured.
const DefaultMaxSizeBytes int64 = 2 << 20

// DefaultAllowedExtensions are the image types accepted by default.
var DefaultAllowedExtensions = []string{"jpg", "jpeg", "png"}

// ValidationPolicy is the allow-list and size ceiling checked before any byte
// is written. An empty allow-list permits every extension; a non-positive
// MaxSizeBytes disables the size ceiling.
type ValidationPolicy struct {
	AllowedExtensions []string
	MaxSizeBytes      int64
}

// DefaultPolicy returns {jpg, jpeg, png} with a 2 MiB ceiling.
func DefaultPolicy() ValidationPolicy {
	return NewPolicy(DefaultAllowedExtensions, DefaultMaxSizeBytes)
}

// NewPolicy normalizes extensions to lowercase without a leading dot and drops
// duplicates.
func NewPolicy(extensions []string, maxSizeBytes int64) ValidationPolicy {
	seen := make(map[string]struct{}, len(extensions))
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return ValidationPolicy{AllowedExtensions: out, MaxSizeBytes: maxSizeBytes}
}

// Allows reports whether ext (already lowercased) is on the allow-list.
func (p ValidationPolicy) Allows(ext string) bool {
	if len(p.AllowedExtensions) == 0 {
		return true
	}
	for _, allowed := range p.AllowedExtensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

// Check runs the presence, extension and size checks in that order.
func (p ValidationPolicy) Check(req UploadRequest) error {
	if !req.HasContent() {
		return noFileProvided()
	}
	ext := Extension(req.OriginalName)
	if !p.Allows(ext) {
		return &UploadError{
			Kind:    KindDisallowedFileType,
			Message: fmt.Sprintf("only %s files are allowed", p.describeExtensions()),
		}
	}
	if p.exceeds(req.Size()) {
		return p.tooLarge()
	}
	return nil
}

func (p ValidationPolicy) exceeds(size int64) bool {
	return p.MaxSizeBytes > 0 && size > p.MaxSizeBytes
}

func (p ValidationPolicy) tooLarge() error {
	return &UploadError{
		Kind:    KindFileTooLarge,
		Message: fmt.Sprintf("file size exceeds the limit (%s)", humanize.IBytes(uint64(p.MaxSizeBytes))),
	}
}

func (p ValidationPolicy) describeExtensions() string {
	exts := make([]string, len(p.AllowedExtensions))
	for i, ext := range p.AllowedExtensions {
		exts[i] = strings.ToUpper(ext)
	}
	sort.Strings(exts)
	switch len(exts) {
	case 1:
		return exts[0]
	default:
		return strings.Join(exts[:len(exts)-1], ", ") + " and " + exts[len(exts)-1]
	}
}
