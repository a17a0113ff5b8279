package media

import (
	"bytes"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// UploadRequest is one file submitted to the pipeline. Content holds an
// in-memory buffer; Source is used instead for streamed bodies. The pipeline
// only reads from either and never retains them past the terminal outcome.
type UploadRequest struct {
	OriginalName      string
	FieldName         string
	MimeType          string
	SizeBytes         int64
	Content           []byte
	Source            io.Reader
	DestinationFolder string
}

// HasContent reports whether the request carries a file body.
func (r UploadRequest) HasContent() bool {
	return r.Content != nil || r.Source != nil
}

// Size is the larger of the declared size and the buffered length.
func (r UploadRequest) Size() int64 {
	if n := int64(len(r.Content)); n > r.SizeBytes {
		return n
	}
	return r.SizeBytes
}

// ContentType returns the declared MIME type, falling back to content sniffing
// for buffered requests that declare none.
func (r UploadRequest) ContentType() string {
	if r.MimeType != "" {
		return r.MimeType
	}
	if r.Content != nil {
		return mimetype.Detect(r.Content).String()
	}
	return defaultContentType
}

func (r UploadRequest) body() io.Reader {
	if r.Content != nil {
		return bytes.NewReader(r.Content)
	}
	return r.Source
}

// streamSize is the exact byte count when known, -1 otherwise.
func (r UploadRequest) streamSize() int64 {
	if r.Content != nil {
		return int64(len(r.Content))
	}
	return -1
}

// StoredObjectReference is the successful outcome of an upload.
type StoredObjectReference struct {
	Key          string `json:"key"`
	Locator      string `json:"locator"`
	OriginalName string `json:"originalName"`
}
