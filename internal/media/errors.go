package media

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies an upload failure.
type Kind string

const (
	KindNoFileProvided     Kind = "no_file_provided"
	KindDisallowedFileType Kind = "disallowed_file_type"
	KindFileTooLarge       Kind = "file_too_large"
	KindTransportFailure   Kind = "transport_failure"
)

// Validation reports whether the kind is a caller-side rejection. Validation
// failures are never retryable without changing the input.
func (k Kind) Validation() bool {
	switch k {
	case KindNoFileProvided, KindDisallowedFileType, KindFileTooLarge:
		return true
	default:
		return false
	}
}

// UploadError is the terminal failure outcome of an upload.
type UploadError struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is; they match any UploadError of the same kind.
var (
	ErrNoFileProvided     = &UploadError{Kind: KindNoFileProvided, Message: "no file provided"}
	ErrDisallowedFileType = &UploadError{Kind: KindDisallowedFileType, Message: "file type not allowed"}
	ErrFileTooLarge       = &UploadError{Kind: KindFileTooLarge, Message: "file too large"}
	ErrTransportFailure   = &UploadError{Kind: KindTransportFailure, Message: "transport failure"}
)

func (e *UploadError) Error() string {
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func (e *UploadError) Is(target error) bool {
	t, ok := target.(*UploadError)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the kind of an upload failure.
func KindOf(err error) (Kind, bool) {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.Kind, true
	}
	return "", false
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind.Validation()
}

func noFileProvided() error {
	return &UploadError{Kind: KindNoFileProvided, Message: "no file provided"}
}

func transportFailure(err error, timeout time.Duration) error {
	if err == nil {
		err = errors.New("unknown transport error")
	}
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) && timeout > 0 {
		msg = fmt.Sprintf("upload timed out after %s: %s", timeout, msg)
	}
	return &UploadError{Kind: KindTransportFailure, Message: msg, Err: err}
}
