package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"recipes-backend/internal/media"
	"recipes-backend/internal/shared/server/middleware"
	"recipes-backend/internal/shared/server/respond"
)

const (
	// DefaultField is the multipart field read when none is named.
	DefaultField = "picture"

	defaultMaxBodyBytes = 32 << 20
	maxMemoryBytes      = 8 << 20
	referencesKey       = "uploadReferences"
)

// Options configures a Handler.
type Options struct {
	// Folders are the destination folders the generic endpoint accepts.
	Folders []string
	// MaxFileBytes caps how much of one part is buffered; the pipeline still
	// sees the declared part size, so oversized files are rejected, not cut.
	MaxFileBytes int64
	// MaxBodyBytes caps the whole request body.
	MaxBodyBytes int64
}

// Handler turns multipart file parts into pipeline uploads.
type Handler struct {
	uploader     *media.Uploader
	folders      map[string]struct{}
	maxFileBytes int64
	maxBodyBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(uploader *media.Uploader, opts Options) *Handler {
	folders := make(map[string]struct{}, len(opts.Folders))
	for _, f := range opts.Folders {
		if f = strings.TrimSpace(f); f != "" {
			folders[f] = struct{}{}
		}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{
		uploader:     uploader,
		folders:      folders,
		maxFileBytes: opts.MaxFileBytes,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// RegisterRoutes attaches the generic upload endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/:folder", h.upload)
}

// Middleware uploads the named file fields of a multipart request into folder
// before the next handler runs. Fields are uploaded concurrently; the first
// failure aborts the request with the mapped status. When required is false,
// absent fields and non-multipart requests pass through untouched.
func (h *Handler) Middleware(folder string, required bool, fields ...string) gin.HandlerFunc {
	if len(fields) == 0 {
		fields = []string{DefaultField}
	}
	return func(c *gin.Context) {
		if !isMultipart(c) && !required {
			c.Next()
			return
		}
		refs, err := h.process(c, folder, required, fields)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.Set(referencesKey, refs)
		c.Next()
	}
}

func (h *Handler) upload(c *gin.Context) {
	folder := strings.TrimSpace(c.Param("folder"))
	if _, ok := h.folders[folder]; !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown upload folder", nil)
		return
	}
	field := strings.TrimSpace(c.DefaultQuery("field", DefaultField))
	if field == "" {
		field = DefaultField
	}

	refs, err := h.process(c, folder, true, []string{field})
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, refs[field])
}

func (h *Handler) process(c *gin.Context, folder string, required bool, fields []string) (map[string]media.StoredObjectReference, error) {
	form, err := h.parseForm(c)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(fields))
	reqs := make([]media.UploadRequest, 0, len(fields))
	for _, field := range fields {
		var headers []*multipart.FileHeader
		if form != nil {
			headers = form.File[field]
		}
		if len(headers) == 0 {
			if required {
				// Absent parts still go through the pipeline so the rejection is
				// logged and counted like any other.
				names = append(names, field)
				reqs = append(reqs, media.UploadRequest{FieldName: field, DestinationFolder: folder})
			}
			continue
		}
		req, err := h.readPart(headers[0], field, folder)
		if err != nil {
			return nil, err
		}
		names = append(names, field)
		reqs = append(reqs, req)
	}

	results := make([]media.StoredObjectReference, len(reqs))
	g, ctx := errgroup.WithContext(c.Request.Context())
	for i := range reqs {
		g.Go(func() error {
			ref, err := h.uploader.Upload(ctx, reqs[i])
			if err != nil {
				return err
			}
			results[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	refs := make(map[string]media.StoredObjectReference, len(results))
	keys := make([]string, 0, len(results))
	for i, ref := range results {
		refs[names[i]] = ref
		keys = append(keys, ref.Key)
	}
	if len(keys) > 0 {
		c.Set(middleware.UploadKeysKey, keys)
	}
	return refs, nil
}

func (h *Handler) parseForm(c *gin.Context) (*multipart.Form, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	if err := c.Request.ParseMultipartForm(maxMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &media.UploadError{
				Kind:    media.KindFileTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Err:     err,
			}
		}
		return nil, errInvalidForm{err: err}
	}
	return c.Request.MultipartForm, nil
}

func (h *Handler) readPart(fh *multipart.FileHeader, field, folder string) (media.UploadRequest, error) {
	f, err := fh.Open()
	if err != nil {
		return media.UploadRequest{}, errInvalidForm{err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxFileBytes > 0 {
		r = io.LimitReader(f, h.maxFileBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return media.UploadRequest{}, errInvalidForm{err: err}
	}
	return media.UploadRequest{
		OriginalName:      fh.Filename,
		FieldName:         field,
		MimeType:          fh.Header.Get("Content-Type"),
		SizeBytes:         fh.Size,
		Content:           data,
		DestinationFolder: folder,
	}, nil
}

// References returns the stored references attached by Middleware, keyed by
// field name.
func References(c *gin.Context) map[string]media.StoredObjectReference {
	raw, ok := c.Get(referencesKey)
	if !ok {
		return nil
	}
	refs, _ := raw.(map[string]media.StoredObjectReference)
	return refs
}

// Reference returns the stored reference for one field.
func Reference(c *gin.Context, field string) (media.StoredObjectReference, bool) {
	ref, ok := References(c)[field]
	return ref, ok
}

// StatusFor maps an upload failure kind to its HTTP status.
func StatusFor(kind media.Kind) int {
	switch kind {
	case media.KindNoFileProvided, media.KindDisallowedFileType:
		return http.StatusBadRequest
	case media.KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}

// WriteError aborts the request with the error envelope for err.
func WriteError(c *gin.Context, err error) {
	var formErr errInvalidForm
	if errors.As(err, &formErr) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid multipart form", nil)
		return
	}
	kind, ok := media.KindOf(err)
	if !ok {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process upload", nil)
		return
	}
	c.Set(middleware.UploadErrorKey, string(kind))
	respond.Error(c, StatusFor(kind), string(kind), err.Error(), nil)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

type errInvalidForm struct {
	err error
}

func (e errInvalidForm) Error() string { return "invalid multipart form: " + e.err.Error() }

func (e errInvalidForm) Unwrap() error { return e.err }
