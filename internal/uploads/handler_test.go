package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"recipes-backend/internal/media"
	"recipes-backend/internal/shared/storage/object"
	"recipes-backend/internal/shared/storage/object/local"
)

type filePart struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, parts ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, p := range parts {
		fw, err := writer.CreateFormFile(p.field, p.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(p.data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.WriteField("name", "Nasi Goreng"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func newRemoteHandler(t *testing.T, streamer object.Streamer) *Handler {
	t.Helper()
	backend, err := media.NewRemote(media.RemoteConfig{
		Streamer:     streamer,
		Bucket:       "recipes-bucket",
		PublicPrefix: media.DefaultPublicPrefix,
		Policy:       media.DefaultPolicy(),
	})
	if err != nil {
		t.Fatalf("new remote: %v", err)
	}
	return NewHandler(media.NewUploader(backend, nil), Options{
		Folders:      []string{"recipes", "users"},
		MaxFileBytes: media.DefaultMaxSizeBytes,
	})
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func post(r http.Handler, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return payload.Error.Code
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(dir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return files
}

func TestGenericUploadStoresImage(t *testing.T) {
	dir := t.TempDir()
	router := newRouter(newRemoteHandler(t, local.New(dir)))

	body, ct := multipartBody(t, filePart{field: "picture", name: "cat.png", data: []byte("png-bytes")})
	resp := post(router, "/api/v1/uploads/recipes", body, ct)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var ref media.StoredObjectReference
	if err := json.Unmarshal(resp.Body.Bytes(), &ref); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(ref.Key, "public/recipes/images/") || !strings.HasSuffix(ref.Key, "-picture.png") {
		t.Fatalf("unexpected key: %s", ref.Key)
	}
	if ref.Locator != "https://storage.googleapis.com/recipes-bucket/"+ref.Key {
		t.Fatalf("unexpected locator: %s", ref.Locator)
	}
	if ref.OriginalName != "cat.png" {
		t.Fatalf("unexpected original name: %s", ref.OriginalName)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref.Key)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected stored content: %q", data)
	}
}

func TestGenericUploadRejections(t *testing.T) {
	tests := []struct {
		name   string
		parts  []filePart
		path   string
		status int
		code   string
	}{
		{
			name:   "disallowed type",
			parts:  []filePart{{field: "picture", name: "virus.exe", data: []byte("MZ")}},
			path:   "/api/v1/uploads/recipes",
			status: http.StatusBadRequest,
			code:   "disallowed_file_type",
		},
		{
			name:   "too large",
			parts:  []filePart{{field: "picture", name: "big.jpg", data: bytes.Repeat([]byte("a"), 3000000)}},
			path:   "/api/v1/uploads/recipes",
			status: http.StatusRequestEntityTooLarge,
			code:   "file_too_large",
		},
		{
			name:   "missing file",
			parts:  []filePart{{field: "other", name: "cat.png", data: []byte("x")}},
			path:   "/api/v1/uploads/recipes",
			status: http.StatusBadRequest,
			code:   "no_file_provided",
		},
		{
			name:   "custom field",
			parts:  []filePart{{field: "picture", name: "cat.png", data: []byte("x")}},
			path:   "/api/v1/uploads/users?field=avatar",
			status: http.StatusBadRequest,
			code:   "no_file_provided",
		},
		{
			name:   "unknown folder",
			parts:  []filePart{{field: "picture", name: "cat.png", data: []byte("x")}},
			path:   "/api/v1/uploads/secrets",
			status: http.StatusNotFound,
			code:   "not_found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			router := newRouter(newRemoteHandler(t, local.New(dir)))

			body, ct := multipartBody(t, tt.parts...)
			resp := post(router, tt.path, body, ct)

			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			if got := errorCode(t, resp); got != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, got)
			}
			if files := listFiles(t, dir); len(files) != 0 {
				t.Fatalf("expected no stored files, got %v", files)
			}
		})
	}
}

type failingStreamer struct{}

func (failingStreamer) OpenStream(context.Context, string, object.StreamOptions) (object.Stream, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestGenericUploadTransportFailureIsBadGateway(t *testing.T) {
	router := newRouter(newRemoteHandler(t, failingStreamer{}))

	body, ct := multipartBody(t, filePart{field: "picture", name: "cat.png", data: []byte("x")})
	resp := post(router, "/api/v1/uploads/recipes", body, ct)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if got := errorCode(t, resp); got != "transport_failure" {
		t.Fatalf("unexpected code: %s", got)
	}
}

func TestMiddlewareUploadsAllFieldsBeforeHandler(t *testing.T) {
	dir := t.TempDir()
	h := newRemoteHandler(t, local.New(dir))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen map[string]media.StoredObjectReference
	var formName string
	r.POST("/recipes", h.Middleware("recipes", false, "picture", "thumbnail"), func(c *gin.Context) {
		seen = References(c)
		formName = c.PostForm("name")
		c.Status(http.StatusOK)
	})

	body, ct := multipartBody(t,
		filePart{field: "picture", name: "cat.png", data: []byte("one")},
		filePart{field: "thumbnail", name: "cat-small.jpg", data: []byte("two")},
	)
	resp := post(r, "/recipes", body, ct)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(seen) != 2 {
		t.Fatalf("expected two references, got %v", seen)
	}
	if seen["picture"].Key == seen["thumbnail"].Key {
		t.Fatalf("keys must differ: %v", seen)
	}
	if !strings.HasSuffix(seen["thumbnail"].Key, "-thumbnail.jpg") {
		t.Fatalf("unexpected thumbnail key: %s", seen["thumbnail"].Key)
	}
	if formName != "Nasi Goreng" {
		t.Fatalf("form values should remain readable, got %q", formName)
	}
	if files := listFiles(t, dir); len(files) != 2 {
		t.Fatalf("expected two stored files, got %v", files)
	}
}

func TestMiddlewarePassesThroughWithoutFiles(t *testing.T) {
	h := newRemoteHandler(t, failingStreamer{})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	called := false
	r.POST("/recipes", h.Middleware("recipes", false), func(c *gin.Context) {
		called = true
		if _, ok := Reference(c, DefaultField); ok {
			t.Errorf("unexpected reference")
		}
		c.Status(http.StatusOK)
	})

	resp := post(r, "/recipes", bytes.NewBufferString(`{"name":"Soto Ayam"}`), "application/json")
	if resp.Code != http.StatusOK || !called {
		t.Fatalf("expected pass-through, got %d", resp.Code)
	}
}

func TestMiddlewareAbortsBeforeHandlerOnRejection(t *testing.T) {
	h := newRemoteHandler(t, local.New(t.TempDir()))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	called := false
	r.POST("/recipes", h.Middleware("recipes", false), func(c *gin.Context) {
		called = true
	})

	body, ct := multipartBody(t, filePart{field: "picture", name: "virus.exe", data: []byte("MZ")})
	resp := post(r, "/recipes", body, ct)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if called {
		t.Fatalf("handler must not run after a rejected upload")
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[media.Kind]int{
		media.KindNoFileProvided:     http.StatusBadRequest,
		media.KindDisallowedFileType: http.StatusBadRequest,
		media.KindFileTooLarge:       http.StatusRequestEntityTooLarge,
		media.KindTransportFailure:   http.StatusBadGateway,
	}
	for kind, want := range cases {
		if got := StatusFor(kind); got != want {
			t.Fatalf("%s: expected %d, got %d", kind, want, got)
		}
	}
}
