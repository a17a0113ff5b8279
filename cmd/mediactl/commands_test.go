package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recipes-backend/internal/media"
)

func setLocalEnv(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	store := t.TempDir()
	t.Setenv("OBJECT_STORE", "local")
	t.Setenv("LOCAL_STORE_DIR", store)
	t.Setenv("LOCAL_ENFORCE_POLICY", "true")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", "")
	t.Setenv("UPLOAD_MAX_SIZE_BYTES", "")
	t.Setenv("UPLOAD_TIMEOUT", "")
	return store
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPutStoresFile(t *testing.T) {
	store := setLocalEnv(t)
	src := filepath.Join(t.TempDir(), "Dish.PNG")
	if err := os.WriteFile(src, []byte("\x89PNG\r\n\x1a\n"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out, err := run(t, "put", "--folder", "recipes", "--field", "cover", src)
	if err != nil {
		t.Fatalf("put: %v (%s)", err, out)
	}
	var ref media.StoredObjectReference
	if err := json.Unmarshal([]byte(out), &ref); err != nil {
		t.Fatalf("decode output: %v (%s)", err, out)
	}
	if !strings.HasSuffix(ref.Key, "-cover.png") || ref.OriginalName != "Dish.PNG" {
		t.Fatalf("unexpected reference: %+v", ref)
	}
	if _, err := os.Stat(filepath.Join(store, ref.Key)); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestPutRejectsDisallowedType(t *testing.T) {
	setLocalEnv(t)
	src := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	_, err := run(t, "put", src)
	kind, ok := media.KindOf(err)
	if !ok || kind != media.KindDisallowedFileType {
		t.Fatalf("expected disallowed_file_type, got %v", err)
	}
}

func TestPolicyPrintsEffectivePolicy(t *testing.T) {
	setLocalEnv(t)

	out, err := run(t, "policy")
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	for _, want := range []string{"backend:    local", "extensions: jpg, jpeg, png", "max size:   2.0 MiB (2097152 bytes)", "timeout:    30s", "enforced:   yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
