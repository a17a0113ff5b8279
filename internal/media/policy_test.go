package media

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyNormalizesExtensions(t *testing.T) {
	t.Parallel()

	p := NewPolicy([]string{" .PNG", "jpg", "png", "", "Jpeg"}, 10)
	assert.Equal(t, []string{"png", "jpg", "jpeg"}, p.AllowedExtensions)
	assert.Equal(t, int64(10), p.MaxSizeBytes)
}

func TestPolicyCheck(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	tests := []struct {
		name    string
		req     UploadRequest
		want    Kind
		message string
	}{
		{
			name: "no content",
			req:  UploadRequest{OriginalName: "cat.png"},
			want: KindNoFileProvided,
		},
		{
			name:    "disallowed extension",
			req:     UploadRequest{OriginalName: "virus.exe", Content: []byte("MZ")},
			want:    KindDisallowedFileType,
			message: "only JPEG, JPG and PNG files are allowed",
		},
		{
			name: "no extension",
			req:  UploadRequest{OriginalName: "README", Content: []byte("x")},
			want: KindDisallowedFileType,
		},
		{
			name:    "declared size over limit",
			req:     UploadRequest{OriginalName: "big.jpg", SizeBytes: 3000000, Content: []byte("x")},
			want:    KindFileTooLarge,
			message: "file size exceeds the limit (2.0 MiB)",
		},
		{
			name: "type is checked before size",
			req:  UploadRequest{OriginalName: "big.gif", SizeBytes: 3000000, Content: []byte("x")},
			want: KindDisallowedFileType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := policy.Check(tt.req)
			require.Error(t, err)
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
			assert.True(t, IsValidation(err))
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}
}

func TestPolicyAcceptsBoundaries(t *testing.T) {
	t.Parallel()

	p := NewPolicy([]string{"png"}, 4)
	assert.NoError(t, p.Check(UploadRequest{OriginalName: "a.PNG", Content: []byte("1234")}))
	assert.NoError(t, p.Check(UploadRequest{OriginalName: "a.png", Content: []byte{}}))

	open := NewPolicy(nil, 0)
	assert.NoError(t, open.Check(UploadRequest{OriginalName: "tool.exe", SizeBytes: 1 << 40, Content: []byte("x")}))
}

func TestUploadErrorMatchesSentinelsByKind(t *testing.T) {
	t.Parallel()

	err := transportFailure(errors.New("connection reset"), 0)
	assert.ErrorIs(t, err, ErrTransportFailure)
	assert.NotErrorIs(t, err, ErrFileTooLarge)
	assert.False(t, IsValidation(err))
	assert.Equal(t, "connection reset", err.Error())

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}
