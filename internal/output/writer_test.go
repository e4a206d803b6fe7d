package output

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/protoembed/internal/codegen/meta"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWriteAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, "out", discard)

	err := w.WriteAll([]*meta.Artifact{
		{Path: "com/acme/Order.java", Content: []byte("class")},
		{Path: "Plain.java", Content: []byte("plain"), AnnotationPath: "Plain.java.pb.meta", Annotations: []byte{1, 2}},
	})
	require.NoError(t, err)

	for name, want := range map[string]string{
		"out/com/acme/Order.java": "class",
		"out/Plain.java":          "plain",
		"out/Plain.java.pb.meta":  "\x01\x02",
	} {
		got, err := afero.ReadFile(fs, filepath.FromSlash(name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(got), name)
	}
	exists, err := afero.Exists(fs, filepath.FromSlash("out/com/acme/Order.java.pb.meta"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWritePropagatesErrors(t *testing.T) {
	w := NewWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()), "out", discard)
	err := w.Write(&meta.Artifact{Path: "a.java", Content: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "a.java")
}
