// Package output writes generated artifacts below an output root.
package output

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Alia5/protoembed/internal/codegen/meta"
)

// Writer stores artifacts on an afero filesystem.
type Writer struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

func NewWriter(fs afero.Fs, root string, logger *slog.Logger) *Writer {
	return &Writer{fs: fs, root: root, logger: logger}
}

// Write stores a and, when present, its annotation file.
func (w *Writer) Write(a *meta.Artifact) error {
	if err := w.writeFile(a.Path, a.Content); err != nil {
		return err
	}
	if a.HasAnnotations() {
		if err := w.writeFile(a.AnnotationPath, a.Annotations); err != nil {
			return err
		}
	}
	return nil
}

// WriteAll stores artifacts in order and stops at the first failure.
func (w *Writer) WriteAll(artifacts []*meta.Artifact) error {
	for _, a := range artifacts {
		if err := w.Write(a); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeFile(name string, data []byte) error {
	dest := filepath.Join(w.root, filepath.FromSlash(name))
	if err := w.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", name, err)
	}
	if err := afero.WriteFile(w.fs, dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	w.logger.Debug("Wrote file", "path", dest, "bytes", len(data))
	return nil
}
