// Package schema parses .proto sources into linked descriptors for the
// generate command.
package schema

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/spf13/afero"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/Alia5/protoembed/internal/codegen/meta"
)

// Loader reads schema sources from an afero filesystem.
type Loader struct {
	fs          afero.Fs
	importPaths []string
	logger      *slog.Logger
}

func NewLoader(fs afero.Fs, importPaths []string, logger *slog.Logger) *Loader {
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	return &Loader{fs: fs, importPaths: importPaths, logger: logger}
}

// Load parses filenames, relative to the import paths, and returns them in
// the given order. Imports are linked but not returned.
func (l *Loader) Load(filenames ...string) ([]*meta.File, error) {
	parser := protoparse.Parser{
		ImportPaths:      l.importPaths,
		InferImportPaths: false,
		Accessor: protoparse.FileAccessor(func(filename string) (io.ReadCloser, error) {
			return l.fs.Open(filename)
		}),
	}

	fds, err := parser.ParseFiles(filenames...)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	fdset := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]struct{})
	for _, fd := range fds {
		fdset.File = append(fdset.File, walkFileDescriptors(seen, fd)...)
	}
	l.logger.Debug("Parsed schema files", "requested", len(filenames), "linked", len(fdset.File))

	return Link(fdset, filenames...)
}

// Link builds descriptors for every file of set and returns the named ones
// in order.
func Link(set *descriptorpb.FileDescriptorSet, filenames ...string) ([]*meta.File, error) {
	files, err := protodesc.NewFiles(set)
	if err != nil {
		return nil, fmt.Errorf("link schema: %w", err)
	}
	out := make([]*meta.File, 0, len(filenames))
	for _, name := range filenames {
		fd, err := files.FindFileByPath(name)
		if err != nil {
			return nil, fmt.Errorf("link schema: %s: %w", name, err)
		}
		out = append(out, meta.NewFile(fd))
	}
	return out, nil
}

func walkFileDescriptors(seen map[string]struct{}, fd *desc.FileDescriptor) []*descriptorpb.FileDescriptorProto {
	fds := []*descriptorpb.FileDescriptorProto{}

	if _, ok := seen[fd.GetName()]; ok {
		return fds
	}
	seen[fd.GetName()] = struct{}{}
	fds = append(fds, fd.AsFileDescriptorProto())

	for _, dep := range fd.GetDependencies() {
		deps := walkFileDescriptors(seen, dep)
		fds = append(fds, deps...)
	}

	return fds
}
