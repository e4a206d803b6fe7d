// Package meta holds the model shared between the generator orchestrator and
// the host-language backends: the schema file being compiled, its
// dependencies, the generation options and the emitted artifact.
package meta

import (
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// File is one compiled schema file. It only references the descriptor; the
// compiler pipeline that produced it keeps ownership.
type File struct {
	desc protoreflect.FileDescriptor
}

// NewFile wraps a linked file descriptor.
func NewFile(fd protoreflect.FileDescriptor) *File {
	return &File{desc: fd}
}

// Descriptor returns the wrapped file descriptor.
func (f *File) Descriptor() protoreflect.FileDescriptor { return f.desc }

// Path is the schema file name as imported, e.g. "foo/bar.proto".
func (f *File) Path() string { return f.desc.Path() }

// Package is the declared schema package, possibly empty.
func (f *File) Package() string { return string(f.desc.Package()) }

// Dependencies returns the direct imports in declaration order.
func (f *File) Dependencies() []Dependency {
	imports := f.desc.Imports()
	deps := make([]Dependency, 0, imports.Len())
	for i := 0; i < imports.Len(); i++ {
		deps = append(deps, Dependency{File: NewFile(imports.Get(i).FileDescriptor)})
	}
	return deps
}

// Types lists the names of the top-level declarations.
func (f *File) Types() []string {
	var names []string
	for i := 0; i < f.desc.Messages().Len(); i++ {
		names = append(names, string(f.desc.Messages().Get(i).Name()))
	}
	for i := 0; i < f.desc.Enums().Len(); i++ {
		names = append(names, string(f.desc.Enums().Get(i).Name()))
	}
	for i := 0; i < f.desc.Services().Len(); i++ {
		names = append(names, string(f.desc.Services().Get(i).Name()))
	}
	for i := 0; i < f.desc.Extensions().Len(); i++ {
		names = append(names, string(f.desc.Extensions().Get(i).Name()))
	}
	return names
}

// FileOptions returns the file options, never nil.
func (f *File) FileOptions() *descriptorpb.FileOptions {
	if opts, ok := f.desc.Options().(*descriptorpb.FileOptions); ok && opts != nil {
		return opts
	}
	return &descriptorpb.FileOptions{}
}

// HasDescriptorMethods reports whether descriptor reflection is enabled for
// the file. Lite files carry no embedded descriptor.
func (f *File) HasDescriptorMethods(enforceLite bool) bool {
	if enforceLite {
		return false
	}
	return f.FileOptions().GetOptimizeFor() != descriptorpb.FileOptions_LITE_RUNTIME
}

// Proto returns a fresh descriptor proto for the file. Source code info is
// never included.
func (f *File) Proto() *descriptorpb.FileDescriptorProto {
	fdp := protodesc.ToFileDescriptorProto(f.desc)
	fdp.SourceCodeInfo = nil
	return fdp
}

// Dependency is a reference to an imported schema file. Only its identity is
// ever used.
type Dependency struct {
	File *File
}

// Path is the import path of the dependency.
func (d Dependency) Path() string { return d.File.Path() }
