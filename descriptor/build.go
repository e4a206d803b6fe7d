// Package descriptor is the runtime support for Go files generated by
// protoembed. A generated file embeds its serialized FileDescriptorProto as
// string literal parts and exposes a File_<name>_proto_Descriptor function
// backed by a Holder.
//
// Dependencies are injected: the caller passes a Resolved map from import
// path to the already built descriptor of each imported file. Nothing is
// looked up behind the caller's back unless the file was generated for the
// lazy runtime, in which case unresolved imports fall back to
// protoregistry.GlobalFiles.
package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

var (
	// ErrMissingDependency is returned when an explicitly listed dependency
	// has no entry in the Resolved map.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrDependencyMismatch is returned when the embedded imports disagree
	// with the generated dependency list.
	ErrDependencyMismatch = errors.New("dependency list does not match embedded descriptor")
)

// Resolved maps the import path of a schema file to its built descriptor.
type Resolved map[string]protoreflect.FileDescriptor

// Dependency names one import of a generated file.
type Dependency struct {
	// Path is the import path, the key looked up in Resolved.
	Path string
	// Holder is the fully qualified identifier of the dependency's
	// generated entry point.
	Holder string
}

// Build reconstructs the descriptor of the file at path from its embedded
// parts. It has no side effects.
//
// deps == nil selects lazy resolution: imports are looked up in resolved,
// then in protoregistry.GlobalFiles. A non-nil deps (even empty) must list
// every import in declaration order and each must be present in resolved.
//
// An empty payload is a supported mode: the file was generated with its
// descriptor stripped, and Build returns a descriptor for path that declares
// nothing.
//
// A payload generated with nonfunctional fields stripped has lost its syntax
// and edition, so it is rebuilt with proto2 semantics. Fields of a proto3
// file then have explicit presence and report Syntax() == protoreflect.Proto2.
func Build(path string, data []string, deps []Dependency, resolved Resolved) (protoreflect.FileDescriptor, error) {
	raw := strings.Join(data, "")
	if raw == "" {
		return protodesc.NewFile(&descriptorpb.FileDescriptorProto{Name: proto.String(path)}, new(protoregistry.Files))
	}

	fdp := &descriptorpb.FileDescriptorProto{}
	if err := proto.Unmarshal([]byte(raw), fdp); err != nil {
		return nil, fmt.Errorf("unmarshal embedded descriptor of %s: %w", path, err)
	}

	var r *resolver
	var err error
	if deps == nil {
		r, err = lazyResolver(resolved)
	} else {
		r, err = eagerResolver(path, fdp.GetDependency(), deps, resolved)
	}
	if err != nil {
		return nil, err
	}

	fd, err := protodesc.NewFile(fdp, r)
	if err != nil {
		return nil, fmt.Errorf("build descriptor of %s: %w", path, err)
	}
	return fd, nil
}

func eagerResolver(path string, imports []string, deps []Dependency, resolved Resolved) (*resolver, error) {
	if len(imports) != len(deps) {
		return nil, fmt.Errorf("%s: %w: %d embedded imports, %d dependencies", path, ErrDependencyMismatch, len(imports), len(deps))
	}
	r := &resolver{files: new(protoregistry.Files)}
	for i, d := range deps {
		if imports[i] != d.Path {
			return nil, fmt.Errorf("%s: %w: import %d is %q, dependency is %q", path, ErrDependencyMismatch, i, imports[i], d.Path)
		}
		fd, ok := resolved[d.Path]
		if !ok || fd == nil {
			return nil, fmt.Errorf("%s: %w: %s (%s)", path, ErrMissingDependency, d.Path, d.Holder)
		}
		if err := r.register(fd); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func lazyResolver(resolved Resolved) (*resolver, error) {
	r := &resolver{files: new(protoregistry.Files), fallback: true}
	for _, fd := range resolved {
		if err := r.register(fd); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// resolver serves the injected dependencies, including what they re-export
// through public imports.
type resolver struct {
	files    *protoregistry.Files
	fallback bool
}

func (r *resolver) register(fd protoreflect.FileDescriptor) error {
	if _, err := r.files.FindFileByPath(fd.Path()); err == nil {
		return nil
	}
	if err := r.files.RegisterFile(fd); err != nil {
		return fmt.Errorf("register dependency %s: %w", fd.Path(), err)
	}
	imports := fd.Imports()
	for i := 0; i < imports.Len(); i++ {
		if imp := imports.Get(i); imp.IsPublic && !imp.IsPlaceholder() {
			if err := r.register(imp.FileDescriptor); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) FindFileByPath(path string) (protoreflect.FileDescriptor, error) {
	fd, err := r.files.FindFileByPath(path)
	if err != nil && r.fallback {
		return protoregistry.GlobalFiles.FindFileByPath(path)
	}
	return fd, err
}

func (r *resolver) FindDescriptorByName(name protoreflect.FullName) (protoreflect.Descriptor, error) {
	d, err := r.files.FindDescriptorByName(name)
	if err != nil && r.fallback {
		return protoregistry.GlobalFiles.FindDescriptorByName(name)
	}
	return d, err
}
