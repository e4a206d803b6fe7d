package descriptor

import (
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Holder builds one file descriptor on first use and caches the result,
// including a failed build.
type Holder struct {
	path    string
	data    []string
	deps    []Dependency
	gencode *gencodeVersion

	once sync.Once
	fd   protoreflect.FileDescriptor
	err  error
}

// HolderOption configures a Holder.
type HolderOption func(*Holder)

// WithGencodeVersion makes the holder validate, before building, that the
// generated code is compatible with this runtime.
func WithGencodeVersion(major, minor, patch int, suffix string) HolderOption {
	return func(h *Holder) {
		h.gencode = &gencodeVersion{major: major, minor: minor, patch: patch, suffix: suffix}
	}
}

// NewHolder is called from generated code. deps is nil for files generated
// for the lazy runtime.
func NewHolder(path string, data []string, deps []Dependency, opts ...HolderOption) *Holder {
	h := &Holder{path: path, data: data, deps: deps}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Path returns the schema file path of the held descriptor.
func (h *Holder) Path() string { return h.path }

// Dependencies returns the explicit dependency list, nil for lazy files.
func (h *Holder) Dependencies() []Dependency { return h.deps }

// Get returns the descriptor, building it with resolved on the first call.
// Later calls ignore resolved and return the cached result.
func (h *Holder) Get(resolved Resolved) (protoreflect.FileDescriptor, error) {
	h.once.Do(func() {
		if h.gencode != nil {
			if h.err = h.gencode.validate(h.path); h.err != nil {
				return
			}
		}
		h.fd, h.err = Build(h.path, h.data, h.deps, resolved)
	})
	return h.fd, h.err
}
