package meta

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// Runtime selects how the generated code wires dependencies.
type Runtime string

const (
	// RuntimeEager emits the explicit dependency array and the gencode
	// version validation.
	RuntimeEager Runtime = "eager"
	// RuntimeLazy omits both; the runtime resolves imports on its own.
	RuntimeLazy Runtime = "lazy"
)

// Paths selects how output paths are derived for hosts that support both.
type Paths string

const (
	PathsImport         Paths = "import"
	PathsSourceRelative Paths = "source_relative"
)

const (
	// DefaultBytesPerLine is the number of payload bytes per literal line.
	DefaultBytesPerLine = 40
	// DefaultLinesPerPart keeps one literal part well below 64k.
	DefaultLinesPerPart = 400
)

// Options configures one generation run.
type Options struct {
	// StripNonfunctional removes fields that differ between semantically
	// equal encodings (syntax markers, editions features). The runtime then
	// rebuilds the payload as proto2, which changes field presence.
	StripNonfunctional bool
	// EmptyPayload embeds a zero-length descriptor blob.
	EmptyPayload bool
	// Annotate records source mappings and emits the annotation artifact.
	Annotate bool
	// Runtime is the target runtime flavor.
	Runtime Runtime
	// EmitVersion adds the generator version comment.
	EmitVersion bool
	// EnforceLite treats every file as lite; nothing is generated.
	EnforceLite bool

	// RuntimeVersion is the runtime version the generated code validates
	// against. Empty selects the backend's default.
	RuntimeVersion string

	// BytesPerLine and LinesPerPart bound the payload literals. Zero selects
	// the default; negative values are rejected by Validate.
	BytesPerLine int
	LinesPerPart int
	Paths        Paths
}

// Validate reports options that Normalize cannot repair.
func (o Options) Validate() error {
	if o.BytesPerLine < 0 || o.LinesPerPart < 0 {
		return fmt.Errorf("chunk limits must be positive, got %d bytes per line and %d lines per part", o.BytesPerLine, o.LinesPerPart)
	}
	return nil
}

// Normalize returns a copy with defaults filled in.
func (o Options) Normalize() Options {
	if o.Runtime == "" {
		o.Runtime = RuntimeEager
	}
	if o.BytesPerLine <= 0 {
		o.BytesPerLine = DefaultBytesPerLine
	}
	if o.LinesPerPart <= 0 {
		o.LinesPerPart = DefaultLinesPerPart
	}
	if o.Paths == "" {
		o.Paths = PathsImport
	}
	if o.EmptyPayload {
		o.StripNonfunctional = true
	}
	return o
}

// Eager reports whether dependency wiring and version checks are emitted.
func (o Options) Eager() bool { return o.Runtime != RuntimeLazy }

// ParseParameter parses a protoc plugin parameter such as
// "annotate,runtime=lazy,bytes_per_line=64" on top of base.
func ParseParameter(param string, base Options) (Options, error) {
	opts := base
	for _, kv := range strings.Split(param, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		key, value, hasValue := strings.Cut(kv, "=")
		flag := func() (bool, error) {
			if !hasValue {
				return true, nil
			}
			return strconv.ParseBool(value)
		}
		var err error
		switch key {
		case "strip_nonfunctional":
			opts.StripNonfunctional, err = flag()
		case "empty_payload":
			opts.EmptyPayload, err = flag()
		case "annotate", "annotate_code":
			opts.Annotate, err = flag()
		case "version", "emit_version":
			opts.EmitVersion, err = flag()
		case "enforce_lite":
			opts.EnforceLite, err = flag()
		case "runtime":
			switch Runtime(value) {
			case RuntimeEager, RuntimeLazy:
				opts.Runtime = Runtime(value)
			default:
				err = fmt.Errorf("unknown runtime %q", value)
			}
		case "paths":
			switch Paths(value) {
			case PathsImport, PathsSourceRelative:
				opts.Paths = Paths(value)
			default:
				err = fmt.Errorf("unknown paths mode %q", value)
			}
		case "runtime_version":
			opts.RuntimeVersion = value
		case "bytes_per_line":
			opts.BytesPerLine, err = positive(value)
		case "lines_per_part":
			opts.LinesPerPart, err = positive(value)
		default:
			err = fmt.Errorf("unknown parameter %q", key)
		}
		if err != nil {
			return base, fmt.Errorf("parameter %q: %w", kv, err)
		}
	}
	return opts, nil
}

func positive(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// Artifact is the output produced for one schema file. The caller writes it.
type Artifact struct {
	// Path and Content are the primary source file.
	Path    string
	Content []byte

	// AnnotationPath and Annotations are set only when annotating.
	AnnotationPath string
	Annotations    []byte
	Info           *descriptorpb.GeneratedCodeInfo
}

// HasAnnotations reports whether the side artifact should be written.
func (a *Artifact) HasAnnotations() bool { return a.AnnotationPath != "" }
