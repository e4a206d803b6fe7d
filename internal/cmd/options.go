package cmd

import (
	"fmt"

	"github.com/Alia5/protoembed/internal/codegen/generator"
	"github.com/Alia5/protoembed/internal/codegen/meta"
)

// Options are the generation flags shared by generate and plugin.
type Options struct {
	Lang               string `help:"Host language of the generated holders" enum:"java,go" default:"java" env:"PROTOEMBED_LANG"`
	StripNonfunctional bool   `help:"Strip syntax, edition and feature fields from the payload" env:"PROTOEMBED_STRIP_NONFUNCTIONAL"`
	EmptyPayload       bool   `help:"Embed a zero-length payload" env:"PROTOEMBED_EMPTY_PAYLOAD"`
	Annotate           bool   `help:"Write generated code annotations next to each holder" env:"PROTOEMBED_ANNOTATE"`
	Runtime            string `help:"Target runtime flavor" enum:"eager,lazy" default:"eager" env:"PROTOEMBED_RUNTIME"`
	EmitVersion        bool   `help:"Record the generator version in a header comment" env:"PROTOEMBED_EMIT_VERSION"`
	EnforceLite        bool   `help:"Treat every file as lite, which generates nothing" env:"PROTOEMBED_ENFORCE_LITE"`
	RuntimeVersion     string `help:"Runtime version the generated code validates against (backend default if empty)" env:"PROTOEMBED_RUNTIME_VERSION"`
	BytesPerLine       int    `help:"Payload bytes per literal line" default:"40" env:"PROTOEMBED_BYTES_PER_LINE"`
	LinesPerPart       int    `help:"Literal lines per part" default:"400" env:"PROTOEMBED_LINES_PER_PART"`
	Paths              string `help:"Output path mode for hosts that support it" enum:"import,source_relative" default:"import" env:"PROTOEMBED_PATHS"`
}

// Meta converts the flags into generator options.
func (o Options) Meta() meta.Options {
	return meta.Options{
		StripNonfunctional: o.StripNonfunctional,
		EmptyPayload:       o.EmptyPayload,
		Annotate:           o.Annotate,
		Runtime:            meta.Runtime(o.Runtime),
		EmitVersion:        o.EmitVersion,
		EnforceLite:        o.EnforceLite,
		RuntimeVersion:     o.RuntimeVersion,
		BytesPerLine:       o.BytesPerLine,
		LinesPerPart:       o.LinesPerPart,
		Paths:              meta.Paths(o.Paths),
	}
}

// Validate is called by kong once flags, environment and configuration are
// applied.
func (o Options) Validate() error {
	if o.BytesPerLine <= 0 || o.LinesPerPart <= 0 {
		return fmt.Errorf("--bytes-per-line and --lines-per-part must be positive, got %d and %d", o.BytesPerLine, o.LinesPerPart)
	}
	return generator.CheckOptions(o.Lang, o.Meta())
}
