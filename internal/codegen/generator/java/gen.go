// Package java emits the Java descriptor holder class: a final class with a
// static FileDescriptor field populated by a static initializer from the
// embedded, chunked descriptor payload.
package java

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Alia5/protoembed/internal/codegen/annotate"
	"github.com/Alia5/protoembed/internal/codegen/binder"
	"github.com/Alia5/protoembed/internal/codegen/chunker"
	"github.com/Alia5/protoembed/internal/codegen/common"
	"github.com/Alia5/protoembed/internal/codegen/meta"
	"github.com/Alia5/protoembed/internal/codegen/printer"
	"github.com/Alia5/protoembed/internal/codegen/serializer"
)

// DefaultRuntimeVersion is the protobuf-java runtime the generated code is
// validated against unless overridden.
const DefaultRuntimeVersion = "4.29.3"

const fileDescriptorType = "com.google.protobuf.Descriptors.FileDescriptor"

// maxConstantBytes is the class file limit for one string constant, in
// modified UTF-8 bytes.
const maxConstantBytes = 65535

// CheckOptions rejects chunk limits whose parts could outgrow a string
// constant. Every payload byte decodes to one char, which takes up to two
// bytes of modified UTF-8.
func CheckOptions(opts meta.Options) error {
	opts = opts.Normalize()
	if size := 2 * opts.BytesPerLine * opts.LinesPerPart; size > maxConstantBytes {
		return fmt.Errorf("%d bytes per line times %d lines per part may need %d bytes per string constant, java allows %d",
			opts.BytesPerLine, opts.LinesPerPart, size, maxConstantBytes)
	}
	return nil
}

// Generate renders the holder class for file. It returns nil for files
// without descriptor reflection.
func Generate(logger *slog.Logger, file *meta.File, opts meta.Options) *meta.Artifact {
	opts = opts.Normalize()
	if !file.HasDescriptorMethods(opts.EnforceLite) {
		logger.Debug("Skipping file without descriptor methods", "file", file.Path())
		return nil
	}

	javaPackage := FilePackage(file)
	classname := ClassName(file)
	filename := PackageToDir(javaPackage) + classname + ".java"
	infoRelativePath := classname + ".java.pb.meta"

	var collector *annotate.Proto
	var c annotate.Collector
	if opts.Annotate {
		collector = annotate.New()
		c = collector
	}
	p := printer.New('$', "  ", c)

	p.Print(
		"// Generated by protoembed.  DO NOT EDIT!\n"+
			"// source: $filename$\n",
		"filename", file.Path())
	if opts.EmitVersion {
		version, err := common.GetVersion()
		if err != nil {
			logger.Warn("Invalid generator version", "error", err)
			version = common.Version
		}
		p.Print("// protoembed version: $version$\n", "version", version)
	}
	p.Print("\n")
	if javaPackage != "" {
		p.Print(
			"package $package$;\n"+
				"\n",
			"package", javaPackage)
		p.Annotate("package", file.Path(), annotate.PackagePath())
	}
	if opts.Annotate {
		p.Print("@javax.annotation.Generated(value=\"protoembed\", comments=\"annotations:$file$\")\n",
			"file", infoRelativePath)
	}

	p.Print("public final class $classname$ {\n", "classname", classname)
	p.Annotate("classname", file.Path(), annotate.FilePath())
	p.Print(
		"  private $classname$() {}\n"+
			"  /* This variable is to be called by generated code only. It returns\n"+
			"  * an incomplete descriptor for internal use only. */\n"+
			"  public static $type$\n"+
			"      descriptor;\n"+
			"\n"+
			"  public static $type$\n"+
			"      getDescriptor() {\n"+
			"    return descriptor;\n"+
			"  }\n",
		"classname", classname, "type", fileDescriptorType)

	p.Print("  static {\n")
	p.Indent()
	p.Indent()
	generateDescriptors(p, file, opts)
	if opts.Eager() {
		printVersionValidator(p, opts, classname)
	}
	p.Outdent()
	p.Outdent()
	p.Print(
		"  }\n" +
			"}\n")

	artifact := &meta.Artifact{Path: filename, Content: p.Bytes()}
	if collector != nil {
		info, err := collector.Marshal()
		if err != nil {
			// GeneratedCodeInfo built here always marshals.
			panic(err)
		}
		artifact.AnnotationPath = filename + ".pb.meta"
		artifact.Annotations = info
		artifact.Info = collector.Info()
	}
	logger.Debug("Generated Java descriptor holder", "file", file.Path(), "output", filename)
	return artifact
}

// generateDescriptors embeds the serialized FileDescriptorProto as string
// literals, not a byte array: javac compiles a byte array literal into one
// store instruction per element, which quickly exceeds the method size limit.
func generateDescriptors(p *printer.Printer, file *meta.File, opts meta.Options) {
	payload := serializer.Serialize(file, opts)
	ch := chunker.New(opts.BytesPerLine, opts.LinesPerPart, chunker.CEscape)

	p.Print("java.lang.String[] descriptorData = {\n")
	p.Indent()
	for in := range ch.Chunks(payload) {
		switch in.Kind {
		case chunker.StartPart:
			if in.Part > 0 {
				p.Print(",\n")
			}
		case chunker.Line:
			if !in.FirstInPart(ch.LinesPerPart()) {
				p.Print(" +\n")
			}
			p.Print("\"$data$\"", "data", in.Text)
		}
	}
	p.Outdent()
	p.Print("\n};\n")

	p.Print(
		"descriptor = $type$\n"+
			"  .internalBuildGeneratedFileFrom(descriptorData",
		"type", fileDescriptorType)
	p.Print(",\n    new $type$[] {\n", "type", fileDescriptorType)
	// The lazy runtime passes no dependencies; the descriptor is built with
	// placeholders for imported types.
	if opts.Eager() {
		for i, dep := range binder.Bind(file.Dependencies(), HolderIdentifier, ".") {
			p.Print("      $dependency$.getDescriptor(),\n", "dependency", dep.Identifier)
			p.Annotate("dependency", file.Path(), annotate.DependencyPath(i))
		}
	}
	p.Print("    });\n")
}

func printVersionValidator(p *printer.Printer, opts meta.Options, classname string) {
	version := opts.RuntimeVersion
	if version == "" {
		version = DefaultRuntimeVersion
	}
	major, minor, patch, suffix := common.ParseVersion(version)
	p.Print(
		"com.google.protobuf.RuntimeVersion.validateProtobufGencodeVersion(\n"+
			"  com.google.protobuf.RuntimeVersion.RuntimeDomain.PUBLIC,\n"+
			"  /* major= */ $major$,\n"+
			"  /* minor= */ $minor$,\n"+
			"  /* patch= */ $patch$,\n"+
			"  /* suffix= */ $suffix$,\n"+
			"  $classname$.class.getName());\n",
		"major", strconv.Itoa(major),
		"minor", strconv.Itoa(minor),
		"patch", strconv.Itoa(patch),
		"suffix", strconv.Quote(suffix),
		"classname", classname)
}
