// Package golang emits Go descriptor holders. Instead of a mutable global
// populated at init time, the generated file for shop/order.proto exposes
//
//	func File_shop_order_proto_Descriptor(deps descriptor.Resolved) (protoreflect.FileDescriptor, error)
//
// backed by a descriptor.Holder that builds the descriptor exactly once.
// Imported descriptors are injected by the caller.
package golang

import (
	"log/slog"
	"strconv"

	"github.com/Alia5/protoembed/descriptor"
	"github.com/Alia5/protoembed/internal/codegen/annotate"
	"github.com/Alia5/protoembed/internal/codegen/binder"
	"github.com/Alia5/protoembed/internal/codegen/chunker"
	"github.com/Alia5/protoembed/internal/codegen/common"
	"github.com/Alia5/protoembed/internal/codegen/meta"
	"github.com/Alia5/protoembed/internal/codegen/printer"
	"github.com/Alia5/protoembed/internal/codegen/serializer"
)

const runtimeImportPath = "github.com/Alia5/protoembed/descriptor"

// Generate renders the Go holder for file. It returns nil for files without
// descriptor reflection.
func Generate(logger *slog.Logger, file *meta.File, opts meta.Options) *meta.Artifact {
	opts = opts.Normalize()
	if !file.HasDescriptorMethods(opts.EnforceLite) {
		logger.Debug("Skipping file without descriptor methods", "file", file.Path())
		return nil
	}

	_, pkgName := GoPackage(file)
	filename := OutputPath(file, opts.Paths)
	prefix := varPrefix(file)

	var collector *annotate.Proto
	var c annotate.Collector
	if opts.Annotate {
		collector = annotate.New()
		c = collector
	}
	p := printer.New('$', "\t", c)

	p.Print("// Code generated by protoembed. DO NOT EDIT.\n")
	if opts.EmitVersion {
		version, err := common.GetVersion()
		if err != nil {
			logger.Warn("Invalid generator version", "error", err)
			version = common.Version
		}
		p.Print(
			"// versions:\n"+
				"// \tprotoembed v$version$\n",
			"version", version)
	}
	p.Print(
		"// source: $filename$\n"+
			"\n"+
			"package $package$\n",
		"filename", file.Path(),
		"package", pkgName)
	p.Annotate("package", file.Path(), annotate.PackagePath())
	p.Print(
		"\n"+
			"import (\n"+
			"\tdescriptor \"$runtime$\"\n"+
			"\tprotoreflect \"google.golang.org/protobuf/reflect/protoreflect\"\n"+
			")\n"+
			"\n",
		"runtime", runtimeImportPath)

	generateRawDesc(p, prefix, serializer.Serialize(file, opts), opts)
	generateDependencies(p, file, prefix, opts)
	generateHolder(p, file, prefix, opts)

	artifact := &meta.Artifact{Path: filename, Content: p.Bytes()}
	if collector != nil {
		info, err := collector.Marshal()
		if err != nil {
			panic(err)
		}
		artifact.AnnotationPath = filename + ".meta"
		artifact.Annotations = info
		artifact.Info = collector.Info()
	}
	logger.Debug("Generated Go descriptor holder", "file", file.Path(), "output", filename)
	return artifact
}

// generateRawDesc prints the payload as a []string, one element per part.
// Continuation lines are indented one extra level, the way gofmt lays out a
// multi-line binary expression inside a composite literal.
func generateRawDesc(p *printer.Printer, prefix string, payload []byte, opts meta.Options) {
	if len(payload) == 0 {
		p.Print("var $prefix$_rawDesc = []string{}\n\n", "prefix", prefix)
		return
	}

	ch := chunker.New(opts.BytesPerLine, opts.LinesPerPart, chunker.GoEscape)
	p.Print("var $prefix$_rawDesc = []string{\n", "prefix", prefix)
	p.Indent()
	continued := false
	for in := range ch.Chunks(payload) {
		switch in.Kind {
		case chunker.StartPart:
			if in.Part == 0 {
				continue
			}
			p.Print(",\n")
			if continued {
				p.Outdent()
				continued = false
			}
		case chunker.Line:
			if !in.FirstInPart(ch.LinesPerPart()) {
				p.Print(" +\n")
				if !continued {
					p.Indent()
					continued = true
				}
			}
			p.Print("\"$data$\"", "data", in.Text)
		}
	}
	p.Print(",\n")
	if continued {
		p.Outdent()
	}
	p.Outdent()
	p.Print("}\n\n")
}

// generateDependencies lists the imports in declaration order. Lazy files
// get a nil list so the runtime resolves imports itself.
func generateDependencies(p *printer.Printer, file *meta.File, prefix string, opts meta.Options) {
	if !opts.Eager() {
		return
	}
	deps := binder.Bind(file.Dependencies(), HolderIdentifier, ".")
	if len(deps) == 0 {
		p.Print("var $prefix$_deps = []descriptor.Dependency{}\n\n", "prefix", prefix)
		return
	}
	p.Print("var $prefix$_deps = []descriptor.Dependency{\n", "prefix", prefix)
	for i, dep := range deps {
		p.Print("\t{Path: $path$, Holder: $holder$},\n",
			"path", strconv.Quote(dep.Path),
			"holder", strconv.Quote(dep.Identifier))
		p.Annotate("path", file.Path(), annotate.DependencyPath(i))
	}
	p.Print("}\n\n")
}

func generateHolder(p *printer.Printer, file *meta.File, prefix string, opts meta.Options) {
	fn := entryPoint(file)
	deps := "nil"
	if opts.Eager() {
		deps = prefix + "_deps"
	}
	p.Print(
		"var $prefix$_holder = descriptor.NewHolder(\n"+
			"\t$path$,\n"+
			"\t$prefix$_rawDesc,\n"+
			"\t$deps$,\n",
		"prefix", prefix,
		"path", strconv.Quote(file.Path()),
		"deps", deps)
	if opts.Eager() {
		version := opts.RuntimeVersion
		if version == "" {
			version = descriptor.Version
		}
		major, minor, patch, suffix := common.ParseVersion(version)
		p.Print("\tdescriptor.WithGencodeVersion($major$, $minor$, $patch$, $suffix$),\n",
			"major", strconv.Itoa(major),
			"minor", strconv.Itoa(minor),
			"patch", strconv.Itoa(patch),
			"suffix", strconv.Quote(suffix))
	}
	p.Print(")\n\n")

	p.Print(
		"// $func$ returns the descriptor of $path$, building it on first use.\n"+
			"// It is meant for generated code; the descriptor is incomplete until every\n"+
			"// file it imports is. deps maps the path of each imported file to its\n"+
			"// resolved descriptor.\n",
		"func", fn,
		"path", file.Path())
	if opts.StripNonfunctional && !opts.EmptyPayload {
		p.Print(
			"//\n" +
				"// The payload carries no syntax or edition and is rebuilt with proto2\n" +
				"// semantics, so fields of a proto3 file report explicit presence.\n")
	}
	p.Print("func $func$(deps descriptor.Resolved) (protoreflect.FileDescriptor, error) {\n", "func", fn)
	p.Annotate("func", file.Path(), annotate.FilePath())
	p.Print(
		"\treturn $prefix$_holder.Get(deps)\n"+
			"}\n",
		"prefix", prefix)
}
