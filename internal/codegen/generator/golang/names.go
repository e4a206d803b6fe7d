package golang

import (
	"path"
	"strings"

	"github.com/Alia5/protoembed/internal/codegen/common"
	"github.com/Alia5/protoembed/internal/codegen/meta"
)

// GoPackage returns the import path and package name for f, from the
// go_package option ("path" or "path;name"). Without the option the import
// path is the schema file's directory and the name comes from the schema
// package, falling back to the file's base name.
func GoPackage(f *meta.File) (importPath, name string) {
	opt := f.FileOptions().GetGoPackage()
	if opt != "" {
		importPath, name, _ = strings.Cut(opt, ";")
		if name == "" {
			name = path.Base(importPath)
		}
		return importPath, packageName(name)
	}

	importPath = path.Dir(f.Path())
	if importPath == "." {
		importPath = ""
	}
	name = f.Package()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = common.BaseName(f.Path())
	}
	return importPath, packageName(name)
}

// HolderIdentifier resolves the import path and function that expose the
// descriptor of f.
func HolderIdentifier(f *meta.File) (pkg, fn string) {
	importPath, _ := GoPackage(f)
	return importPath, entryPoint(f)
}

// OutputPath is the generated file path for f.
func OutputPath(f *meta.File, paths meta.Paths) string {
	base := common.BaseName(f.Path()) + ".desc.pb.go"
	if paths == meta.PathsSourceRelative {
		return path.Join(path.Dir(f.Path()), base)
	}
	importPath, _ := GoPackage(f)
	return path.Join(importPath, base)
}

// varPrefix names the package-level variables of one file, unique per
// schema file within a package.
func varPrefix(f *meta.File) string {
	return "file_" + fileIdentifier(f)
}

// entryPoint is the exported function returning the descriptor of f. Files
// sharing a go_package each get their own.
func entryPoint(f *meta.File) string {
	return "File_" + fileIdentifier(f) + "_Descriptor"
}

func fileIdentifier(f *meta.File) string {
	return common.SanitizeIdentifier(strings.TrimSuffix(f.Path(), ".proto")) + "_proto"
}

func packageName(name string) string {
	name = strings.ToLower(common.SanitizeIdentifier(name))
	if name == "" || name == "_" {
		return "pb"
	}
	return name
}
