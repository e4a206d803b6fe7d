// Package binder maps a file's direct imports to the identifiers of their
// generated descriptor holders.
package binder

import "github.com/Alia5/protoembed/internal/codegen/meta"

// HolderResolver names the generated holder of a schema file. It is supplied
// by the host backend's name resolution.
type HolderResolver func(f *meta.File) (pkg, name string)

// Bound is one resolved dependency.
type Bound struct {
	// Path is the imported schema file name.
	Path string
	// Identifier is the fully qualified holder identifier.
	Identifier string
}

// Bind resolves deps in order. sep is the host's namespace separator.
func Bind(deps []meta.Dependency, resolve HolderResolver, sep string) []Bound {
	bound := make([]Bound, 0, len(deps))
	for _, d := range deps {
		pkg, name := resolve(d.File)
		bound = append(bound, Bound{Path: d.Path(), Identifier: Qualify(pkg, name, sep)})
	}
	return bound
}

// Qualify joins pkg and name, omitting an empty package.
func Qualify(pkg, name, sep string) string {
	if pkg == "" {
		return name
	}
	return pkg + sep + name
}
