package java

import (
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/Alia5/protoembed/internal/codegen/common"
	"github.com/Alia5/protoembed/internal/codegen/meta"
)

// FilePackage is the Java package of the classes generated for f.
func FilePackage(f *meta.File) string {
	if pkg := f.FileOptions().GetJavaPackage(); pkg != "" {
		return pkg
	}
	return f.Package()
}

// ClassName is the name of the descriptor holder class for f: the
// java_outer_classname option, or the PascalCase file base name with an
// "OuterClass" suffix when that would clash with a declared type.
func ClassName(f *meta.File) string {
	if name := f.FileOptions().GetJavaOuterClassname(); name != "" {
		return name
	}
	name := common.ToPascalCase(common.BaseName(f.Path()))
	if hasConflictingName(f.Descriptor(), name) {
		name += "OuterClass"
	}
	return name
}

// HolderIdentifier resolves the holder package and class for the binder.
func HolderIdentifier(f *meta.File) (pkg, class string) {
	return FilePackage(f), ClassName(f)
}

// PackageToDir maps a Java package to its output directory, with a trailing
// slash unless the package is empty.
func PackageToDir(pkg string) string {
	if pkg == "" {
		return ""
	}
	return strings.ReplaceAll(pkg, ".", "/") + "/"
}

func hasConflictingName(fd protoreflect.FileDescriptor, name string) bool {
	for i := 0; i < fd.Enums().Len(); i++ {
		if string(fd.Enums().Get(i).Name()) == name {
			return true
		}
	}
	for i := 0; i < fd.Services().Len(); i++ {
		if string(fd.Services().Get(i).Name()) == name {
			return true
		}
	}
	return messagesConflict(fd.Messages(), name)
}

func messagesConflict(msgs protoreflect.MessageDescriptors, name string) bool {
	for i := 0; i < msgs.Len(); i++ {
		m := msgs.Get(i)
		if string(m.Name()) == name || messagesConflict(m.Messages(), name) {
			return true
		}
		for j := 0; j < m.Enums().Len(); j++ {
			if string(m.Enums().Get(j).Name()) == name {
				return true
			}
		}
	}
	return false
}
