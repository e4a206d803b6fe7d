// Package serializer produces the canonical byte payload embedded in
// generated descriptor holders.
package serializer

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/Alia5/protoembed/internal/codegen/meta"
)

var marshalOpts = proto.MarshalOptions{Deterministic: true}

// Serialize returns the payload for f under opts. Custom options declared
// in f or its imports are resolved first, so their retention applies.
//
// With opts.StripNonfunctional the payload carries no syntax or edition, and
// a runtime rebuilding it applies proto2 semantics. Fields of a proto3 file
// then report explicit presence.
func Serialize(f *meta.File, opts meta.Options) []byte {
	if opts.EmptyPayload {
		return []byte{}
	}
	fdp := f.Proto()
	if err := ResolveOptions(fdp, ExtensionTypes(f.Descriptor())); err != nil {
		panic(fmt.Sprintf("serializer: resolve options of %s: %v", f.Path(), err))
	}
	return Encode(fdp, opts.StripNonfunctional)
}

// ExtensionTypes collects a dynamic type for every options extension
// declared in fd or in the files it imports, transitively.
func ExtensionTypes(fd protoreflect.FileDescriptor) *protoregistry.Types {
	types := new(protoregistry.Types)
	seen := map[string]bool{}
	var visit func(fd protoreflect.FileDescriptor)
	visit = func(fd protoreflect.FileDescriptor) {
		if seen[fd.Path()] {
			return
		}
		seen[fd.Path()] = true
		imports := fd.Imports()
		for i := 0; i < imports.Len(); i++ {
			visit(imports.Get(i).FileDescriptor)
		}
		registerExtensions(types, fd.Extensions())
		rangeMessageDescriptors(fd.Messages(), func(md protoreflect.MessageDescriptor) {
			registerExtensions(types, md.Extensions())
		})
	}
	visit(fd)
	return types
}

func registerExtensions(types *protoregistry.Types, exts protoreflect.ExtensionDescriptors) {
	for i := 0; i < exts.Len(); i++ {
		xd := exts.Get(i)
		if !isOptions(xd.ContainingMessage()) {
			continue
		}
		// Two imports declaring the same number is a linker error; the
		// first one wins here.
		_ = types.RegisterExtension(dynamicpb.NewExtensionType(xd))
	}
}

func rangeMessageDescriptors(mds protoreflect.MessageDescriptors, fn func(protoreflect.MessageDescriptor)) {
	for i := 0; i < mds.Len(); i++ {
		fn(mds.Get(i))
		rangeMessageDescriptors(mds.Get(i).Messages(), fn)
	}
}

// ResolveOptions reparses every options message of fdp that carries unknown
// fields, turning the custom options known to types into extensions.
func ResolveOptions(fdp *descriptorpb.FileDescriptorProto, types *protoregistry.Types) error {
	var err error
	rangeMessages(fdp.ProtoReflect(), func(m protoreflect.Message) {
		if err != nil || !isOptions(m.Descriptor()) || len(m.GetUnknown()) == 0 {
			return
		}
		msg := m.Interface()
		var b []byte
		if b, err = marshalOpts.Marshal(msg); err != nil {
			return
		}
		proto.Reset(msg)
		err = proto.UnmarshalOptions{Resolver: types}.Unmarshal(b, msg)
	})
	return err
}

// Encode strips fdp in place and marshals it deterministically.
func Encode(fdp *descriptorpb.FileDescriptorProto, stripNonfunctional bool) []byte {
	StripSourceRetention(fdp)
	if stripNonfunctional {
		StripNonfunctional(fdp)
	}
	b, err := marshalOpts.Marshal(fdp)
	if err != nil {
		// A linked descriptor always marshals.
		panic(fmt.Sprintf("serializer: marshal %s: %v", fdp.GetName(), err))
	}
	return b
}

// StripNonfunctional clears the syntax and edition markers and every
// editions feature set, then drops options messages left empty.
func StripNonfunctional(fdp *descriptorpb.FileDescriptorProto) {
	fdp.Syntax = nil
	fdp.Edition = nil

	root := fdp.ProtoReflect()
	rangeMessages(root, func(m protoreflect.Message) {
		if !isOptions(m.Descriptor()) {
			return
		}
		if fd := m.Descriptor().Fields().ByName("features"); fd != nil {
			m.Clear(fd)
		}
	})
	rangeMessages(root, func(m protoreflect.Message) {
		fd := m.Descriptor().Fields().ByName("options")
		if fd == nil || fd.Message() == nil || !m.Has(fd) {
			return
		}
		if proto.Size(m.Get(fd).Message().Interface()) == 0 {
			m.Clear(fd)
		}
	})
}

// rangeMessages calls fn on m and then on every message nested in it.
func rangeMessages(m protoreflect.Message, fn func(protoreflect.Message)) {
	fn(m)
	var nested []protoreflect.Message
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		switch {
		case fd.IsMap():
			if fd.MapValue().Message() == nil {
				return true
			}
			v.Map().Range(func(_ protoreflect.MapKey, mv protoreflect.Value) bool {
				nested = append(nested, mv.Message())
				return true
			})
		case fd.IsList():
			if fd.Message() == nil {
				return true
			}
			l := v.List()
			for i := 0; i < l.Len(); i++ {
				nested = append(nested, l.Get(i).Message())
			}
		case fd.Message() != nil:
			nested = append(nested, v.Message())
		}
		return true
	})
	for _, n := range nested {
		rangeMessages(n, fn)
	}
}

var optionsTypes = map[protoreflect.FullName]bool{
	"google.protobuf.FileOptions":           true,
	"google.protobuf.MessageOptions":        true,
	"google.protobuf.FieldOptions":          true,
	"google.protobuf.OneofOptions":          true,
	"google.protobuf.EnumOptions":           true,
	"google.protobuf.EnumValueOptions":      true,
	"google.protobuf.ServiceOptions":        true,
	"google.protobuf.MethodOptions":         true,
	"google.protobuf.ExtensionRangeOptions": true,
}

func isOptions(md protoreflect.MessageDescriptor) bool {
	return optionsTypes[md.FullName()]
}
