package serializer

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// StripSourceRetention removes every option whose field is declared with
// retention = RETENTION_SOURCE. Such options only exist for the compiler and
// never reach generated code.
func StripSourceRetention(fdp *descriptorpb.FileDescriptorProto) {
	rangeMessages(fdp.ProtoReflect(), func(m protoreflect.Message) {
		if isOptions(m.Descriptor()) {
			stripRetained(m)
		}
	})
}

func stripRetained(m protoreflect.Message) {
	var drop []protoreflect.FieldDescriptor
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if sourceRetention(fd) {
			drop = append(drop, fd)
			return true
		}
		switch {
		case fd.IsMap():
			if fd.MapValue().Message() != nil {
				v.Map().Range(func(_ protoreflect.MapKey, mv protoreflect.Value) bool {
					stripRetained(mv.Message())
					return true
				})
			}
		case fd.IsList():
			if fd.Message() != nil {
				l := v.List()
				for i := 0; i < l.Len(); i++ {
					stripRetained(l.Get(i).Message())
				}
			}
		case fd.Message() != nil:
			stripRetained(v.Message())
		}
		return true
	})
	for _, fd := range drop {
		m.Clear(fd)
	}
}

func sourceRetention(fd protoreflect.FieldDescriptor) bool {
	opts, ok := fd.Options().(*descriptorpb.FieldOptions)
	return ok && opts.GetRetention() == descriptorpb.FieldOptions_RETENTION_SOURCE
}
