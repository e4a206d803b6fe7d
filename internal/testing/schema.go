// Package testing provides schema fixtures shared by the codegen tests.
package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Alia5/protoembed/internal/codegen/meta"
)

// BuildFiles links fdps (in any order) and wraps every file by path.
func BuildFiles(t *testing.T, fdps ...*descriptorpb.FileDescriptorProto) map[string]*meta.File {
	t.Helper()
	files, err := protodesc.NewFiles(&descriptorpb.FileDescriptorSet{File: fdps})
	require.NoError(t, err)

	out := map[string]*meta.File{}
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		out[fd.Path()] = meta.NewFile(fd)
		return true
	})
	return out
}

// TimestampProto is the well-known timestamp file.
func TimestampProto() *descriptorpb.FileDescriptorProto {
	return protodesc.ToFileDescriptorProto(timestamppb.File_google_protobuf_timestamp_proto)
}

// CommonProto declares acme.base.Money with Java and Go naming options.
func CommonProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("base/common.proto"),
		Package: proto.String("acme.base"),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			JavaPackage:        proto.String("com.acme.base"),
			JavaOuterClassname: proto.String("CommonProtos"),
			GoPackage:          proto.String("example.com/acme/basepb;basepb"),
		},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Money"),
			Field: []*descriptorpb.FieldDescriptorProto{
				field("currency", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
				field("units", 2, descriptorpb.FieldDescriptorProto_TYPE_INT64, ""),
			},
		}},
	}
}

// PlainProto has no package and no options.
func PlainProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:   proto.String("plain_types.proto"),
		Syntax: proto.String("proto3"),
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name: proto.String("Color"),
			Value: []*descriptorpb.EnumValueDescriptorProto{
				{Name: proto.String("COLOR_UNSPECIFIED"), Number: proto.Int32(0)},
				{Name: proto.String("COLOR_RED"), Number: proto.Int32(1)},
			},
		}},
	}
}

// OrderProto imports common, plain and timestamp, in that order.
func OrderProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("shop/order.proto"),
		Package:    proto.String("acme.shop"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"base/common.proto", "plain_types.proto", "google/protobuf/timestamp.proto"},
		Options: &descriptorpb.FileOptions{
			JavaPackage: proto.String("com.acme.shop"),
			GoPackage:   proto.String("example.com/acme/shoppb"),
		},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Order"),
			Field: []*descriptorpb.FieldDescriptorProto{
				field("id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
				field("total", 2, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".acme.base.Money"),
				field("color", 3, descriptorpb.FieldDescriptorProto_TYPE_ENUM, ".Color"),
				field("placed_at", 4, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".google.protobuf.Timestamp"),
			},
		}},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("OrderService"),
		}},
	}
}

// ItemProto shares the order file's Go and Java packages.
func ItemProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("shop/item.proto"),
		Package:    proto.String("acme.shop"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"base/common.proto"},
		Options: &descriptorpb.FileOptions{
			JavaPackage: proto.String("com.acme.shop"),
			GoPackage:   proto.String("example.com/acme/shoppb"),
		},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Item"),
			Field: []*descriptorpb.FieldDescriptorProto{
				field("sku", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
				field("price", 2, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".acme.base.Money"),
			},
		}},
	}
}

// ShopFiles links the order file with all of its imports.
func ShopFiles(t *testing.T) map[string]*meta.File {
	t.Helper()
	return BuildFiles(t, OrderProto(), CommonProto(), PlainProto(), TimestampProto())
}

// Custom options declared by OptionsProto and set by TaggedProto.
const (
	BuildTagNumber = 50000 // FileOptions, source retention
	OwnerNumber    = 50001 // FileOptions
	NoteNumber     = 50002 // FieldOptions, source retention

	BuildTag = "nightly-build-7"
	Owner    = "team-storefront"
	Note     = "do-not-ship-note"
)

// DescriptorProto is google/protobuf/descriptor.proto.
func DescriptorProto() *descriptorpb.FileDescriptorProto {
	return protodesc.ToFileDescriptorProto(descriptorpb.File_google_protobuf_descriptor_proto)
}

// OptionsProto extends FileOptions and FieldOptions with custom options.
func OptionsProto() *descriptorpb.FileDescriptorProto {
	source := func() *descriptorpb.FieldOptions {
		return &descriptorpb.FieldOptions{Retention: descriptorpb.FieldOptions_RETENTION_SOURCE.Enum()}
	}
	ext := func(name string, number int32, extendee string, opts *descriptorpb.FieldOptions) *descriptorpb.FieldDescriptorProto {
		f := field(name, number, descriptorpb.FieldDescriptorProto_TYPE_STRING, "")
		f.Extendee = proto.String(extendee)
		f.Options = opts
		return f
	}
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("custom/options.proto"),
		Package:    proto.String("custom"),
		Syntax:     proto.String("proto2"),
		Dependency: []string{"google/protobuf/descriptor.proto"},
		Extension: []*descriptorpb.FieldDescriptorProto{
			ext("build_tag", BuildTagNumber, ".google.protobuf.FileOptions", source()),
			ext("owner", OwnerNumber, ".google.protobuf.FileOptions", nil),
			ext("note", NoteNumber, ".google.protobuf.FieldOptions", source()),
		},
	}
}

// TaggedProto sets every option of OptionsProto. The values are unknown
// fields, the way a compiler hands them over.
func TaggedProto() *descriptorpb.FileDescriptorProto {
	fileOpts := &descriptorpb.FileOptions{
		JavaPackage: proto.String("com.acme.tagged"),
		GoPackage:   proto.String("example.com/acme/taggedpb"),
	}
	fileOpts.ProtoReflect().SetUnknown(stringFields(BuildTagNumber, BuildTag, OwnerNumber, Owner))

	label := field("label", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING, "")
	label.Options = &descriptorpb.FieldOptions{Deprecated: proto.Bool(true)}
	label.Options.ProtoReflect().SetUnknown(stringFields(NoteNumber, Note))

	return &descriptorpb.FileDescriptorProto{
		Name:        proto.String("tagged.proto"),
		Package:     proto.String("acme.tagged"),
		Syntax:      proto.String("proto3"),
		Dependency:  []string{"custom/options.proto"},
		Options:     fileOpts,
		MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("Tag"), Field: []*descriptorpb.FieldDescriptorProto{label}}},
	}
}

// TaggedFiles links the tagged file with its imports.
func TaggedFiles(t *testing.T) map[string]*meta.File {
	t.Helper()
	return BuildFiles(t, TaggedProto(), OptionsProto(), DescriptorProto())
}

// stringFields encodes number/value pairs as length-delimited fields.
func stringFields(kv ...any) []byte {
	var b []byte
	for i := 0; i < len(kv); i += 2 {
		b = protowire.AppendTag(b, protowire.Number(kv[i].(int)), protowire.BytesType)
		b = protowire.AppendString(b, kv[i+1].(string))
	}
	return b
}

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(jsonName(name)),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}

func jsonName(name string) string {
	out := make([]byte, 0, len(name))
	upper := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}
