package descriptor_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/Alia5/protoembed/descriptor"
	"github.com/Alia5/protoembed/internal/codegen/chunker"
	"github.com/Alia5/protoembed/internal/codegen/meta"
	"github.com/Alia5/protoembed/internal/codegen/serializer"
	fixtures "github.com/Alia5/protoembed/internal/testing"
)

// embed renders the payload the way generated Go code holds it: one string
// per part, decoded from its escaped literal lines.
func embed(t *testing.T, f *meta.File, bytesPerLine, linesPerPart int) []string {
	t.Helper()
	payload := serializer.Serialize(f, meta.Options{}.Normalize())
	var parts []string
	for in := range chunker.New(bytesPerLine, linesPerPart, chunker.GoEscape).Chunks(payload) {
		switch in.Kind {
		case chunker.StartPart:
			parts = append(parts, "")
		case chunker.Line:
			s, err := strconv.Unquote(`"` + in.Text + `"`)
			require.NoError(t, err)
			parts[len(parts)-1] += s
		}
	}
	return parts
}

var orderDeps = []descriptor.Dependency{
	{Path: "base/common.proto", Holder: "example.com/acme/basepb.File_base_common_proto_Descriptor"},
	{Path: "plain_types.proto", Holder: "File_plain_types_proto_Descriptor"},
	{Path: "google/protobuf/timestamp.proto", Holder: "google.golang.org/protobuf/types/known/timestamppb.File_google_protobuf_timestamp_proto_Descriptor"},
}

func resolvedFor(files map[string]*meta.File, paths ...string) descriptor.Resolved {
	r := descriptor.Resolved{}
	for _, p := range paths {
		r[p] = files[p].Descriptor()
	}
	return r
}

func TestBuildRoundTrip(t *testing.T) {
	files := fixtures.ShopFiles(t)
	order := files["shop/order.proto"]

	for _, limits := range [][2]int{{40, 400}, {7, 3}, {1, 1}} {
		data := embed(t, order, limits[0], limits[1])
		fd, err := descriptor.Build("shop/order.proto", data, orderDeps,
			resolvedFor(files, "base/common.proto", "plain_types.proto", "google/protobuf/timestamp.proto"))
		require.NoError(t, err)

		assert.True(t, proto.Equal(order.Proto(), protodesc.ToFileDescriptorProto(fd)), "limits %v", limits)
		msg := fd.Messages().ByName("Order")
		require.NotNil(t, msg)
		assert.Equal(t, protoreflect.FullName("acme.base.Money"), msg.Fields().ByName("total").Message().FullName())
	}
}

func TestBuildStrippedPayloadIsProto2(t *testing.T) {
	files := fixtures.ShopFiles(t)
	order := files["shop/order.proto"]
	resolved := resolvedFor(files, "base/common.proto", "plain_types.proto", "google/protobuf/timestamp.proto")

	for _, tc := range []struct {
		strip    bool
		syntax   protoreflect.Syntax
		presence bool
	}{
		{false, protoreflect.Proto3, false},
		{true, protoreflect.Proto2, true},
	} {
		payload := serializer.Serialize(order, meta.Options{StripNonfunctional: tc.strip}.Normalize())
		fd, err := descriptor.Build("shop/order.proto", []string{string(payload)}, orderDeps, resolved)
		require.NoError(t, err)
		assert.Equal(t, tc.syntax, fd.Syntax(), "strip=%v", tc.strip)
		id := fd.Messages().ByName("Order").Fields().ByName("id")
		assert.Equal(t, tc.presence, id.HasPresence(), "strip=%v", tc.strip)
	}
}

func TestBuildMissingDependency(t *testing.T) {
	files := fixtures.ShopFiles(t)
	data := embed(t, files["shop/order.proto"], 40, 400)

	_, err := descriptor.Build("shop/order.proto", data, orderDeps,
		resolvedFor(files, "base/common.proto", "google/protobuf/timestamp.proto"))
	require.ErrorIs(t, err, descriptor.ErrMissingDependency)
	assert.Contains(t, err.Error(), "plain_types.proto")
}

func TestBuildDependencyMismatch(t *testing.T) {
	files := fixtures.ShopFiles(t)
	data := embed(t, files["shop/order.proto"], 40, 400)
	all := resolvedFor(files, "base/common.proto", "plain_types.proto", "google/protobuf/timestamp.proto")

	reordered := []descriptor.Dependency{orderDeps[1], orderDeps[0], orderDeps[2]}
	_, err := descriptor.Build("shop/order.proto", data, reordered, all)
	assert.ErrorIs(t, err, descriptor.ErrDependencyMismatch)

	_, err = descriptor.Build("shop/order.proto", data, orderDeps[:2], all)
	assert.ErrorIs(t, err, descriptor.ErrDependencyMismatch)
}

func TestBuildLazyFallsBackToGlobalRegistry(t *testing.T) {
	files := fixtures.ShopFiles(t)
	data := embed(t, files["shop/order.proto"], 40, 400)

	// timestamp.proto is linked into the binary and found globally.
	fd, err := descriptor.Build("shop/order.proto", data, nil,
		resolvedFor(files, "base/common.proto", "plain_types.proto"))
	require.NoError(t, err)
	assert.Equal(t, 3, fd.Imports().Len())

	_, err = descriptor.Build("shop/order.proto", data, nil, resolvedFor(files, "base/common.proto"))
	assert.Error(t, err)
}

func TestBuildEmptyPayload(t *testing.T) {
	fd, err := descriptor.Build("shop/order.proto", nil, []descriptor.Dependency{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "shop/order.proto", fd.Path())
	assert.Zero(t, fd.Messages().Len())
	assert.Zero(t, fd.Imports().Len())
}

func TestBuildCorruptPayload(t *testing.T) {
	_, err := descriptor.Build("x.proto", []string{"\xff\xff\xff"}, nil, nil)
	assert.Error(t, err)
}

func TestHolderBuildsOnce(t *testing.T) {
	files := fixtures.ShopFiles(t)
	data := embed(t, files["plain_types.proto"], 40, 400)
	h := descriptor.NewHolder("plain_types.proto", data, []descriptor.Dependency{})
	assert.Equal(t, "plain_types.proto", h.Path())
	assert.NotNil(t, h.Dependencies())

	var wg sync.WaitGroup
	results := make([]protoreflect.FileDescriptor, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fd, err := h.Get(nil)
			assert.NoError(t, err)
			results[i] = fd
		}()
	}
	wg.Wait()
	for _, fd := range results {
		assert.Same(t, results[0], fd)
	}
}

func TestHolderCachesFailure(t *testing.T) {
	files := fixtures.ShopFiles(t)
	data := embed(t, files["shop/order.proto"], 40, 400)
	h := descriptor.NewHolder("shop/order.proto", data, orderDeps)

	_, err := h.Get(nil)
	require.ErrorIs(t, err, descriptor.ErrMissingDependency)

	// Providing the dependencies later does not rebuild.
	_, err = h.Get(resolvedFor(files, "base/common.proto", "plain_types.proto", "google/protobuf/timestamp.proto"))
	assert.ErrorIs(t, err, descriptor.ErrMissingDependency)
}

func TestHolderVersionCheck(t *testing.T) {
	h := descriptor.NewHolder("x.proto", nil, nil,
		descriptor.WithGencodeVersion(descriptor.Major+1, 0, 0, ""))
	_, err := h.Get(nil)
	assert.ErrorIs(t, err, descriptor.ErrVersionMismatch)

	h = descriptor.NewHolder("x.proto", nil, nil,
		descriptor.WithGencodeVersion(descriptor.Major, descriptor.Minor, descriptor.Patch, descriptor.Suffix))
	_, err = h.Get(nil)
	assert.NoError(t, err)
}

func TestValidateGencodeVersion(t *testing.T) {
	tests := []struct {
		name                string
		major, minor, patch int
		suffix              string
		ok                  bool
	}{
		{"same", descriptor.Major, descriptor.Minor, descriptor.Patch, descriptor.Suffix, true},
		{"other major", descriptor.Major + 1, 0, 0, "", false},
		{"newer minor", descriptor.Major, descriptor.Minor + 1, 0, "", false},
		{"newer patch", descriptor.Major, descriptor.Minor, descriptor.Patch + 1, "", false},
		{"suffix", descriptor.Major, descriptor.Minor, descriptor.Patch, "rc1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := descriptor.ValidateGencodeVersion(tt.major, tt.minor, tt.patch, tt.suffix, "x.proto")
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, descriptor.ErrVersionMismatch)
			}
		})
	}
}
