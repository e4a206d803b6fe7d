package generator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/Alia5/protoembed/internal/codegen/meta"
	fixtures "github.com/Alia5/protoembed/internal/testing"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func shopList(t *testing.T) []*meta.File {
	files := fixtures.ShopFiles(t)
	return []*meta.File{
		files["shop/order.proto"],
		files["base/common.proto"],
		files["plain_types.proto"],
	}
}

func TestNewRejectsUnknownLanguage(t *testing.T) {
	_, err := New("cobol", meta.Options{}, discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cobol")
	assert.Equal(t, []string{"go", "java"}, Languages())
}

func TestNewNormalizesOptions(t *testing.T) {
	g, err := New("java", meta.Options{EmptyPayload: true}, discard)
	require.NoError(t, err)
	assert.Equal(t, "java", g.Language())
	assert.True(t, g.Options().StripNonfunctional)
	assert.Equal(t, meta.DefaultBytesPerLine, g.Options().BytesPerLine)
}

func TestNewChecksChunkLimits(t *testing.T) {
	_, err := New("go", meta.Options{BytesPerLine: -1}, discard)
	assert.ErrorContains(t, err, "positive")

	_, err = New("java", meta.Options{BytesPerLine: 1000, LinesPerPart: 33}, discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "java")
	assert.Contains(t, err.Error(), "66000")

	// The limit only binds java.
	_, err = New("go", meta.Options{BytesPerLine: 1000, LinesPerPart: 33}, discard)
	assert.NoError(t, err)
	_, err = New("java", meta.Options{BytesPerLine: 65535, LinesPerPart: 1}, discard)
	assert.Error(t, err)
	_, err = New("java", meta.Options{BytesPerLine: 32767, LinesPerPart: 1}, discard)
	assert.NoError(t, err)
}

func TestGenerateAllKeepsOrder(t *testing.T) {
	for _, tc := range []struct {
		lang  string
		paths []string
	}{
		{"java", []string{"com/acme/shop/OrderOuterClass.java", "com/acme/base/CommonProtos.java", "PlainTypes.java"}},
		{"go", []string{"example.com/acme/shoppb/order.desc.pb.go", "example.com/acme/basepb/common.desc.pb.go", "plain_types.desc.pb.go"}},
	} {
		t.Run(tc.lang, func(t *testing.T) {
			g, err := New(tc.lang, meta.Options{}, discard)
			require.NoError(t, err)

			artifacts, err := g.GenerateAll(context.Background(), shopList(t))
			require.NoError(t, err)
			var paths []string
			for _, a := range artifacts {
				paths = append(paths, a.Path)
			}
			assert.Equal(t, tc.paths, paths)

			// Concurrent generation matches generating one by one.
			for i, f := range shopList(t) {
				a, err := g.Generate(f)
				require.NoError(t, err)
				assert.Equal(t, a.Content, artifacts[i].Content)
			}
		})
	}
}

func TestGenerateAllSkipsLite(t *testing.T) {
	lite := fixtures.PlainProto()
	lite.Options = &descriptorpb.FileOptions{OptimizeFor: descriptorpb.FileOptions_LITE_RUNTIME.Enum()}
	files := fixtures.BuildFiles(t, lite, fixtures.CommonProto())

	g, err := New("go", meta.Options{}, discard)
	require.NoError(t, err)
	artifacts, err := g.GenerateAll(context.Background(), []*meta.File{files["plain_types.proto"], files["base/common.proto"]})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "example.com/acme/basepb/common.desc.pb.go", artifacts[0].Path)
}

func TestGenerateAllCanceled(t *testing.T) {
	g, err := New("java", meta.Options{}, discard)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.GenerateAll(ctx, shopList(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateRecoversBackendPanic(t *testing.T) {
	g := &Generator{
		lang: "java",
		backend: func(*slog.Logger, *meta.File, meta.Options) *meta.Artifact {
			panic("boom")
		},
		logger: discard,
	}
	_, err := g.Generate(shopList(t)[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "shop/order.proto")
}
