package binder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/protoembed/internal/codegen/binder"
	"github.com/Alia5/protoembed/internal/codegen/meta"
	fixtures "github.com/Alia5/protoembed/internal/testing"
)

func TestBindPreservesOrder(t *testing.T) {
	files := fixtures.ShopFiles(t)
	order := files["shop/order.proto"]

	resolve := func(f *meta.File) (string, string) {
		return f.Package(), "Holder"
	}
	got := binder.Bind(order.Dependencies(), resolve, ".")

	assert.Equal(t, []binder.Bound{
		{Path: "base/common.proto", Identifier: "acme.base.Holder"},
		{Path: "plain_types.proto", Identifier: "Holder"},
		{Path: "google/protobuf/timestamp.proto", Identifier: "google.protobuf.Holder"},
	}, got)
}

func TestBindNoDependencies(t *testing.T) {
	files := fixtures.ShopFiles(t)
	got := binder.Bind(files["plain_types.proto"].Dependencies(), func(*meta.File) (string, string) {
		t.Fatal("resolver must not be called")
		return "", ""
	}, ".")
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestQualify(t *testing.T) {
	tests := []struct {
		pkg, name, sep, want string
	}{
		{"com.acme", "Outer", ".", "com.acme.Outer"},
		{"", "Outer", ".", "Outer"},
		{"acme", "Outer", "::", "acme::Outer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, binder.Qualify(tt.pkg, tt.name, tt.sep))
	}
}
