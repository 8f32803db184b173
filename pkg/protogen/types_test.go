package protogen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFilter(t *testing.T) {
	t.Run("extension filter matches by extension", func(t *testing.T) {
		filter := ExtensionFilter(".java")
		assert.True(t, filter.Matches("out/com/example/Foo.java"))
		assert.False(t, filter.Matches("out/com/example/Foo.class"))
		assert.False(t, filter.Matches("out/README"))
	})

	t.Run("extension filter normalizes missing dot", func(t *testing.T) {
		filter := ExtensionFilter("go")
		assert.Equal(t, ".go", filter.Ext)
		assert.True(t, filter.Matches("gen/foo.pb.go"))
	})

	t.Run("any filter matches everything", func(t *testing.T) {
		filter := AnyFilter()
		assert.True(t, filter.Matches("anything"))
		assert.True(t, filter.Matches("a/b/c.txt"))
	})

	t.Run("zero filter matches nothing", func(t *testing.T) {
		var filter FileFilter
		assert.True(t, filter.IsZero())
		assert.False(t, filter.Matches("foo.java"))
	})

	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, ExtensionFilter(".java").Validate())
		assert.NoError(t, AnyFilter().Validate())

		var zero FileFilter
		assert.ErrorIs(t, zero.Validate(), ErrMissingFilter)

		missingExt := FileFilter{Kind: FilterByExtension}
		assert.ErrorIs(t, missingExt.Validate(), ErrInvalidFilter)

		unknown := FileFilter{Kind: "glob"}
		assert.ErrorIs(t, unknown.Validate(), ErrInvalidFilter)
	})
}

func TestPluginValidate(t *testing.T) {
	t.Run("valid built-in plugin", func(t *testing.T) {
		plugin := NewPlugin("java", "out/java", ExtensionFilter(".java"))
		assert.NoError(t, plugin.Validate())
	})

	t.Run("valid external plugin", func(t *testing.T) {
		plugin := NewExternalPlugin("grpc", "out/grpc", "/usr/bin/protoc-gen-grpc", ExtensionFilter(".java"))
		require.NoError(t, plugin.Validate())
		assert.Equal(t, "/usr/bin/protoc-gen-grpc", plugin.Executable)
	})

	t.Run("missing name", func(t *testing.T) {
		plugin := NewPlugin("", "out", AnyFilter())
		assert.ErrorIs(t, plugin.Validate(), ErrMissingPluginName)
	})

	t.Run("missing output directory", func(t *testing.T) {
		plugin := NewPlugin("java", "", AnyFilter())
		assert.ErrorIs(t, plugin.Validate(), ErrMissingOutputDir)
	})

	t.Run("missing filter", func(t *testing.T) {
		plugin := Plugin{Name: "java", OutputDir: "out"}
		assert.ErrorIs(t, plugin.Validate(), ErrMissingFilter)
	})
}

func TestArtifactString(t *testing.T) {
	artifact := Artifact{GroupID: "com.google.protobuf", ArtifactID: "protobuf-java", Version: "2.4.1"}
	assert.Equal(t, "com.google.protobuf:protobuf-java:2.4.1", artifact.String())
}
