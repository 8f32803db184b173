package generate

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/gearbox/pkg/cache"
	"github.com/platinummonkey/gearbox/pkg/compiler"
	"github.com/platinummonkey/gearbox/pkg/config"
	"github.com/platinummonkey/gearbox/pkg/protogen"
)

// stubInvoker stands in for the protoc subprocess. It writes one
// generated file per plugin so cache freshness checks see real outputs.
type stubInvoker struct {
	calls    int
	lastReq  *compiler.Request
	failWith error
}

func (s *stubInvoker) Compile(_ context.Context, req *compiler.Request) (*compiler.Output, error) {
	s.calls++
	s.lastReq = req
	if s.failWith != nil {
		return nil, s.failWith
	}

	var generated []string
	for _, plugin := range req.Plugins {
		if err := os.MkdirAll(plugin.OutputDir, 0755); err != nil {
			return nil, err
		}
		path := filepath.Join(plugin.OutputDir, "Generated.java")
		if err := os.WriteFile(path, []byte("class Generated {}"), 0644); err != nil {
			return nil, err
		}
		generated = append(generated, path)
	}
	return &compiler.Output{GeneratedFiles: generated}, nil
}

// testConfig builds a configuration rooted entirely under a temp dir
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.SourceDir = filepath.Join(dir, "protos")
	cfg.TargetDir = filepath.Join(dir, "target")
	cfg.ExternalIncludeDir = filepath.Join(cfg.TargetDir, "protobuf_external")
	cfg.GeneratedDir = filepath.Join(cfg.TargetDir, "compiled_protobuf")
	cfg.CacheDir = filepath.Join(cfg.TargetDir, "protobuf_cache")
	cfg.IncludePaths = []string{cfg.SourceDir, cfg.ExternalIncludeDir}
	cfg.Plugins = []protogen.Plugin{
		protogen.NewPlugin("java", cfg.GeneratedDir, protogen.ExtensionFilter(".java")),
	}

	require.NoError(t, os.MkdirAll(cfg.SourceDir, 0755))
	return cfg
}

func writeProto(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	path := filepath.Join(cfg.SourceDir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("syntax = \"proto2\";"), 0644))
	return path
}

func newTestTask(t *testing.T, cfg *config.Config, invoker compiler.Invoker) (*Task, *cache.Store) {
	t.Helper()
	store, err := cache.NewStore(cfg.CacheDir)
	require.NoError(t, err)
	return NewTask(cfg, store, invoker), store
}

func TestTaskRun(t *testing.T) {
	t.Run("compiles and records on first run", func(t *testing.T) {
		cfg := testConfig(t)
		writeProto(t, cfg, "a.proto")
		invoker := &stubInvoker{}
		task, store := newTestTask(t, cfg, invoker)

		result, err := task.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, invoker.calls)
		assert.False(t, result.CacheHit)
		require.Len(t, result.GeneratedFiles, 1)
		assert.NotEmpty(t, result.RunID)

		rec, err := store.Get(cfg.CacheNamespace)
		require.NoError(t, err)
		assert.Equal(t, result.GeneratedFiles, rec.Outputs)
	})

	t.Run("second run with unchanged inputs skips the compiler", func(t *testing.T) {
		cfg := testConfig(t)
		writeProto(t, cfg, "a.proto")
		invoker := &stubInvoker{}
		task, _ := newTestTask(t, cfg, invoker)

		first, err := task.Run(context.Background())
		require.NoError(t, err)
		second, err := task.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, invoker.calls)
		assert.True(t, second.CacheHit)
		assert.Equal(t, first.GeneratedFiles, second.GeneratedFiles)
	})

	t.Run("touching a schema file triggers recompilation", func(t *testing.T) {
		cfg := testConfig(t)
		proto := writeProto(t, cfg, "a.proto")
		invoker := &stubInvoker{}
		task, _ := newTestTask(t, cfg, invoker)

		_, err := task.Run(context.Background())
		require.NoError(t, err)

		touched := time.Now().Add(3 * time.Second)
		require.NoError(t, os.Chtimes(proto, touched, touched))

		result, err := task.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, invoker.calls)
		assert.False(t, result.CacheHit)
	})

	t.Run("adding a schema file triggers recompilation", func(t *testing.T) {
		cfg := testConfig(t)
		writeProto(t, cfg, "a.proto")
		invoker := &stubInvoker{}
		task, _ := newTestTask(t, cfg, invoker)

		_, err := task.Run(context.Background())
		require.NoError(t, err)

		writeProto(t, cfg, "b.proto")
		_, err = task.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, invoker.calls)
	})

	t.Run("deleted outputs force recompilation", func(t *testing.T) {
		cfg := testConfig(t)
		writeProto(t, cfg, "a.proto")
		invoker := &stubInvoker{}
		task, _ := newTestTask(t, cfg, invoker)

		first, err := task.Run(context.Background())
		require.NoError(t, err)
		require.NoError(t, os.Remove(first.GeneratedFiles[0]))

		_, err = task.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, invoker.calls)
	})

	t.Run("compiler exit failure leaves no cache record", func(t *testing.T) {
		cfg := testConfig(t)
		writeProto(t, cfg, "a.proto")
		invoker := &stubInvoker{failWith: &compiler.ExitError{Code: 1}}
		task, store := newTestTask(t, cfg, invoker)

		_, err := task.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1")

		_, err = store.Get(cfg.CacheNamespace)
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("failure preserves the previous record", func(t *testing.T) {
		cfg := testConfig(t)
		proto := writeProto(t, cfg, "a.proto")
		invoker := &stubInvoker{}
		task, store := newTestTask(t, cfg, invoker)

		first, err := task.Run(context.Background())
		require.NoError(t, err)

		touched := time.Now().Add(3 * time.Second)
		require.NoError(t, os.Chtimes(proto, touched, touched))
		invoker.failWith = &compiler.ExitError{Code: 2}

		_, err = task.Run(context.Background())
		require.Error(t, err)

		rec, err := store.Get(cfg.CacheNamespace)
		require.NoError(t, err)
		assert.Equal(t, first.GeneratedFiles, rec.Outputs)
	})

	t.Run("no schema files means nothing to do", func(t *testing.T) {
		cfg := testConfig(t)
		invoker := &stubInvoker{}
		task, _ := newTestTask(t, cfg, invoker)

		result, err := task.Run(context.Background())
		require.NoError(t, err)
		assert.Zero(t, invoker.calls)
		assert.Empty(t, result.GeneratedFiles)
	})

	t.Run("passes absolute paths with local sources first", func(t *testing.T) {
		cfg := testConfig(t)
		writeProto(t, cfg, "a.proto")
		invoker := &stubInvoker{}
		task, _ := newTestTask(t, cfg, invoker)

		_, err := task.Run(context.Background())
		require.NoError(t, err)

		req := invoker.lastReq
		require.NotNil(t, req)
		require.Len(t, req.IncludePaths, 2)
		assert.True(t, filepath.IsAbs(req.IncludePaths[0]))
		assert.Equal(t, mustAbs(t, cfg.SourceDir), req.IncludePaths[0])
		assert.Equal(t, mustAbs(t, cfg.ExternalIncludeDir), req.IncludePaths[1])
		require.Len(t, req.ProtoFiles, 1)
		assert.True(t, filepath.IsAbs(req.ProtoFiles[0]))
		assert.True(t, filepath.IsAbs(req.Plugins[0].OutputDir))
	})

	t.Run("unpacks dependency archives before compiling", func(t *testing.T) {
		cfg := testConfig(t)
		writeProto(t, cfg, "a.proto")

		archive := filepath.Join(filepath.Dir(cfg.SourceDir), "dep.jar")
		writeJar(t, archive, map[string]string{
			"vendor/common.proto": "syntax = \"proto2\";",
			"META-INF/MANIFEST":   "x",
		})
		cfg.DependencyArchives = []string{archive}

		invoker := &stubInvoker{}
		task, _ := newTestTask(t, cfg, invoker)

		result, err := task.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, result.UnpackedFiles, 1)
		assert.FileExists(t, filepath.Join(cfg.ExternalIncludeDir, "vendor", "common.proto"))
	})
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}

func writeJar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}
