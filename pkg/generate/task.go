package generate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/gearbox/pkg/cache"
	"github.com/platinummonkey/gearbox/pkg/compiler"
	"github.com/platinummonkey/gearbox/pkg/config"
	"github.com/platinummonkey/gearbox/pkg/observability"
	"github.com/platinummonkey/gearbox/pkg/protogen"
	"github.com/platinummonkey/gearbox/pkg/unpack"
)

// Task runs the cached generation step. Construct with NewTask; the zero
// value is not usable.
type Task struct {
	config   *config.Config
	store    *cache.Store
	unpacker *unpack.Unpacker
	invoker  compiler.Invoker
	metrics  *observability.Metrics
	log      *logrus.Logger
}

// Option configures a Task
type Option func(*Task)

// WithMetrics attaches Prometheus metrics to the task
func WithMetrics(m *observability.Metrics) Option {
	return func(t *Task) { t.metrics = m }
}

// WithLogger overrides the task logger
func WithLogger(log *logrus.Logger) Option {
	return func(t *Task) { t.log = log }
}

// NewTask creates a cached generation task
func NewTask(cfg *config.Config, store *cache.Store, invoker compiler.Invoker, opts ...Option) *Task {
	t := &Task{
		config:  cfg,
		store:   store,
		invoker: invoker,
		log:     logrus.New(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.unpacker = unpack.NewUnpacker(t.log)
	return t
}

// Run executes one generation pass. Execution is synchronous: each step
// completes before the next starts, and the compiler subprocess blocks
// until it exits. A failed run returns an error and writes no cache
// record, leaving any prior record and its outputs on disk untouched.
func (t *Task) Run(ctx context.Context) (*protogen.Result, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	log := t.log.WithField("run_id", runID)

	protoFiles, err := protogen.ScanProtoFiles(t.config.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan schema files: %w", err)
	}
	if len(protoFiles) == 0 {
		log.WithField("source_dir", t.config.SourceDir).Info("no schema files found, nothing to generate")
		return &protogen.Result{RunID: runID, Duration: time.Since(startTime)}, nil
	}

	archives, err := t.config.ResolveArchives()
	if err != nil {
		return nil, err
	}
	unpacked, err := t.unpacker.Extract(archives, t.config.ExternalIncludeDir)
	if err != nil {
		return nil, err
	}
	if t.metrics != nil {
		t.metrics.UnpackedFilesTotal.Add(float64(len(unpacked.Files)))
	}

	stamps, err := cache.Stamp(protoFiles)
	if err != nil {
		return nil, err
	}

	if rec, err := t.store.Get(t.config.CacheNamespace); err == nil && cache.Fresh(rec, stamps) {
		log.WithField("files", len(rec.Outputs)).Debug("inputs unchanged, skipping compiler")
		t.observe("cached", time.Since(startTime), len(rec.Outputs))
		return &protogen.Result{
			RunID:          runID,
			GeneratedFiles: rec.Outputs,
			CacheHit:       true,
			UnpackedFiles:  unpacked.Files,
			Duration:       time.Since(startTime),
		}, nil
	}

	out, err := t.compile(ctx, protoFiles)
	if err != nil {
		t.observeFailure(err)
		return nil, err
	}

	rec := &cache.Record{
		Namespace:   t.config.CacheNamespace,
		Fingerprint: cache.Fingerprint(stamps),
		Inputs:      stamps,
		Outputs:     out.GeneratedFiles,
		CreatedAt:   time.Now(),
	}
	if err := t.store.Put(rec); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"schemas":   len(protoFiles),
		"generated": len(out.GeneratedFiles),
	}).Info("schema compilation complete")
	t.observe("success", time.Since(startTime), len(out.GeneratedFiles))

	return &protogen.Result{
		RunID:          runID,
		GeneratedFiles: out.GeneratedFiles,
		UnpackedFiles:  unpacked.Files,
		Duration:       time.Since(startTime),
	}, nil
}

// compile invokes the schema compiler with absolutized paths so the
// command line is independent of the working directory
func (t *Task) compile(ctx context.Context, protoFiles []string) (*compiler.Output, error) {
	includes, err := absAll(t.config.IncludePaths)
	if err != nil {
		return nil, err
	}
	files, err := absAll(protoFiles)
	if err != nil {
		return nil, err
	}

	plugins := make([]protogen.Plugin, len(t.config.Plugins))
	for i, plugin := range t.config.Plugins {
		abs, err := filepath.Abs(plugin.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output directory: %w", err)
		}
		plugin.OutputDir = abs
		if plugin.Executable != "" {
			if abs, err := filepath.Abs(plugin.Executable); err == nil {
				plugin.Executable = abs
			}
		}
		plugins[i] = plugin
	}

	return t.invoker.Compile(ctx, &compiler.Request{
		ProtocPath:   t.config.ProtocPath,
		IncludePaths: includes,
		Plugins:      plugins,
		ProtoFiles:   files,
	})
}

func (t *Task) observe(result string, d time.Duration, generated int) {
	if t.metrics == nil {
		return
	}
	t.metrics.GenerationsTotal.WithLabelValues(result).Inc()
	t.metrics.GenerationDuration.Observe(d.Seconds())
	t.metrics.GeneratedFiles.Set(float64(generated))
	if result == "cached" {
		t.metrics.CacheHitsTotal.Inc()
	} else {
		t.metrics.CacheMissesTotal.Inc()
	}
}

func (t *Task) observeFailure(err error) {
	if t.metrics == nil {
		return
	}
	t.metrics.GenerationsTotal.WithLabelValues("failure").Inc()
	var exitErr *compiler.ExitError
	if errors.As(err, &exitErr) {
		t.metrics.CompilerExitsTotal.WithLabelValues(strconv.Itoa(exitErr.Code)).Inc()
	}
}

func absAll(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
		}
		out[i] = abs
	}
	return out, nil
}
