package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/platinummonkey/gearbox/pkg/protogen"
)

// Request describes one compiler invocation
type Request struct {
	// ProtocPath is the compiler executable name or path. A bare name is
	// resolved on the execution PATH.
	ProtocPath string

	// IncludePaths are passed as -I flags in order. Import resolution
	// searches them in order, so local source directories should come
	// before unpacked dependency directories.
	IncludePaths []string

	// Plugins are the output targets, in order
	Plugins []protogen.Plugin

	// ProtoFiles are the schema files to compile, in deterministic order
	ProtoFiles []string
}

// Output is the result of a successful compiler run
type Output struct {
	// GeneratedFiles is the union, over all plugins, of files under each
	// plugin's output directory matching that plugin's filter. It
	// represents all generated artifacts, not merely files changed by
	// this run.
	GeneratedFiles []string

	Duration time.Duration
}

// Invoker runs the schema compiler
type Invoker interface {
	Compile(ctx context.Context, req *Request) (*Output, error)
}

// BuildArgs constructs the protoc argument sequence: include paths, then
// per-plugin out/plugin-executable flag pairs in plugin order, then
// schema file paths.
func BuildArgs(req *Request) []string {
	args := make([]string, 0, len(req.IncludePaths)+2*len(req.Plugins)+len(req.ProtoFiles))

	for _, include := range req.IncludePaths {
		args = append(args, "-I"+include)
	}

	for _, plugin := range req.Plugins {
		args = append(args, fmt.Sprintf("--%s_out=%s", plugin.Name, plugin.OutputDir))
		if plugin.Executable != "" {
			args = append(args, fmt.Sprintf("--plugin=protoc-gen-%s=%s", plugin.Name, plugin.Executable))
		}
	}

	args = append(args, req.ProtoFiles...)
	return args
}

// ExecInvoker executes the compiler via os/exec
type ExecInvoker struct{}

// NewExecInvoker creates a subprocess-backed invoker
func NewExecInvoker() *ExecInvoker {
	return &ExecInvoker{}
}

// Compile validates the request, creates every plugin output directory,
// runs the compiler, and on success collects the generated files. The
// subprocess blocks the caller until it exits; no timeout is imposed
// beyond the supplied context.
func (i *ExecInvoker) Compile(ctx context.Context, req *Request) (*Output, error) {
	if err := i.validateRequest(req); err != nil {
		return nil, err
	}

	for _, plugin := range req.Plugins {
		if err := os.MkdirAll(plugin.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory for plugin %s: %w", plugin.Name, err)
		}
	}

	protocPath := req.ProtocPath
	if protocPath == "" {
		protocPath = "protoc"
	}

	startTime := time.Now()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, protocPath, BuildArgs(req)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCompilerStart, protocPath, err)
	}

	generated, err := collectGenerated(req.Plugins)
	if err != nil {
		return nil, err
	}

	return &Output{
		GeneratedFiles: generated,
		Duration:       time.Since(startTime),
	}, nil
}

func (i *ExecInvoker) validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if len(req.Plugins) == 0 {
		return ErrNoPlugins
	}
	for _, plugin := range req.Plugins {
		if err := plugin.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// collectGenerated walks each plugin's output directory and returns the
// union of filter-matched files, sorted and deduplicated
func collectGenerated(plugins []protogen.Plugin) ([]string, error) {
	seen := make(map[string]struct{})

	for _, plugin := range plugins {
		err := filepath.WalkDir(plugin.OutputDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if plugin.Filter.Matches(path) {
				seen[path] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to collect generated files for plugin %s: %w", plugin.Name, err)
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}
