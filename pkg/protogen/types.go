package protogen

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FilterKind identifies a generated-file matching strategy
type FilterKind string

const (
	// FilterByExtension matches files whose name carries a fixed extension
	FilterByExtension FilterKind = "extension"

	// FilterAny matches every regular file
	FilterAny FilterKind = "any"
)

// FileFilter selects which files under a plugin's output directory count
// as generated output
type FileFilter struct {
	Kind FilterKind `yaml:"kind" json:"kind"`
	Ext  string     `yaml:"ext,omitempty" json:"ext,omitempty"`
}

// ExtensionFilter returns a filter matching files with the given extension.
// The extension should include the leading dot, e.g. ".java".
func ExtensionFilter(ext string) FileFilter {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return FileFilter{Kind: FilterByExtension, Ext: ext}
}

// AnyFilter returns a filter matching every regular file
func AnyFilter() FileFilter {
	return FileFilter{Kind: FilterAny}
}

// IsZero reports whether the filter was left unconfigured
func (f FileFilter) IsZero() bool {
	return f.Kind == ""
}

// Matches reports whether the given file path matches the filter
func (f FileFilter) Matches(path string) bool {
	switch f.Kind {
	case FilterByExtension:
		return filepath.Ext(path) == f.Ext
	case FilterAny:
		return true
	default:
		return false
	}
}

// Validate checks the filter for a usable configuration
func (f FileFilter) Validate() error {
	switch f.Kind {
	case FilterByExtension:
		if f.Ext == "" {
			return fmt.Errorf("%w: extension filter requires an extension", ErrInvalidFilter)
		}
		return nil
	case FilterAny:
		return nil
	case "":
		return ErrMissingFilter
	default:
		return fmt.Errorf("%w: unknown filter kind %q", ErrInvalidFilter, f.Kind)
	}
}

// Plugin describes a named protoc output target. For a plugin named "java"
// the compiler receives --java_out=<OutputDir>; when Executable is set it
// additionally receives --plugin=protoc-gen-java=<Executable>.
type Plugin struct {
	Name       string     `yaml:"name" json:"name"`
	OutputDir  string     `yaml:"output_dir" json:"output_dir"`
	Executable string     `yaml:"executable,omitempty" json:"executable,omitempty"`
	Filter     FileFilter `yaml:"filter" json:"filter"`
}

// NewPlugin constructs a built-in output target. The filter is mandatory.
func NewPlugin(name, outputDir string, filter FileFilter) Plugin {
	return Plugin{Name: name, OutputDir: outputDir, Filter: filter}
}

// NewExternalPlugin constructs an output target backed by an external
// protoc-gen-<name> executable
func NewExternalPlugin(name, outputDir, executable string, filter FileFilter) Plugin {
	return Plugin{Name: name, OutputDir: outputDir, Executable: executable, Filter: filter}
}

// Validate checks the plugin descriptor for required fields
func (p Plugin) Validate() error {
	if p.Name == "" {
		return ErrMissingPluginName
	}
	if p.OutputDir == "" {
		return fmt.Errorf("%w: plugin %s", ErrMissingOutputDir, p.Name)
	}
	if err := p.Filter.Validate(); err != nil {
		return fmt.Errorf("plugin %s: %w", p.Name, err)
	}
	return nil
}

// Artifact is a Maven-style library coordinate. The default protobuf
// runtime library is expressed this way so a host build can resolve it.
type Artifact struct {
	GroupID    string `yaml:"group_id" json:"group_id"`
	ArtifactID string `yaml:"artifact_id" json:"artifact_id"`
	Version    string `yaml:"version" json:"version"`
}

// String returns the coordinate in group:artifact:version form
func (a Artifact) String() string {
	return fmt.Sprintf("%s:%s:%s", a.GroupID, a.ArtifactID, a.Version)
}

// Result is the outcome of one generation run
type Result struct {
	RunID          string
	GeneratedFiles []string
	CacheHit       bool
	UnpackedFiles  []string
	Duration       time.Duration
}
