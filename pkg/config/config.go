package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/gearbox/pkg/protogen"
)

// Config is the full configuration surface of the protoc driver
type Config struct {
	// ProtocPath is the compiler executable name or path
	ProtocPath string `yaml:"protoc_path"`

	// ProtobufVersion selects the default runtime library version. It
	// does not change which compiler binary runs.
	ProtobufVersion string `yaml:"protobuf_version"`

	// SourceDir is scanned recursively for .proto files
	SourceDir string `yaml:"source_dir"`

	// TargetDir is the build output root the derived directories default
	// under
	TargetDir string `yaml:"target_dir"`

	// ExternalIncludeDir receives .proto files unpacked from dependency
	// archives
	ExternalIncludeDir string `yaml:"external_include_dir"`

	// GeneratedDir is the default built-in target's output directory
	GeneratedDir string `yaml:"generated_dir"`

	// IncludePaths are passed to the compiler in order. Local sources
	// come first so they shadow vendored schemas.
	IncludePaths []string `yaml:"include_paths"`

	// Plugins are the configured output targets
	Plugins []protogen.Plugin `yaml:"plugins"`

	// DependencyArchives are glob patterns naming resolved library
	// archives to unpack .proto files from
	DependencyArchives []string `yaml:"dependency_archives"`

	// CacheDir holds the persisted generation records
	CacheDir string `yaml:"cache_dir"`

	// CacheNamespace keys this build's generation record
	CacheNamespace string `yaml:"cache_namespace"`

	// LibraryDependencies are extra library coordinates propagated to
	// the host build, in addition to the automatic default
	LibraryDependencies []protogen.Artifact `yaml:"library_dependencies"`
}

// baseConfig returns the primary defaults without the derived settings
// filled in, so later overrides still flow into the derivations
func baseConfig() *Config {
	return &Config{
		ProtocPath:      DefaultProtocPath,
		ProtobufVersion: DefaultProtobufVersion,
		SourceDir:       defaultSourceDir(),
		TargetDir:       defaultTargetDir(),
		CacheNamespace:  DefaultCacheNamespace,
	}
}

// DefaultConfig returns the configuration used when nothing is set: a
// single built-in java target writing into the compiled-output directory
func DefaultConfig() *Config {
	cfg := baseConfig()
	cfg.normalize()
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file,
// and environment overrides, then validates it. An empty path skips the
// file step; a named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := baseConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides configuration from GEARBOX_* environment variables
func (c *Config) applyEnv() {
	c.ProtocPath = getEnv("GEARBOX_PROTOC", c.ProtocPath)
	c.ProtobufVersion = getEnv("GEARBOX_PROTOBUF_VERSION", c.ProtobufVersion)
	c.SourceDir = getEnv("GEARBOX_SOURCE_DIR", c.SourceDir)
	c.TargetDir = getEnv("GEARBOX_TARGET_DIR", c.TargetDir)
	c.ExternalIncludeDir = getEnv("GEARBOX_EXTERNAL_INCLUDE_DIR", c.ExternalIncludeDir)
	c.GeneratedDir = getEnv("GEARBOX_GENERATED_DIR", c.GeneratedDir)
	c.CacheDir = getEnv("GEARBOX_CACHE_DIR", c.CacheDir)
	c.CacheNamespace = getEnv("GEARBOX_CACHE_NAMESPACE", c.CacheNamespace)

	if archives := getEnv("GEARBOX_DEPENDENCY_ARCHIVES", ""); archives != "" {
		c.DependencyArchives = splitList(archives)
	}
	if includes := getEnv("GEARBOX_INCLUDE_PATHS", ""); includes != "" {
		c.IncludePaths = splitList(includes)
	}
}

// normalize fills every derived setting that was left empty, in
// dependency order
func (c *Config) normalize() {
	if c.TargetDir == "" {
		c.TargetDir = defaultTargetDir()
	}
	if c.ExternalIncludeDir == "" {
		c.ExternalIncludeDir = filepath.Join(c.TargetDir, "protobuf_external")
	}
	if c.GeneratedDir == "" {
		c.GeneratedDir = filepath.Join(c.TargetDir, "compiled_protobuf")
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(c.TargetDir, "protobuf_cache")
	}
	if len(c.IncludePaths) == 0 {
		c.IncludePaths = []string{c.SourceDir, c.ExternalIncludeDir}
	}
	if len(c.Plugins) == 0 {
		c.Plugins = []protogen.Plugin{
			protogen.NewPlugin("java", c.GeneratedDir, protogen.ExtensionFilter(".java")),
		}
	}
}

// Validate checks the configuration for required fields
func (c *Config) Validate() error {
	if c.ProtocPath == "" {
		return fmt.Errorf("protoc path is required")
	}
	if c.SourceDir == "" {
		return fmt.Errorf("source directory is required")
	}
	if c.CacheNamespace == "" {
		return fmt.Errorf("cache namespace is required")
	}
	if len(c.Plugins) == 0 {
		return fmt.Errorf("at least one output plugin is required")
	}
	for _, plugin := range c.Plugins {
		if err := plugin.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultTargetActive reports whether a built-in compiler target (one
// without an external codegen executable) is configured. It decides
// whether the default runtime library dependency is added automatically.
func (c *Config) DefaultTargetActive() bool {
	for _, plugin := range c.Plugins {
		if plugin.Executable == "" {
			return true
		}
	}
	return false
}

// Dependencies returns the library coordinates the host build should
// carry: the explicit ones plus, when the built-in default target is
// active, the protobuf runtime at the configured version
func (c *Config) Dependencies() []protogen.Artifact {
	deps := make([]protogen.Artifact, 0, len(c.LibraryDependencies)+1)
	deps = append(deps, c.LibraryDependencies...)
	if c.DefaultTargetActive() {
		deps = append(deps, protogen.Artifact{
			GroupID:    DefaultLibraryGroupID,
			ArtifactID: DefaultLibraryArtifactID,
			Version:    c.ProtobufVersion,
		})
	}
	return deps
}

// ResolveArchives expands the dependency archive globs into concrete
// file paths, sorted and deduplicated
func (c *Config) ResolveArchives() ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range c.DependencyArchives {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid archive pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			seen[match] = struct{}{}
		}
	}

	archives := make([]string, 0, len(seen))
	for path := range seen {
		archives = append(archives, path)
	}
	sort.Strings(archives)
	return archives, nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma or path-list separated environment value
func splitList(value string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == os.PathListSeparator
	}) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
