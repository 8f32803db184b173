// Package protogen defines the core data model for driving the protoc
// schema compiler: output plugin descriptors, generated-file filters,
// library artifact coordinates, and schema file discovery.
//
// Plugins are immutable configuration values constructed once per build
// configuration. Each plugin names a protoc output target (for example
// "java" or "grpc"), the directory its generated files land in, an
// optional external codegen executable, and a filter that decides which
// files under the output directory count as generated output.
//
// Filters are a tagged strategy rather than an arbitrary function so
// plugin configurations can round-trip through YAML and compare cleanly
// in tests. Every plugin must carry an explicit filter; there is no
// silent default.
package protogen
