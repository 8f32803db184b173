// Package config holds the explicit build configuration for the protoc
// driver. The lazy, cross-referencing setting graph of a host build
// framework is replaced with a single struct built once: defaults, then
// an optional YAML file, then GEARBOX_* environment overrides, then
// validation, in that order.
package config
