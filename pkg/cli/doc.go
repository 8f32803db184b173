// Package cli implements the gearbox command line interface: generate,
// unpack, validate, watch, and clean subcommands over the protoc driver.
package cli
