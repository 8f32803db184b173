// Package watch re-runs the cached generation task whenever .proto files
// change under the source directory. Changes are debounced: a burst of
// writes triggers one run after a quiet period rather than one run per
// event.
package watch
