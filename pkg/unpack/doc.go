// Package unpack extracts .proto schema files bundled inside resolved
// dependency archives (jars, zips, tarballs) into a scratch include
// directory, so they can serve as protoc import targets without the
// consuming project vendoring them by hand.
//
// The extraction directory's own contents act as an implicit cache:
// re-extraction silently overwrites files at the same path. An archive
// containing zero .proto entries is not an error, only a debug-level
// log note.
package unpack
