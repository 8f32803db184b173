// Package generate orchestrates one cached generation run: discover
// schema files, unpack dependency archives into the external include
// directory, compare the input fingerprint against the persisted record,
// and either return the recorded output set or invoke the schema
// compiler and persist a fresh record.
//
// Only direct schema-file changes under the source directory trigger
// recompilation. A dependency schema changing inside an archive does not
// refresh the fingerprint; that staleness gap is inherited by design.
package generate
