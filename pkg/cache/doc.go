// Package cache persists per-namespace generation records mapping an
// observed input file fingerprint to the output file set a previous run
// produced. It trades a cheap filesystem metadata scan for an expensive
// compiler subprocess invocation.
//
// SORTED ORDER REQUIREMENT: fingerprints are computed over input paths
// in sorted order so that identical input sets always produce identical
// fingerprints. Changing the fingerprint algorithm invalidates every
// existing record.
//
// Records live as JSON files under the store directory with an expirable
// LRU memory tier in front. The store assumes a single writer: concurrent
// builds against the same cache directory are unsupported and unguarded.
package cache
