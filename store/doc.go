// Package store provides the in-memory, per-user history cache.
//
// It provides a Store interface with a memory implementation keyed by
// user identifier. Each entry holds an ordered record sequence plus the
// instant of the last full replace, so callers can distinguish a stale
// snapshot from a fresh one. Absence of an entry ("never cached") is
// distinct from an entry holding an empty sequence.
package store
