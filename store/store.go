package store

import "time"

// Record is a single time-stamped numeric history entry.
//
// The store only inspects ID (for matching and replacement); all other
// fields pass through unmodified.
type Record struct {
	// ID uniquely identifies the record within one user's sequence.
	ID string `json:"id"`

	// OwnerID is the user the record belongs to.
	OwnerID string `json:"owner_id"`

	// Timestamp is the instant the record describes.
	Timestamp string `json:"timestamp"`

	// Value is the numeric payload.
	Value float64 `json:"value"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Entry is one user's cached snapshot.
type Entry struct {
	// Records is the ordered record sequence. Order is insertion/append
	// order and is preserved by every operation.
	Records []Record

	// CachedAt is when the snapshot was last fully replaced. Incremental
	// add/update/remove operations do not touch it.
	CachedAt time.Time
}

// Store is the interface for the per-user history cache.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: no operation errors or panics; absence is signaled via
//   a false ok/applied result, never via an error.
// - Ownership: returned slices are copies; callers may modify them.
type Store interface {
	// SetHistories replaces the entry for userID with records and a fresh
	// CachedAt. The replace is unconditional, including when records is
	// empty; an existing-but-empty entry remains distinct from absence.
	SetHistories(userID string, records []Record)

	// GetHistories returns the record sequence for userID.
	// Returns (nil, false) when the user was never cached.
	GetHistories(userID string) ([]Record, bool)

	// GetEntry returns the full cache entry for userID.
	// Returns (Entry{}, false) when the user was never cached.
	GetEntry(userID string) (Entry, bool)

	// AddHistory appends rec to the user's sequence, creating the entry
	// if none exists. CachedAt is only set on creation.
	AddHistory(userID string, rec Record)

	// UpdateHistory replaces, in place and preserving position, the first
	// record whose ID matches id. Returns false without creating state
	// when the user has no entry or no record matches.
	UpdateHistory(userID, id string, rec Record) bool

	// RemoveHistory removes the record whose ID matches id, preserving
	// the relative order of the remainder. Returns false without creating
	// state when the user has no entry or no record matches.
	RemoveHistory(userID, id string) bool

	// Clear empties the entire mapping. Afterwards every user reads as
	// never cached.
	Clear()
}
