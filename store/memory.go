package store

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
//
// It is an explicitly constructed instance rather than process-global
// state, so independent sessions and tests never share entries
// implicitly.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	records  []Record
	cachedAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
	}
}

// SetHistories replaces the entry for userID with records and refreshes
// CachedAt. Prior records are discarded, including when records is empty.
func (s *MemoryStore) SetHistories(userID string, records []Record) {
	copied := copyRecords(records)

	s.mu.Lock()
	s.entries[userID] = &memoryEntry{
		records:  copied,
		cachedAt: time.Now(),
	}
	s.mu.Unlock()
}

// GetHistories returns the record sequence for userID, or (nil, false)
// when the user was never cached. An existing-but-empty sequence returns
// (non-nil empty slice, true).
func (s *MemoryStore) GetHistories(userID string) ([]Record, bool) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return copyRecords(entry.records), true
}

// GetEntry returns the full entry for userID, or (Entry{}, false) when
// the user was never cached.
func (s *MemoryStore) GetEntry(userID string) (Entry, bool) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok {
		return Entry{}, false
	}
	return Entry{
		Records:  copyRecords(entry.records),
		CachedAt: entry.cachedAt,
	}, true
}

// AddHistory appends rec to the user's sequence. If no entry exists one
// is created holding only rec; CachedAt is set on creation and left
// untouched on append.
func (s *MemoryStore) AddHistory(userID string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		s.entries[userID] = &memoryEntry{
			records:  []Record{rec},
			cachedAt: time.Now(),
		}
		return
	}
	entry.records = append(entry.records, rec)
}

// UpdateHistory replaces the first record whose ID matches id with rec,
// preserving position. Records that do not match are left unchanged and
// CachedAt is not modified. Returns false when the user has no entry or
// no record matches.
func (s *MemoryStore) UpdateHistory(userID, id string, rec Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return false
	}
	for i := range entry.records {
		if entry.records[i].ID == id {
			entry.records[i] = rec
			return true
		}
	}
	return false
}

// RemoveHistory removes the record whose ID matches id, preserving the
// relative order of the remainder. CachedAt is not modified. Returns
// false when the user has no entry or no record matches.
func (s *MemoryStore) RemoveHistory(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return false
	}
	for i := range entry.records {
		if entry.records[i].ID == id {
			entry.records = append(entry.records[:i], entry.records[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the entire mapping. Every previously-known user reads as
// never cached afterwards.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*memoryEntry)
	s.mu.Unlock()
}

func copyRecords(records []Record) []Record {
	copied := make([]Record, len(records))
	copy(copied, records)
	return copied
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
