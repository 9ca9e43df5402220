package journal

import "sync"

// MemoryStore keeps journal entries in memory.
// It is suitable for tests and short-lived processes.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	closed  bool
}

// NewMemoryStore creates an empty in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Entry)}
}

// Append implements Store.
func (s *MemoryStore) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	entry.Seq = int64(len(s.entries[entry.PipelineID])) + 1
	s.entries[entry.PipelineID] = append(s.entries[entry.PipelineID], entry)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(pipelineID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	entries, ok := s.entries[pipelineID]
	if !ok || len(entries) == 0 {
		return nil, ErrNoEntries
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(pipelineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	delete(s.entries, pipelineID)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
