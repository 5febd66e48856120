package recognition

import "sync"

// EncodingStore memoizes decoded reference encodings per employee so the
// 1024-byte blob is not re-parsed on every recognition request. It is the
// only process-wide mutable state in the pipeline; it is injected, never
// a package singleton.
//
// Invalidate must be called whenever an employee's stored encoding is
// regenerated. A stale cached vector after re-enrollment is a correctness
// bug, not acceptable staleness.
type EncodingStore struct {
	mu      sync.RWMutex
	vectors map[uint][]float64
}

func NewEncodingStore() *EncodingStore {
	return &EncodingStore{vectors: make(map[uint][]float64)}
}

// Get returns the cached vector for employeeID, decoding and caching raw
// on a miss. Concurrent readers never observe a half-written vector: the
// decoded slice is published under the write lock and never mutated after.
func (s *EncodingStore) Get(employeeID uint, raw []byte) ([]float64, error) {
	s.mu.RLock()
	vec, ok := s.vectors[employeeID]
	s.mu.RUnlock()
	if ok {
		return vec, nil
	}

	decoded, err := UnmarshalEncoding(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have decoded the same blob in the meantime.
	if vec, ok := s.vectors[employeeID]; ok {
		return vec, nil
	}
	s.vectors[employeeID] = decoded
	return decoded, nil
}

// Invalidate evicts the cached vector for employeeID.
func (s *EncodingStore) Invalidate(employeeID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vectors, employeeID)
}

// Len reports how many vectors are currently cached.
func (s *EncodingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}
