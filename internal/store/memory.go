package store

import (
	"context"
	"sync"
)

// MemoryWorkspaceStore keeps the blob in process memory. Nothing survives a
// restart.
type MemoryWorkspaceStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryWorkspaceStore() *MemoryWorkspaceStore {
	return &MemoryWorkspaceStore{}
}

func (s *MemoryWorkspaceStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), s.blob...), nil
}

func (s *MemoryWorkspaceStore) Save(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = make([]byte, len(blob))
	copy(s.blob, blob)
	return nil
}

func (s *MemoryWorkspaceStore) Ping(ctx context.Context) error {
	return nil
}
