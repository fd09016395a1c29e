package memory

import (
	"context"
	"sync"

	"prodsupply/internal/core/security"
	"prodsupply/internal/core/warning"
)

var _ warning.Store = (*WarningStore)(nil)

// WarningStore keeps acknowledged warning keys per user in memory.
type WarningStore struct {
	mu   sync.RWMutex
	acks map[string]bool
}

// NewWarningStore creates an in-memory warning store.
func NewWarningStore() *WarningStore {
	return &WarningStore{acks: make(map[string]bool)}
}

func (s *WarningStore) ackKey(ctx context.Context, key string) string {
	return security.GetUserID(ctx) + "|" + key
}

// Check reports whether the warning must still be raised.
func (s *WarningStore) Check(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.acks[s.ackKey(ctx, key)], nil
}

// Acknowledge records that the user accepted the warning.
func (s *WarningStore) Acknowledge(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acks[s.ackKey(ctx, key)] = true
	return nil
}
