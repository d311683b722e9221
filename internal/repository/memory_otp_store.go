package repository

import (
	"context"
	"sync"

	"github.com/rbyte/rbyte-api/internal/models"
)

// MemoryOTPStore is a process-local OTPStore. Entries are never swept; an
// expired entry lives until the next access for its key.
type MemoryOTPStore struct {
	mu    sync.RWMutex
	codes map[string]models.OTPData
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		codes: make(map[string]models.OTPData),
	}
}

func (s *MemoryOTPStore) Save(_ context.Context, phoneKey string, data models.OTPData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[phoneKey] = data
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, phoneKey string) (*models.OTPData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.codes[phoneKey]
	if !ok {
		return nil, ErrNotFound
	}
	return &data, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, phoneKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, phoneKey)
	return nil
}

func (s *MemoryOTPStore) Size(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.codes), nil
}
