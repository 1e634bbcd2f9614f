package credential

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryRepository builds an in-memory credential store for testing
// and for running without a database in development.
func NewMemoryRepository() Repository {
	return &memoryRepository{creds: make(map[string]Credential)}
}

func (r *memoryRepository) Insert(_ context.Context, cred Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.creds[cred.Phone]; exists {
		return ErrPhoneTaken
	}
	r.creds[cred.Phone] = cred
	return nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[phone]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}
