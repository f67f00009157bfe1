package memory

import (
	"context"
	"strings"
	"sync"

	"orcamento/internal/core"
	"orcamento/internal/store"
)

// Store keeps records and accounts in process memory. Data is lost on restart.
type Store struct {
	mu       sync.Mutex
	records  map[string]core.UserData
	accounts map[string]store.Account
}

func New() *Store {
	return &Store{
		records:  make(map[string]core.UserData),
		accounts: make(map[string]store.Account),
	}
}

// Load returns a copy of the user's record.
func (s *Store) Load(_ context.Context, userID string) (core.UserData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.records[userID]
	if !ok {
		return core.UserData{}, store.ErrNotFound
	}
	return u.Clone(), nil
}

// Save overwrites the user's record.
func (s *Store) Save(_ context.Context, userID string, data core.UserData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = data.Clone()
	return nil
}

func (s *Store) CreateAccount(_ context.Context, a store.Account) error {
	key := strings.ToLower(a.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[key]; exists {
		return store.ErrEmailTaken
	}
	s.accounts[key] = a
	return nil
}

func (s *Store) AccountByEmail(_ context.Context, email string) (store.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return store.Account{}, store.ErrAccountNotFound
	}
	return a, nil
}
