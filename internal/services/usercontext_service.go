package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"bankbot/internal/models"
)

// UserContextService persists per-user chat state (last known entities and
// the conversation log) in a single JSON file keyed by user id. Semantics
// follow the flat-file contract: load everything at startup, rewrite the
// whole file on every save.
type UserContextService struct {
	mu   sync.Mutex
	path string
	data map[string]*models.UserContext
}

// NewUserContextService creates a context store backed by the JSON file at path
func NewUserContextService(path string) *UserContextService {
	return &UserContextService{
		path: path,
		data: make(map[string]*models.UserContext),
	}
}

// Load reads the backing file. A missing file is an empty store.
func (s *UserContextService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = make(map[string]*models.UserContext)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read user data file: %w", err)
	}

	data := make(map[string]*models.UserContext)
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse user data file: %w", err)
	}
	s.data = data
	return nil
}

// Get returns a copy of the context for userID, if one exists.
func (s *UserContextService) Get(userID string) (models.UserContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uc, ok := s.data[userID]
	if !ok {
		return models.UserContext{}, false
	}
	out := *uc
	out.Conversations = append([]models.ConversationTurn(nil), uc.Conversations...)
	return out, true
}

// History returns the ordered conversation log for userID.
func (s *UserContextService) History(userID string) []models.ConversationTurn {
	uc, ok := s.Get(userID)
	if !ok {
		return nil
	}
	return uc.Conversations
}

// Update applies fn to the user's context and saves the whole store. The
// context is created from the account snapshot on first interaction; the
// snapshot never overwrites values learned in later turns.
func (s *UserContextService) Update(userID string, snapshot models.AccountSnapshot, fn func(*models.UserContext)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uc, ok := s.data[userID]
	if !ok {
		uc = &models.UserContext{
			AccountNumber: snapshot.AccountNumber,
			Balance:       snapshot.Balance,
			Conversations: []models.ConversationTurn{},
		}
		s.data[userID] = uc
	}

	fn(uc)
	return s.saveLocked()
}

// Save rewrites the backing file from the in-memory store.
func (s *UserContextService) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// Count returns the number of tracked users.
func (s *UserContextService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *UserContextService) saveLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user data: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write user data file: %w", err)
	}
	return nil
}
