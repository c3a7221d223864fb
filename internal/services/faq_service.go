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

// FAQService manages the admin-curated FAQ list, stored as a JSON array.
type FAQService struct {
	mu   sync.Mutex
	path string
	faqs []models.FAQ
}

// NewFAQService creates an FAQ store backed by the JSON file at path
func NewFAQService(path string) *FAQService {
	return &FAQService{path: path}
}

// Load reads the backing file. A missing file is an empty list.
func (s *FAQService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.faqs = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read FAQ file: %w", err)
	}

	var faqs []models.FAQ
	if err := json.Unmarshal(raw, &faqs); err != nil {
		return fmt.Errorf("failed to parse FAQ file: %w", err)
	}
	s.faqs = faqs
	return nil
}

// List returns the FAQs in insertion order.
func (s *FAQService) List() []models.FAQ {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FAQ(nil), s.faqs...)
}

// Add appends a question/answer pair and rewrites the backing file.
func (s *FAQService) Add(question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faqs = append(s.faqs, models.FAQ{Question: question, Answer: answer})

	raw, err := json.MarshalIndent(s.faqs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode FAQs: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write FAQ file: %w", err)
	}
	return nil
}
