package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"bankbot/internal/models"
)

var csvHeader = []string{"text", "intent", "response", "entities"}

// Store owns the reference dataset the intent matcher searches. It is the
// single source of truth for corpus rows: an in-memory slice in insertion
// order (order matters for matcher tie-breaking) backed by a flat CSV file.
// Rows are append-only and deduplicated on the (text, intent, entities)
// triple.
type Store struct {
	mu      sync.RWMutex
	path    string
	rows    []models.CorpusRow
	version uint64
}

// NewStore creates a store backed by the CSV file at path. Call Load before
// first use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the backing file, replacing the in-memory rows. A missing file
// is an empty corpus, not an error. Cells are trimmed and missing cells
// normalized to empty strings; a UTF-8 BOM and a leading header row are
// tolerated.
func (s *Store) Load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.rows = nil
		s.version++
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse corpus file: %w", err)
	}

	rows := make([]models.CorpusRow, 0, len(records))
	for i, record := range records {
		if i == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\uFEFF")
			if isHeader(record) {
				continue
			}
		}
		rows = append(rows, models.CorpusRow{
			Text:     cell(record, 0),
			Intent:   cell(record, 1),
			Response: cell(record, 2),
			Entities: cell(record, 3),
		})
	}

	s.mu.Lock()
	s.rows = rows
	s.version++
	s.mu.Unlock()
	return nil
}

// Rows returns a snapshot of the corpus in insertion order.
func (s *Store) Rows() []models.CorpusRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]models.CorpusRow, len(s.rows))
	copy(rows, s.rows)
	return rows
}

// Len returns the number of rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Version increases whenever the row set changes. Callers use it to
// invalidate derived caches.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Append adds a new row to memory and to the backing file. Appending a row
// whose (text, intent, entities) triple already exists is an idempotent
// no-op reported as added=false. The in-memory corpus is updated even when
// the file write fails; persistence is best-effort and the returned error
// is for the caller to log.
func (s *Store) Append(text, intent, response, entities string) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if s.rows[i].Text == text && s.rows[i].Intent == intent && s.rows[i].Entities == entities {
			return false, nil
		}
	}

	err = s.writeRow(text, intent, response, entities)

	s.rows = append(s.rows, models.CorpusRow{
		Text:     text,
		Intent:   intent,
		Response: response,
		Entities: entities,
	})
	s.version++
	return true, err
}

// writeRow appends one CSV record, creating the file with a header first
// when it is missing or empty.
func (s *Store) writeRow(text, intent, response, entities string) error {
	info, statErr := os.Stat(s.path)
	needHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open corpus file for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write corpus header: %w", err)
		}
	}
	if err := w.Write([]string{text, intent, response, entities}); err != nil {
		return fmt.Errorf("failed to write corpus row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush corpus row: %w", err)
	}
	return nil
}

// Replace atomically rewrites the backing file with the given rows and
// reloads. Used by the admin dataset upload.
func (s *Store) Replace(rows []models.CorpusRow) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create corpus file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("failed to write corpus header: %w", err)
	}
	for i := range rows {
		record := []string{rows[i].Text, rows[i].Intent, rows[i].Response, rows[i].Entities}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("failed to write corpus row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush corpus file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close corpus file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace corpus file: %w", err)
	}

	return s.Load()
}

func isHeader(record []string) bool {
	if len(record) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(record[0]), "text") &&
		strings.EqualFold(strings.TrimSpace(record[1]), "intent")
}

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
