package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"bankbot/internal/models"
)

var queryLogHeader = []string{"query", "intent", "confidence", "date"}

// QueryLogService appends every chat query to a flat CSV consumed by the
// admin dashboard. Appends are best-effort: a failed write never fails the
// chat turn that triggered it.
type QueryLogService struct {
	mu   sync.Mutex
	path string
}

// NewQueryLogService creates a query log backed by the CSV file at path
func NewQueryLogService(path string) *QueryLogService {
	return &QueryLogService{path: path}
}

// Path returns the backing file location (used for CSV downloads).
func (s *QueryLogService) Path() string {
	return s.path
}

// Append writes one entry, creating the file with a header when missing.
func (s *QueryLogService) Append(entry models.QueryLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, statErr := os.Stat(s.path)
	needHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open query log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(queryLogHeader); err != nil {
			return fmt.Errorf("failed to write query log header: %w", err)
		}
	}
	record := []string{
		entry.Query,
		entry.Intent,
		strconv.FormatFloat(entry.Confidence, 'f', 2, 64),
		entry.Date.Format(time.RFC3339),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("failed to write query log entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush query log: %w", err)
	}
	return nil
}

// Entries reads the whole log in insertion order. A missing file is an
// empty log. Malformed rows are skipped, not rejected.
func (s *QueryLogService) Entries() ([]models.QueryLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open query log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse query log: %w", err)
	}

	entries := make([]models.QueryLogEntry, 0, len(records))
	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == "query" {
			continue
		}
		if len(record) < 2 {
			continue
		}
		entry := models.QueryLogEntry{Query: record[0], Intent: record[1]}
		if len(record) > 2 {
			entry.Confidence, _ = strconv.ParseFloat(record[2], 64)
		}
		if len(record) > 3 {
			entry.Date, _ = time.Parse(time.RFC3339, record[3])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CountByIntent tallies logged queries per intent.
func (s *QueryLogService) CountByIntent() (map[string]int, int, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, 0, err
	}
	counts := make(map[string]int)
	for i := range entries {
		counts[entries[i].Intent]++
	}
	return counts, len(entries), nil
}
