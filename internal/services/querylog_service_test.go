package services

import (
	"path/filepath"
	"testing"
	"time"

	"bankbot/internal/models"
)

func TestQueryLogAppendAndRead(t *testing.T) {
	svc := NewQueryLogService(filepath.Join(t.TempDir(), "queries.csv"))

	when := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	entries := []models.QueryLogEntry{
		{Query: "what is my balance", Intent: "check_balance", Confidence: 1.0, Date: when},
		{Query: "send, money", Intent: "transfer_money", Confidence: 0.67, Date: when},
	}
	for _, e := range entries {
		if err := svc.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	// commas in queries must round-trip through the CSV quoting
	if got[1].Query != "send, money" {
		t.Errorf("Query did not round-trip: %q", got[1].Query)
	}
	if got[1].Confidence != 0.67 {
		t.Errorf("Expected confidence 0.67, got %v", got[1].Confidence)
	}
	if !got[0].Date.Equal(when) {
		t.Errorf("Date did not round-trip: %v", got[0].Date)
	}
}

func TestQueryLogMissingFile(t *testing.T) {
	svc := NewQueryLogService(filepath.Join(t.TempDir(), "queries.csv"))
	got, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty log, got %d entries", len(got))
	}
}

func TestQueryLogCountByIntent(t *testing.T) {
	svc := NewQueryLogService(filepath.Join(t.TempDir(), "queries.csv"))
	for _, intent := range []string{"greet", "greet", "check_balance"} {
		if err := svc.Append(models.QueryLogEntry{Query: "q", Intent: intent, Date: time.Now()}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	counts, total, err := svc.CountByIntent()
	if err != nil {
		t.Fatalf("CountByIntent failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected 3 total, got %d", total)
	}
	if counts["greet"] != 2 || counts["check_balance"] != 1 {
		t.Errorf("Unexpected counts %v", counts)
	}
}
