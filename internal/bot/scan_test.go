package bot

import (
	"reflect"
	"testing"
)

func TestDigitRuns(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"balance of 123456", []string{"123456"}},
		{"send 500 to 123456", []string{"500", "123456"}},
		{"12-34", []string{"12", "34"}},
		{"no digits here", nil},
		{"", nil},
		{"007", []string{"007"}},
	}
	for _, tc := range cases {
		if got := DigitRuns(tc.input); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("DigitRuns(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestFirstDigitRun(t *testing.T) {
	if got := FirstDigitRun("pay 50 into 123456", 6); got != "123456" {
		t.Errorf("Expected first 6+ digit run 123456, got %q", got)
	}
	if got := FirstDigitRun("pay 50 into 123456", 1); got != "50" {
		t.Errorf("Expected first digit run 50, got %q", got)
	}
	if got := FirstDigitRun("pay fifty", 1); got != "" {
		t.Errorf("Expected no digit run, got %q", got)
	}
	// leading zeros survive: runs are opaque strings, never parsed
	if got := FirstDigitRun("code 000123", 6); got != "000123" {
		t.Errorf("Expected 000123, got %q", got)
	}
}

func TestFirstAlphaRun(t *testing.T) {
	if got := FirstAlphaRun("to John please", 2); got != "to" {
		t.Errorf("Expected first alpha run 'to', got %q", got)
	}
	if got := FirstAlphaRun("a 12 ok", 2); got != "ok" {
		t.Errorf("Expected 'ok' (single letters skipped), got %q", got)
	}
	if got := FirstAlphaRun("123 456", 2); got != "" {
		t.Errorf("Expected no alpha run, got %q", got)
	}
}
