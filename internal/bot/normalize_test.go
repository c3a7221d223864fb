package bot

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase and trim", "  Hello There  ", "hello there"},
		{"strips punctuation", "What is my balance?", "what is my balance"},
		{"expands what's", "What's my balance", "what is my balance"},
		{"expands it's", "it's blocked", "it is blocked"},
		{"expands i'm", "I'm locked out", "i am locked out"},
		{"keeps digits", "send 500 to 123456", "send 500 to 123456"},
		{"collapses whitespace", "a   b  c", "a b c"},
		{"tabs are dropped not collapsed", "a   b\t\tc", "a bc"},
		{"drops non-ascii", "héllo wörld", "hllo wrld"},
		{"empty input", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"What's my balance?",
		"  TRANSFER  500  to  JOHN!!  ",
		"",
		"already normal text",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokenSet(t *testing.T) {
	tokens := TokenSet("check my balance my balance")
	if len(tokens) != 3 {
		t.Errorf("Expected 3 unique tokens, got %d", len(tokens))
	}
	for _, tok := range []string{"check", "my", "balance"} {
		if _, ok := tokens[tok]; !ok {
			t.Errorf("Expected token %q in set", tok)
		}
	}
}
