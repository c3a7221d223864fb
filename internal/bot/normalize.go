package bot

import "strings"

// Fixed contraction expansions applied before stripping punctuation.
// The set is small and non-overlapping, so replacement order is irrelevant.
var contractions = strings.NewReplacer(
	"what's", "what is",
	"it's", "it is",
	"i'm", "i am",
)

// Normalize canonicalizes text for corpus comparison: lower-case, expand the
// fixed contractions, drop every character outside [a-z0-9 ] and collapse
// whitespace runs to single spaces. Total and idempotent; empty input
// normalizes to the empty string.
func Normalize(text string) string {
	s := contractions.Replace(strings.ToLower(strings.TrimSpace(text)))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// TokenSet splits an already-normalized string into its unique tokens.
func TokenSet(normalized string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = struct{}{}
	}
	return tokens
}
