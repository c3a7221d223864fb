package bot

// Typed token scanners over raw text. These replace pattern matching with
// explicit finite scans: a run is a maximal sequence of bytes from one
// class (ASCII digits or ASCII letters).

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// DigitRuns returns every maximal digit run in s, in order of appearance.
// Runs are kept as opaque decimal strings; they are never parsed as
// numbers, so leading zeros survive and overflow cannot occur.
func DigitRuns(s string) []string {
	var runs []string
	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		runs = append(runs, s[start:i])
	}
	return runs
}

// FirstDigitRun returns the first digit run of at least min bytes, or "".
func FirstDigitRun(s string, min int) string {
	for _, run := range DigitRuns(s) {
		if len(run) >= min {
			return run
		}
	}
	return ""
}

// FirstAlphaRun returns the first letter run of at least min bytes, or "".
func FirstAlphaRun(s string, min int) string {
	for i := 0; i < len(s); {
		if !isAlpha(s[i]) {
			i++
			continue
		}
		start := i
		for i < len(s) && isAlpha(s[i]) {
			i++
		}
		if i-start >= min {
			return s[start:i]
		}
	}
	return ""
}
