package bot

import "strings"

// Annotation keys recognized in corpus entity strings.
const (
	KeyAccountNumber = "ACCOUNT_NUMBER"
	KeyMoney         = "MONEY"
	KeyPerson        = "PERSON"
)

// Entities are the structured values pulled out of a chat turn.
// At most one value per key; the first hit wins.
type Entities struct {
	AccountNumber string `json:"account_number,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Person        string `json:"person,omitempty"`
}

// Empty reports whether no entity was extracted.
func (e Entities) Empty() bool {
	return e.AccountNumber == "" && e.Amount == "" && e.Person == ""
}

// Extract derives entities for a chat turn. Explicit annotation pairs
// always win over positional fallbacks scanned from the raw message:
// account numbers need a digit run of six or more, amounts any digit run,
// person names a letter run of two or more. Pure function, no failure
// modes; malformed annotation parts are skipped.
func Extract(rawText, annotation string) Entities {
	var e Entities

	for _, part := range strings.Split(annotation, "|") {
		key, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case KeyAccountNumber:
			if e.AccountNumber == "" {
				e.AccountNumber = val
			}
		case KeyMoney:
			if e.Amount == "" {
				e.Amount = val
			}
		case KeyPerson:
			if e.Person == "" {
				e.Person = val
			}
		}
	}

	if e.AccountNumber == "" {
		e.AccountNumber = FirstDigitRun(rawText, 6)
	}
	if e.Amount == "" {
		e.Amount = FirstDigitRun(rawText, 1)
	}
	if e.Person == "" {
		e.Person = FirstAlphaRun(rawText, 2)
	}
	return e
}
