package bot

import (
	"fmt"
	"strings"

	"bankbot/internal/models"
)

const balanceReplyFormat = "Your balance is %s."

// Compose builds the final reply for a matched turn. Many corpus rows carry
// no canned response, so the composer improvises a balance-style answer
// from whatever numeric entities are at hand, in order:
//
//  1. the row's response text, trimmed
//  2. the extracted amount
//  3. a MONEY value looked up in the corpus by the extracted account number
//     (the amount is backfilled into ents when this fires)
//  4. the first digit run of the raw message
//
// An empty string means every step came up dry; callers treat that as a
// soft failure, never an error.
func Compose(res *models.MatchResult, rawText string, ents *Entities, corpus []models.CorpusRow) string {
	if reply := strings.TrimSpace(res.Response); reply != "" {
		return reply
	}

	if ents.Amount != "" {
		return fmt.Sprintf(balanceReplyFormat, ents.Amount)
	}

	if ents.AccountNumber != "" {
		needle := KeyAccountNumber + ":" + ents.AccountNumber
		for i := range corpus {
			annotation := corpus[i].Entities
			if !strings.Contains(annotation, needle) || !strings.Contains(annotation, KeyMoney+":") {
				continue
			}
			if amount := moneyValue(annotation); amount != "" {
				ents.Amount = amount
				return fmt.Sprintf(balanceReplyFormat, amount)
			}
		}
	}

	if run := FirstDigitRun(rawText, 1); run != "" {
		return fmt.Sprintf(balanceReplyFormat, run)
	}

	return ""
}

// moneyValue returns the digit run following the first MONEY: tag that has
// one, or "".
func moneyValue(annotation string) string {
	rest := annotation
	for {
		idx := strings.Index(rest, KeyMoney+":")
		if idx < 0 {
			return ""
		}
		rest = rest[idx+len(KeyMoney)+1:]
		end := 0
		for end < len(rest) && isDigit(rest[end]) {
			end++
		}
		if end > 0 {
			return rest[:end]
		}
	}
}
