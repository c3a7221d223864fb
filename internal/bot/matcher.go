package bot

import (
	"strings"

	"bankbot/internal/models"
)

// Match runs the three-tier corpus search and returns nil when no tier
// produces a result (the out-of-scope case). Tiers short-circuit:
//
//  1. exact match on normalized text, first row in corpus order
//  2. entity-anchored match: a numeric annotation value from a row tagged
//     ACCOUNT_NUMBER or MONEY appears in the raw message
//  3. token-overlap best match, requiring at least one shared token
//
// Ties resolve to the earliest row; tier 3 keeps the first row seen with
// the highest overlap because only a strictly greater score replaces the
// current best.
func Match(rawText string, corpus []models.CorpusRow) *models.MatchResult {
	if strings.TrimSpace(rawText) == "" {
		return nil
	}
	norm := Normalize(rawText)

	for i := range corpus {
		rowNorm := Normalize(corpus[i].Text)
		if rowNorm != "" && rowNorm == norm {
			return matchFrom(&corpus[i], models.TierExact, 0)
		}
	}

	runs := DigitRuns(rawText)
	concat := strings.Join(runs, "")
	for i := range corpus {
		entities := strings.TrimSpace(corpus[i].Entities)
		if !strings.Contains(entities, KeyAccountNumber) && !strings.Contains(entities, KeyMoney) {
			continue
		}
		for _, part := range strings.Split(entities, "|") {
			_, val, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			val = strings.TrimSpace(val)
			if val == "" || FirstDigitRun(val, 1) == "" {
				continue
			}
			if strings.Contains(rawText, val) ||
				(concat != "" && strings.Contains(concat, val)) ||
				equalsAnyRun(val, runs) {
				return matchFrom(&corpus[i], models.TierEntity, 0)
			}
		}
	}

	msgTokens := TokenSet(norm)
	var best *models.CorpusRow
	bestScore := 0
	for i := range corpus {
		rowNorm := Normalize(corpus[i].Text)
		if rowNorm == "" {
			continue
		}
		overlap := 0
		for tok := range TokenSet(rowNorm) {
			if _, ok := msgTokens[tok]; ok {
				overlap++
			}
		}
		if overlap > bestScore {
			bestScore = overlap
			best = &corpus[i]
		}
	}
	if best != nil && bestScore >= 1 {
		return matchFrom(best, models.TierFuzzy, bestScore)
	}

	return nil
}

func matchFrom(row *models.CorpusRow, tier models.MatchTier, overlap int) *models.MatchResult {
	return &models.MatchResult{
		Intent:   row.Intent,
		Response: row.Response,
		Entities: row.Entities,
		Tier:     tier,
		Overlap:  overlap,
	}
}

func equalsAnyRun(val string, runs []string) bool {
	for _, run := range runs {
		if val == run {
			return true
		}
	}
	return false
}
