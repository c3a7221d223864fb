package models

// CorpusRow is one labeled reference example from the chatbot dataset.
// Rows are immutable once loaded; the store only ever appends new ones.
type CorpusRow struct {
	Text     string `json:"text"`
	Intent   string `json:"intent"`
	Response string `json:"response"`
	Entities string `json:"entities"` // annotation string: "KEY:VALUE|KEY:VALUE"
}

// MatchTier identifies which search tier produced a match.
type MatchTier int

const (
	TierExact  MatchTier = iota + 1 // normalized text equality
	TierEntity                      // numeric entity anchored
	TierFuzzy                       // token overlap
)

// String returns the tier label used in logs and metrics.
func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierEntity:
		return "entity"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// MatchResult is the outcome of a successful corpus lookup.
type MatchResult struct {
	Intent   string
	Response string
	Entities string
	Tier     MatchTier
	Overlap  int // shared token count, set for TierFuzzy only
}

// AddCorpusRowRequest is the admin request body for appending a dataset row.
type AddCorpusRowRequest struct {
	Text     string `json:"text"`
	Intent   string `json:"intent"`
	Response string `json:"response"`
	Entities string `json:"entities"`
}
