package services

import (
	"math"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"bankbot/internal/bot"
	"bankbot/internal/corpus"
	"bankbot/internal/logging"
	"bankbot/internal/models"
)

const (
	// OutOfScopeIntent is the fallback intent when no corpus row matches.
	OutOfScopeIntent = "out_of_scope"

	// OutOfScopeReply is the fixed reply for unmatched or empty messages.
	OutOfScopeReply = "I can only assist with banking questions. Try asking about balance, transfers, loans, or cards."
)

// cachedMatch pins a lookup result to the corpus version it was computed
// against, so corpus appends and reloads invalidate it implicitly.
type cachedMatch struct {
	version uint64
	result  *models.MatchResult
}

// ChatService runs the full chat turn pipeline: normalize, match, extract
// entities, compose a reply, then record the turn in the user context and
// query log. Matching and composition are pure in-memory computation; all
// persistence around them is best-effort and never fails the turn.
type ChatService struct {
	corpus     *corpus.Store
	contexts   *UserContextService
	queryLog   *QueryLogService
	matchCache *cache.Cache
	learning   bool
	palette    map[string]string
}

// ChatOption configures a ChatService.
type ChatOption func(*ChatService)

// WithLearning toggles appending learned rows back into the corpus.
// Learned rows carry user-specific numbers, so this is opt-in.
func WithLearning(enabled bool) ChatOption {
	return func(s *ChatService) { s.learning = enabled }
}

// WithPalette overlays intent colors on top of the built-in palette.
func WithPalette(overrides map[string]string) ChatOption {
	return func(s *ChatService) {
		for intent, color := range overrides {
			s.palette[intent] = color
		}
	}
}

// NewChatService creates the chat pipeline over the given stores.
// queryLog may be nil to disable query logging.
func NewChatService(store *corpus.Store, contexts *UserContextService, queryLog *QueryLogService, opts ...ChatOption) *ChatService {
	s := &ChatService{
		corpus:     store,
		contexts:   contexts,
		queryLog:   queryLog,
		matchCache: cache.New(5*time.Minute, 10*time.Minute),
		palette:    map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleTurn processes one chat message for a user and returns the reply.
// Side effects: the user context gains a conversation turn (created from
// the account snapshot on first contact), the query log gains an entry,
// and with learning enabled the corpus may gain a row. Persistence
// failures are logged and swallowed; the computed reply is returned
// regardless.
func (s *ChatService) HandleTurn(userID, rawMessage string, snapshot models.AccountSnapshot) models.ChatResponse {
	start := time.Now()
	message := strings.TrimSpace(rawMessage)

	rows := s.corpus.Rows()
	result := s.lookup(message, rows)

	intent := OutOfScopeIntent
	reply := OutOfScopeReply
	var ents bot.Entities

	if result != nil {
		intent = result.Intent
		ents = bot.Extract(message, result.Entities)
		reply = bot.Compose(result, message, &ents, rows)
	}

	if err := s.contexts.Update(userID, snapshot, func(uc *models.UserContext) {
		if result != nil && !ents.Empty() {
			if ents.AccountNumber != "" {
				uc.AccountNumber = ents.AccountNumber
			}
			if ents.Amount != "" {
				uc.LastAmount = ents.Amount
			}
			if ents.Person != "" {
				uc.LastRecipient = ents.Person
			}
		}
		uc.Conversations = append(uc.Conversations, models.ConversationTurn{
			User:   message,
			Bot:    reply,
			Intent: intent,
		})
	}); err != nil {
		logging.WithTurn(userID, intent).Warn("user context save failed", "error", err)
	}

	if result != nil && s.learning {
		if annotation := learnedAnnotation(ents, reply); annotation != "" {
			added, err := s.corpus.Append(message, intent, reply, annotation)
			if err != nil {
				logging.WithTurn(userID, intent).Warn("corpus append failed", "error", err)
			}
			if added {
				if m := GetMetrics(); m != nil {
					m.CorpusAppends.Inc()
				}
			}
		}
	}

	if s.queryLog != nil {
		entry := models.QueryLogEntry{
			Query:      message,
			Intent:     intent,
			Confidence: matchConfidence(result, message),
			Date:       time.Now().UTC(),
		}
		if err := s.queryLog.Append(entry); err != nil {
			logging.WithTurn(userID, intent).Warn("query log append failed", "error", err)
		}
	}

	if m := GetMetrics(); m != nil {
		m.ChatTurns.WithLabelValues(intent, tierLabel(result)).Inc()
		m.ChatTurnLatency.Observe(time.Since(start).Seconds())
	}

	return models.ChatResponse{
		Reply:       reply,
		Intent:      intent,
		IntentColor: s.intentColor(intent),
	}
}

// History returns the user's ordered conversation log.
func (s *ChatService) History(userID string) []models.ConversationTurn {
	return s.contexts.History(userID)
}

// lookup resolves a message against the corpus, caching by raw message.
// The cache is keyed to the corpus version so it never outlives a change
// to the row set.
func (s *ChatService) lookup(message string, rows []models.CorpusRow) *models.MatchResult {
	if message == "" {
		return nil
	}

	version := s.corpus.Version()
	if v, ok := s.matchCache.Get(message); ok {
		if hit, ok := v.(cachedMatch); ok && hit.version == version {
			return hit.result
		}
	}

	result := bot.Match(message, rows)
	s.matchCache.SetDefault(message, cachedMatch{version: version, result: result})
	return result
}

func (s *ChatService) intentColor(intent string) string {
	if color, ok := s.palette[intent]; ok {
		return color
	}
	return bot.IntentColor(intent)
}

// learnedAnnotation synthesizes the annotation string appended back into
// the corpus: the turn's resulting numeric entities, or failing that the
// first digit run of the reply.
func learnedAnnotation(ents bot.Entities, reply string) string {
	var parts []string
	if ents.Amount != "" {
		parts = append(parts, bot.KeyMoney+":"+ents.Amount)
	}
	if ents.AccountNumber != "" {
		parts = append(parts, bot.KeyAccountNumber+":"+ents.AccountNumber)
	}
	annotation := strings.Join(parts, "|")

	if annotation == "" {
		if run := bot.FirstDigitRun(reply, 1); run != "" {
			annotation = bot.KeyMoney + ":" + run
		}
	}
	return annotation
}

// matchConfidence derives the value recorded in the query log: 1.0 for the
// deterministic tiers, the shared-token fraction for fuzzy matches, 0 for
// no match.
func matchConfidence(result *models.MatchResult, message string) float64 {
	if result == nil {
		return 0
	}
	if result.Tier != models.TierFuzzy {
		return 1
	}
	tokens := strings.Fields(bot.Normalize(message))
	if len(tokens) == 0 {
		return 0
	}
	return math.Round(float64(result.Overlap)/float64(len(tokens))*100) / 100
}

func tierLabel(result *models.MatchResult) string {
	if result == nil {
		return models.MatchTier(0).String()
	}
	return result.Tier.String()
}
