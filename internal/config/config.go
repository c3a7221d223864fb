package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DatabasePath string // SQLite file for portal user accounts
	DataDir      string // flat-file data: corpus, user contexts, query log, FAQs

	CorpusPath   string
	UserDataPath string
	QueryLogPath string
	FAQPath      string

	JWTSecret string

	// Self-learning corpus growth from live chat turns. Off by default:
	// learned rows carry user-specific numbers into the shared corpus.
	LearningEnabled bool

	// Optional bot.yaml with palette overrides (empty = skip)
	BotConfigPath string

	ContextFlushInterval time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		Port:         getEnv("PORT", "3001"),
		DatabasePath: getEnv("DATABASE_PATH", filepath.Join(dataDir, "bank.db")),
		DataDir:      dataDir,

		CorpusPath:   getEnv("CORPUS_PATH", filepath.Join(dataDir, "bank_chatbot_dataset.csv")),
		UserDataPath: getEnv("USER_DATA_PATH", filepath.Join(dataDir, "user_data.json")),
		QueryLogPath: getEnv("QUERY_LOG_PATH", filepath.Join(dataDir, "user_queries.csv")),
		FAQPath:      getEnv("FAQ_PATH", filepath.Join(dataDir, "faq.json")),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LearningEnabled: getBoolEnv("CORPUS_LEARNING_ENABLED", false),

		BotConfigPath: getEnv("BOT_CONFIG_PATH", ""),

		ContextFlushInterval: getDurationEnv("CONTEXT_FLUSH_INTERVAL", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
