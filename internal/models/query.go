package models

import "time"

// QueryLogEntry is one row of the flat user-queries log consumed by the
// admin dashboard.
type QueryLogEntry struct {
	Query      string    `json:"query"`
	Intent     string    `json:"intent"`
	Confidence float64   `json:"confidence"`
	Date       time.Time `json:"date"`
}

// FAQ is a question/answer pair managed through the admin panel.
type FAQ struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// QueryStats summarizes the query log for the admin dashboard.
type QueryStats struct {
	TotalQueries int            `json:"total_queries"`
	ByIntent     map[string]int `json:"by_intent"`
	CorpusRows   int            `json:"corpus_rows"`
	Users        int            `json:"users"`
	ChatUsers    int            `json:"chat_users"`
}
