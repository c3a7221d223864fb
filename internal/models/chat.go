package models

// ChatRequest is the request body for a chat turn.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is what the portal frontend renders for a single turn.
// IntentColor is a display hint only and never feeds back into matching.
type ChatResponse struct {
	Reply       string `json:"reply"`
	Intent      string `json:"intent"`
	IntentColor string `json:"intent_color"`
}

// ConversationTurn is one exchange in a user's conversation log.
type ConversationTurn struct {
	User   string `json:"user"`
	Bot    string `json:"bot"`
	Intent string `json:"intent"`
}

// UserContext holds the per-user chat state persisted between turns.
// Created on first chat interaction, mutated on every turn, never deleted
// by the chat core.
type UserContext struct {
	AccountNumber string             `json:"account_number,omitempty"`
	Balance       float64            `json:"balance"`
	LastAmount    string             `json:"last_amount,omitempty"`
	LastRecipient string             `json:"last_recipient,omitempty"`
	Conversations []ConversationTurn `json:"conversations"`
}

// AccountSnapshot is the caller-supplied view of the user's bank account.
// The chat core trusts it as-is; it does not authenticate.
type AccountSnapshot struct {
	AccountNumber string
	Balance       float64
}
