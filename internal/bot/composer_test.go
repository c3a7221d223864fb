package bot

import (
	"testing"

	"bankbot/internal/models"
)

func TestComposeUsesCannedResponse(t *testing.T) {
	res := &models.MatchResult{Response: "  Hello! How can I help?  "}
	ents := Entities{Amount: "500"}
	got := Compose(res, "hi", &ents, nil)
	if got != "Hello! How can I help?" {
		t.Errorf("Expected trimmed canned response, got %q", got)
	}
}

func TestComposeFromAmount(t *testing.T) {
	res := &models.MatchResult{}
	ents := Entities{Amount: "500"}
	got := Compose(res, "show balance of 123456", &ents, nil)
	if got != "Your balance is 500." {
		t.Errorf("Expected synthesized balance reply, got %q", got)
	}
}

func TestComposeLooksUpAmountByAccount(t *testing.T) {
	corpus := []models.CorpusRow{
		{Text: "balance of 999999", Intent: "check_balance", Entities: "ACCOUNT_NUMBER:999999|MONEY:750"},
		{Text: "balance of 123456", Intent: "check_balance", Entities: "ACCOUNT_NUMBER:123456|MONEY:500"},
	}
	res := &models.MatchResult{}
	ents := Entities{AccountNumber: "123456"}
	got := Compose(res, "tell me about my account", &ents, corpus)
	if got != "Your balance is 500." {
		t.Errorf("Expected corpus-looked-up balance, got %q", got)
	}
	if ents.Amount != "500" {
		t.Errorf("Expected amount backfilled to 500, got %q", ents.Amount)
	}
}

func TestComposeFallsBackToMessageDigits(t *testing.T) {
	res := &models.MatchResult{}
	ents := Entities{Person: "john"}
	got := Compose(res, "something about 42 dollars", &ents, nil)
	if got != "Your balance is 42." {
		t.Errorf("Expected digits from raw message, got %q", got)
	}
}

func TestComposeEmptyWhenNothingAvailable(t *testing.T) {
	// scenario: exact match on a row with no response and no digits anywhere
	res := &models.MatchResult{Intent: "check_balance"}
	ents := Entities{Person: "what"}
	got := Compose(res, "What is my balance?", &ents, nil)
	if got != "" {
		t.Errorf("Expected empty reply as soft failure, got %q", got)
	}
}

func TestMoneyValue(t *testing.T) {
	cases := []struct {
		annotation string
		want       string
	}{
		{"ACCOUNT_NUMBER:123456|MONEY:500", "500"},
		{"MONEY:abc|MONEY:750", "750"}, // skips tags without digits
		{"MONEY:", ""},
		{"PERSON:john", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := moneyValue(tc.annotation); got != tc.want {
			t.Errorf("moneyValue(%q) = %q, want %q", tc.annotation, got, tc.want)
		}
	}
}

func TestIntentColor(t *testing.T) {
	if got := IntentColor("check_balance"); got != "#2196F3" {
		t.Errorf("Expected #2196F3, got %q", got)
	}
	if got := IntentColor("nonsense"); got != DefaultIntentColor {
		t.Errorf("Expected default color for unknown intent, got %q", got)
	}
}
