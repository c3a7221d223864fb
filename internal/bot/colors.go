package bot

// DefaultIntentColor is used for any intent outside the known palette.
const DefaultIntentColor = "#757575"

var intentColors = map[string]string{
	"greet":               "#4CAF50",
	"goodbye":             "#FF9800",
	"check_balance":       "#2196F3",
	"transaction_inquiry": "#9C27B0",
	"loan_inquiry":        "#F44336",
	"card_inquiry":        "#00BCD4",
	"block_card":          "#E91E63",
	"branch_locator":      "#795548",
	"transfer_money":      "#FF5722",
	"thanks":              "#8BC34A",
	"out_of_scope":        "#757575",
}

// IntentColor maps an intent label to its dashboard display color. This is
// presentation only and plays no part in matching.
func IntentColor(intent string) string {
	if color, ok := intentColors[intent]; ok {
		return color
	}
	return DefaultIntentColor
}

// IntentPalette returns a copy of the built-in palette so callers can layer
// config overrides on top without mutating the defaults.
func IntentPalette() map[string]string {
	palette := make(map[string]string, len(intentColors))
	for intent, color := range intentColors {
		palette[intent] = color
	}
	return palette
}
