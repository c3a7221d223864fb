package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BotConfig is the optional chatbot tuning file (bot.yaml). Env vars win
// over file values; the file exists so palette tweaks don't need a rebuild.
type BotConfig struct {
	Learning     *bool             `yaml:"learning"`
	IntentColors map[string]string `yaml:"intent_colors"`
}

// LoadBotConfig loads the bot tuning file from YAML.
func LoadBotConfig(filePath string) (*BotConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot config file: %w", err)
	}

	var config BotConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse bot config YAML: %w", err)
	}

	return &config, nil
}
