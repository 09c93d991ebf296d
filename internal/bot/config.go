package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Long polling timeout in seconds
	UpdateTimeout int
	// Number of sessions shown by /sessions
	SessionListLimit int
	// Days of history analysed by /summary
	FailureWindowDays int
	// Time allowed for a single update to be handled
	HandlerTimeout time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		UpdateTimeout:     60,
		SessionListLimit:  10,
		FailureWindowDays: 30,
		HandlerTimeout:    30 * time.Second,
	}
}
