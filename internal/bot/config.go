package bot

import (
	"time"

	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/pager"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Rows shown per study page in a chat message
	RowsPerPage int
	// Listening rate adjustment per button press and its bounds
	RateStep float64
	MinRate  float64
	MaxRate  float64
	// Long polling timeout in seconds
	UpdateTimeout int
	// Pause between narrated fields and between items
	FieldPause time.Duration
	ItemPause  time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		RowsPerPage:   8,
		RateStep:      0.25,
		MinRate:       0.5,
		MaxRate:       3.0,
		UpdateTimeout: 60,
		FieldPause:    100 * time.Millisecond,
		ItemPause:     200 * time.Millisecond,
	}
}

// viewportHeight is the screen height that makes the page-size estimator
// settle on RowsPerPage rows of the given kind.
func (c *BotConfig) viewportHeight(kind deck.Kind) float64 {
	return pager.HeaderHeight + float64(c.RowsPerPage+1)*kind.RowHeight
}

// clampRate keeps a rate within the configured bounds.
func (c *BotConfig) clampRate(rate float64) float64 {
	return min(max(rate, c.MinRate), c.MaxRate)
}
