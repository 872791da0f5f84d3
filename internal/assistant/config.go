package assistant

import (
	"fmt"

	"github.com/schedchat/schedchat/internal/history"
	"github.com/schedchat/schedchat/internal/sanitize"
)

// Defaults for pipeline tuning knobs.
const (
	DefaultMaxMessageLength          = 2000
	DefaultMaxExchanges              = history.DefaultMaxExchanges
	DefaultMaxEventTitleLength       = 200
	DefaultMaxEventDescriptionLength = 2000
)

// Config tunes one conversation pipeline.
type Config struct {
	// MaxMessageLength bounds both user input and the final response.
	// Longer input is silently clipped; longer responses are truncated
	// at a sentence boundary.
	MaxMessageLength int

	// MaxExchanges is the number of recent turns replayed into each
	// prompt. The history store retains twice this many turns.
	MaxExchanges int

	// MaxEventTitleLength bounds the title written to calendar events
	// from directives. Longer titles are clipped on a rune boundary.
	MaxEventTitleLength int

	// MaxEventDescriptionLength bounds the description written to
	// calendar events from directives.
	MaxEventDescriptionLength int
}

// DefaultConfig returns the stock pipeline tuning.
func DefaultConfig() Config {
	return Config{
		MaxMessageLength:          DefaultMaxMessageLength,
		MaxExchanges:              DefaultMaxExchanges,
		MaxEventTitleLength:       DefaultMaxEventTitleLength,
		MaxEventDescriptionLength: DefaultMaxEventDescriptionLength,
	}
}

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("max message length must be positive, got %d", c.MaxMessageLength)
	}
	if c.MaxExchanges <= 0 {
		return fmt.Errorf("max exchanges must be positive, got %d", c.MaxExchanges)
	}
	if c.MaxEventTitleLength <= 0 {
		return fmt.Errorf("max event title length must be positive, got %d", c.MaxEventTitleLength)
	}
	if c.MaxEventDescriptionLength <= 0 {
		return fmt.Errorf("max event description length must be positive, got %d", c.MaxEventDescriptionLength)
	}
	return nil
}

// sanitizer returns the response sanitizer matching this config.
func (c Config) sanitizer() *sanitize.Sanitizer {
	return sanitize.New(c.MaxMessageLength)
}
