package music_player

import (
	"errors"
	"time"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkNodeName string `env:"LAVALINK_NODE_NAME" envDefault:"main"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"    envDefault:"false"`

	// SearchSource is the search prefix for plain-text queries (ytsearch, ytmsearch, scsearch).
	SearchSource string `env:"MUSIC_SEARCH_SOURCE" envDefault:"ytsearch"`

	ResolveAttempts   int           `env:"MUSIC_RESOLVE_ATTEMPTS"    envDefault:"2"`
	ResolveRetryDelay time.Duration `env:"MUSIC_RESOLVE_RETRY_DELAY" envDefault:"3s"`
	ResolveRate       float64       `env:"MUSIC_RESOLVE_RATE"        envDefault:"2"`
	ResolveBurst      int           `env:"MUSIC_RESOLVE_BURST"       envDefault:"4"`

	// YouTubeDirect resolves YouTube links with kkdai/youtube instead of Lavalink.
	YouTubeDirect bool `env:"MUSIC_YOUTUBE_DIRECT" envDefault:"false"`

	PrefetchMetadata bool `env:"MUSIC_PREFETCH_METADATA" envDefault:"true"`
	AutoLeave        bool `env:"MUSIC_AUTO_LEAVE"        envDefault:"true"`
	EventBufferSize  int  `env:"MUSIC_EVENT_BUFFER_SIZE" envDefault:"100"`
}

// Validate checks values env cannot express with tags.
func (c *Config) Validate() error {
	if c.ResolveAttempts < 1 {
		return errors.New("MUSIC_RESOLVE_ATTEMPTS must be at least 1")
	}
	if c.ResolveRetryDelay < 0 {
		return errors.New("MUSIC_RESOLVE_RETRY_DELAY must not be negative")
	}
	if c.ResolveRate <= 0 {
		return errors.New("MUSIC_RESOLVE_RATE must be positive")
	}
	if c.ResolveBurst < 1 {
		return errors.New("MUSIC_RESOLVE_BURST must be at least 1")
	}
	if c.EventBufferSize < 1 {
		return errors.New("MUSIC_EVENT_BUFFER_SIZE must be at least 1")
	}
	return nil
}
