package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// Requester identifies the guild member who asked for a track.
type Requester struct {
	ID        snowflake.ID
	Name      string
	AvatarURL string
}

// Track describes one queued or playing track. It is a value type and is never mutated
// once built; use the With* methods to derive a modified copy.
type Track struct {
	Identifier  string // Source-specific identifier (e.g., YouTube video ID)
	Title       string
	Artist      string
	Duration    Duration
	SourceURL   string // Streamable media URL or resolver handle
	OriginalURL string // Page URL shown to users
	ArtworkURL  string
	SourceName  string // e.g., "youtube", "soundcloud", "http"
	IsStream    bool
	Requester   Requester
}

// NewQueryTrack synthesizes the descriptor of a request that has not been resolved yet.
func NewQueryTrack(query string, requester Requester) Track {
	return Track{
		Title:     query,
		Duration:  UnknownDuration(),
		Requester: requester,
	}
}

// Source returns the parsed TrackSource for this track.
func (t Track) Source() TrackSource {
	return ParseTrackSource(t.SourceName)
}

// WithRequester returns a copy of the track attributed to the given requester.
func (t Track) WithRequester(requester Requester) Track {
	t.Requester = requester
	return t
}

// FormattedDuration returns the display length of the track.
func (t Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}
	return t.Duration.String()
}

// DisplayURL returns the best link to show for the track.
func (t Track) DisplayURL() string {
	if t.OriginalURL != "" {
		return t.OriginalURL
	}
	return t.SourceURL
}
