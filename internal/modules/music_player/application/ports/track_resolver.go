package ports

import (
	"context"
	"errors"

	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

var (
	// ErrResolverUnavailable marks transient failures to reach the resolver backend.
	// Only errors wrapping it are retried.
	ErrResolverUnavailable = errors.New("resolver unavailable")

	// ErrNoMatches is returned when a query matches nothing.
	ErrNoMatches = errors.New("no matches found")
)

// StreamHandle is what a resolver hands over for the audio transport to open.
// Exactly one of Encoded or URL is set.
type StreamHandle struct {
	Encoded string // Pre-encoded transport track
	URL     string // Direct media URL
}

// ResolvedTrack is the result of resolving a query.
type ResolvedTrack struct {
	Track  domain.Track
	Handle StreamHandle
}

// TrackResolver turns a URL or search query into track metadata and a stream handle.
// A playlist resolves to its first entry.
type TrackResolver interface {
	Resolve(ctx context.Context, query domain.SearchQuery) (*ResolvedTrack, error)
}
