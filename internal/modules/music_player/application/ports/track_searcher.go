package ports

import (
	"context"

	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// TrackInfo is a search result suggestion.
type TrackInfo struct {
	Title    string
	Artist   string
	Duration domain.Duration
	URI      string
	IsStream bool
}

// TrackSearcher lists candidate tracks for a query, for autocomplete.
type TrackSearcher interface {
	Search(ctx context.Context, query domain.SearchQuery, limit int) ([]TrackInfo, error)
}
