package domain

import (
	"strings"
)

// SearchSource is the resolver search prefix applied to plain-text queries.
type SearchSource string

const (
	// SourceYouTube searches YouTube.
	SourceYouTube SearchSource = "ytsearch"
	// SourceYouTubeMusic searches YouTube Music.
	SourceYouTubeMusic SearchSource = "ytmsearch"
	// SourceSoundCloud searches SoundCloud.
	SourceSoundCloud SearchSource = "scsearch"
	// SourceDirect indicates a direct URL (no search prefix).
	SourceDirect SearchSource = ""
)

// ParseSearchSource converts a configured source name to a SearchSource.
// Unknown names fall back to YouTube search.
func ParseSearchSource(name string) SearchSource {
	switch SearchSource(strings.ToLower(strings.TrimSpace(name))) {
	case SourceYouTubeMusic:
		return SourceYouTubeMusic
	case SourceSoundCloud:
		return SourceSoundCloud
	default:
		return SourceYouTube
	}
}

// SearchQuery represents a user request: either a URL or a search term.
type SearchQuery struct {
	Query  string       // The search term or URL
	Source SearchSource // The search source
	IsURL  bool         // Whether the query is a direct URL
}

// NewSearchQuery creates a SearchQuery from user input.
// URLs are passed through untouched; anything else is searched on source.
func NewSearchQuery(input string, source SearchSource) SearchQuery {
	input = strings.TrimSpace(input)
	input = strings.TrimSuffix(strings.TrimPrefix(input, "<"), ">") // Discord link suppression

	if isURL(input) {
		return SearchQuery{
			Query:  input,
			Source: SourceDirect,
			IsURL:  true,
		}
	}

	return SearchQuery{
		Query:  input,
		Source: source,
		IsURL:  false,
	}
}

// ResolverQuery returns the query string in the form the resolver backend expects.
func (q SearchQuery) ResolverQuery() string {
	if q.IsURL || q.Source == SourceDirect {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid returns true if the query is not empty.
func (q SearchQuery) IsValid() bool {
	return q.Query != ""
}

// isURL checks if the input looks like a URL.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
