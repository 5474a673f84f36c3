package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// LoadTrackInput contains the input for the LoadTrack use case.
type LoadTrackInput struct {
	Query     string
	Requester domain.Requester
}

// LoadTrackOutput contains the result of the LoadTrack use case.
type LoadTrackOutput struct {
	Track  domain.Track
	Handle ports.StreamHandle
}

// SearchTracksInput contains the input for the SearchTracks use case.
type SearchTracksInput struct {
	Query string
	Limit int
}

// SearchTracksOutput contains the result of the SearchTracks use case.
type SearchTracksOutput struct {
	Tracks []ports.TrackInfo
}

// TrackLoaderService resolves queries to playable tracks.
// Transient resolver failures are retried according to the RetryPolicy,
// and every attempt waits on a shared rate limiter.
type TrackLoaderService struct {
	resolver ports.TrackResolver
	searcher ports.TrackSearcher
	source   domain.SearchSource
	policy   RetryPolicy
	limiter  *rate.Limiter
}

// NewTrackLoaderService creates a new TrackLoaderService.
// A nil limiter disables rate limiting. searcher may be nil.
func NewTrackLoaderService(
	resolver ports.TrackResolver,
	searcher ports.TrackSearcher,
	source domain.SearchSource,
	policy RetryPolicy,
	limiter *rate.Limiter,
) *TrackLoaderService {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if source == "" {
		source = domain.SourceYouTube
	}

	return &TrackLoaderService{
		resolver: resolver,
		searcher: searcher,
		source:   source,
		policy:   policy.normalized(),
		limiter:  limiter,
	}
}

// LoadTrack resolves the query to a single track attributed to the requester.
// A playlist resolves to its first entry. Failures wrap ErrResolutionFailed.
func (s *TrackLoaderService) LoadTrack(
	ctx context.Context,
	input LoadTrackInput,
) (*LoadTrackOutput, error) {
	query := domain.NewSearchQuery(input.Query, s.source)
	if !query.IsValid() {
		return nil, fmt.Errorf("%w: %w", ErrResolutionFailed, ports.ErrNoMatches)
	}

	var lastErr error
	for attempt := 1; attempt <= s.policy.Attempts; attempt++ {
		if attempt > 1 {
			slog.Warn("retrying track resolution",
				"query", query.Query, "attempt", attempt, "error", lastErr)
			if err := s.policy.Sleep(ctx, s.policy.Delay); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrResolutionFailed, err)
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrResolutionFailed, err)
		}

		resolved, err := s.resolver.Resolve(ctx, query)
		if err == nil {
			return &LoadTrackOutput{
				Track:  resolved.Track.WithRequester(input.Requester),
				Handle: resolved.Handle,
			}, nil
		}

		lastErr = err
		if !errors.Is(err, ports.ErrResolverUnavailable) {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrResolutionFailed, lastErr)
}

// SearchTracks lists tracks matching the query for autocomplete suggestions.
// Search failures are not retried.
func (s *TrackLoaderService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) (*SearchTracksOutput, error) {
	query := domain.NewSearchQuery(input.Query, s.source)
	if s.searcher == nil || !query.IsValid() {
		return &SearchTracksOutput{Tracks: nil}, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tracks, err := s.searcher.Search(ctx, query, input.Limit)
	if err != nil {
		return nil, err
	}

	if input.Limit > 0 && len(tracks) > input.Limit {
		tracks = tracks[:input.Limit]
	}

	return &SearchTracksOutput{Tracks: tracks}, nil
}
