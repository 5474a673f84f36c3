package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

var errNoNode = errors.New("no available Lavalink node")

// Resolve loads the query on the best Lavalink node and returns its first track.
func (c *LavalinkAdapter) Resolve(
	ctx context.Context,
	query domain.SearchQuery,
) (*ports.ResolvedTrack, error) {
	result, err := c.load(ctx, query.ResolverQuery())
	if err != nil {
		return nil, err
	}

	track, err := firstTrack(result, query)
	if err != nil {
		return nil, err
	}

	return &ports.ResolvedTrack{
		Track:  convertTrack(track),
		Handle: ports.StreamHandle{Encoded: track.Encoded},
	}, nil
}

// Search lists up to limit tracks matching the query.
func (c *LavalinkAdapter) Search(
	ctx context.Context,
	query domain.SearchQuery,
	limit int,
) ([]ports.TrackInfo, error) {
	result, err := c.load(ctx, query.ResolverQuery())
	if err != nil {
		return nil, err
	}

	var tracks []lavalink.Track
	switch data := result.Data.(type) {
	case lavalink.Track:
		tracks = []lavalink.Track{data}
	case lavalink.Playlist:
		tracks = data.Tracks
	case lavalink.Search:
		tracks = data
	case lavalink.Exception:
		return nil, exceptionError(data, query)
	}

	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	infos := make([]ports.TrackInfo, len(tracks))
	for i, track := range tracks {
		converted := convertTrack(track)
		infos[i] = ports.TrackInfo{
			Title:    converted.Title,
			Artist:   converted.Artist,
			Duration: converted.Duration,
			URI:      converted.OriginalURL,
			IsStream: converted.IsStream,
		}
	}
	return infos, nil
}

// Open turns a stream handle into a Lavalink track.
// Direct media URLs are loaded through the node's HTTP source.
func (c *LavalinkAdapter) Open(
	ctx context.Context,
	handle ports.StreamHandle,
) (*ports.AudioStream, error) {
	if handle.Encoded != "" {
		return &ports.AudioStream{Encoded: handle.Encoded}, nil
	}
	if handle.URL == "" {
		return nil, errors.New("empty stream handle")
	}

	result, err := c.load(ctx, handle.URL)
	if err != nil {
		return nil, err
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return &ports.AudioStream{Encoded: data.Encoded}, nil
	case lavalink.Exception:
		return nil, fmt.Errorf("Lavalink says: %q", data.Message)
	default:
		return nil, fmt.Errorf("media URL is not playable (%s)", result.LoadType)
	}
}

// load calls LoadTracks, marking backend failures as transient.
func (c *LavalinkAdapter) load(ctx context.Context, identifier string) (*lavalink.LoadResult, error) {
	result, err := c.loadTracks(ctx, identifier)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrResolverUnavailable, err)
	}
	return result, nil
}

func (c *LavalinkAdapter) loadFromBestNode(
	ctx context.Context,
	identifier string,
) (*lavalink.LoadResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, errNoNode
	}
	return node.LoadTracks(ctx, identifier)
}

// firstTrack picks the track a load result plays. Playlists play their first entry.
func firstTrack(result *lavalink.LoadResult, query domain.SearchQuery) (lavalink.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, nil
	case lavalink.Search:
		if len(data) > 0 {
			return data[0], nil
		}
	case lavalink.Playlist:
		if len(data.Tracks) > 0 {
			return data.Tracks[0], nil
		}
	case lavalink.Exception:
		return lavalink.Track{}, exceptionError(data, query)
	}
	return lavalink.Track{}, fmt.Errorf("%w: %s", ports.ErrNoMatches, query.Query)
}

// exceptionError reports a load exception in the words of the platform that raised it.
// Faults on the node side are transient.
func exceptionError(exception lavalink.Exception, query domain.SearchQuery) error {
	message := strings.TrimPrefix(exception.Message, "ERROR: ")
	err := fmt.Errorf("%s says: %q", platformName(query), message)
	if exception.Severity == lavalink.SeverityFault {
		return fmt.Errorf("%w: %w", ports.ErrResolverUnavailable, err)
	}
	return err
}

func platformName(query domain.SearchQuery) string {
	switch {
	case query.Source == domain.SourceSoundCloud,
		query.IsURL && strings.Contains(query.Query, "soundcloud.com"):
		return domain.TrackSourceSoundCloud.DisplayName()
	case query.IsURL && !isYouTubeURL(query.Query):
		return "Lavalink"
	default:
		return domain.TrackSourceYouTube.DisplayName()
	}
}

// convertTrack converts a Lavalink track to a domain track.
func convertTrack(track lavalink.Track) domain.Track {
	info := track.Info

	duration := domain.KnownDuration(time.Duration(info.Length) * time.Millisecond)
	if info.IsStream {
		duration = domain.UnknownDuration()
	}

	uri := stringValue(info.URI)

	return domain.Track{
		Identifier:  info.Identifier,
		Title:       info.Title,
		Artist:      info.Author,
		Duration:    duration,
		SourceURL:   uri,
		OriginalURL: uri,
		ArtworkURL:  stringValue(info.ArtworkURL),
		SourceName:  info.SourceName,
		IsStream:    info.IsStream,
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
