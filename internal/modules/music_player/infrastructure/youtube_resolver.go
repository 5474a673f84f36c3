package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// youtubeClient is the subset of *youtube.Client used by YouTubeResolver.
type youtubeClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
	VideoFromPlaylistEntryContext(ctx context.Context, entry *youtube.PlaylistEntry) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

// YouTubeResolver extracts direct audio stream URLs from YouTube links.
// Anything that is not a YouTube URL goes to the fallback resolver.
type YouTubeResolver struct {
	client   youtubeClient
	fallback ports.TrackResolver
}

// NewYouTubeResolver creates a YouTubeResolver backed by kkdai/youtube.
func NewYouTubeResolver(fallback ports.TrackResolver) *YouTubeResolver {
	return &YouTubeResolver{
		client: &youtube.Client{
			HTTPClient: &http.Client{Timeout: 15 * time.Second},
		},
		fallback: fallback,
	}
}

// Resolve extracts the video, or the first video of a playlist.
func (r *YouTubeResolver) Resolve(
	ctx context.Context,
	query domain.SearchQuery,
) (*ports.ResolvedTrack, error) {
	if !query.IsURL || !isYouTubeURL(query.Query) {
		return r.fallback.Resolve(ctx, query)
	}

	video, err := r.video(ctx, query.Query)
	if err != nil {
		return nil, classifyYouTubeError(err)
	}

	formats := video.Formats.Type("audio")
	if len(formats) == 0 {
		formats = video.Formats.WithAudioChannels()
	}
	if len(formats) == 0 {
		return nil, errors.New(`YouTube says: "no audio formats available"`)
	}

	streamURL, err := r.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return nil, classifyYouTubeError(err)
	}

	pageURL := "https://www.youtube.com/watch?v=" + video.ID
	track := domain.Track{
		Identifier:  video.ID,
		Title:       video.Title,
		Artist:      video.Author,
		Duration:    domain.KnownDuration(video.Duration),
		SourceURL:   streamURL,
		OriginalURL: pageURL,
		SourceName:  string(domain.TrackSourceYouTube),
	}
	if video.Duration == 0 {
		track.Duration = domain.UnknownDuration()
		track.IsStream = true
	}
	if n := len(video.Thumbnails); n > 0 {
		track.ArtworkURL = video.Thumbnails[n-1].URL
	}

	return &ports.ResolvedTrack{
		Track:  track,
		Handle: ports.StreamHandle{URL: streamURL},
	}, nil
}

func (r *YouTubeResolver) video(ctx context.Context, rawURL string) (*youtube.Video, error) {
	if !isYouTubePlaylistURL(rawURL) {
		return r.client.GetVideoContext(ctx, rawURL)
	}

	playlist, err := r.client.GetPlaylistContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if len(playlist.Videos) == 0 {
		return nil, fmt.Errorf("%w: empty playlist", ports.ErrNoMatches)
	}
	return r.client.VideoFromPlaylistEntryContext(ctx, playlist.Videos[0])
}

// classifyYouTubeError marks network failures and server errors as transient
// and phrases everything else like the platform reported it.
func classifyYouTubeError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ports.ErrNoMatches) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ports.ErrResolverUnavailable, err)
	}
	var statusErr youtube.ErrUnexpectedStatusCode
	if errors.As(err, &statusErr) &&
		(int(statusErr) >= http.StatusInternalServerError || int(statusErr) == http.StatusTooManyRequests) {
		return fmt.Errorf("%w: %w", ports.ErrResolverUnavailable, err)
	}

	return fmt.Errorf("YouTube says: %q", strings.TrimPrefix(err.Error(), "ERROR: "))
}

func isYouTubeURL(raw string) bool {
	host := urlHost(raw)
	return host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

// isYouTubePlaylistURL reports whether the URL names a playlist rather than a video in one.
func isYouTubePlaylistURL(raw string) bool {
	parsed, err := url.Parse(normalizeURL(raw))
	if err != nil {
		return false
	}
	values := parsed.Query()
	return values.Get("list") != "" && values.Get("v") == "" && parsed.Host != "youtu.be"
}

func urlHost(raw string) string {
	parsed, err := url.Parse(normalizeURL(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func normalizeURL(raw string) string {
	if strings.HasPrefix(raw, "www.") {
		return "https://" + raw
	}
	return raw
}

var _ ports.TrackResolver = (*YouTubeResolver)(nil)
