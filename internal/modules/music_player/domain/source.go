package domain

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceBandcamp   TrackSource = "bandcamp"
	TrackSourceTwitch     TrackSource = "twitch"
	TrackSourceHTTP       TrackSource = "http"
	TrackSourceOther      TrackSource = "other"
)

// ParseTrackSource converts a source name string to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	switch name {
	case "youtube":
		return TrackSourceYouTube
	case "soundcloud":
		return TrackSourceSoundCloud
	case "bandcamp":
		return TrackSourceBandcamp
	case "twitch":
		return TrackSourceTwitch
	case "http":
		return TrackSourceHTTP
	default:
		return TrackSourceOther
	}
}

// Color returns the embed color associated with the source.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceYouTube:
		return 0xFF0000
	case TrackSourceSoundCloud:
		return 0xFF5500
	case TrackSourceBandcamp:
		return 0x629AA9
	case TrackSourceTwitch:
		return 0x9146FF
	default:
		return 0x114411
	}
}

// DisplayName returns the human-readable platform name.
func (s TrackSource) DisplayName() string {
	switch s {
	case TrackSourceYouTube:
		return "YouTube"
	case TrackSourceSoundCloud:
		return "SoundCloud"
	case TrackSourceBandcamp:
		return "Bandcamp"
	case TrackSourceTwitch:
		return "Twitch"
	case TrackSourceHTTP:
		return "HTTP"
	default:
		return "Source"
	}
}
