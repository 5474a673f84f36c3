package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorError = 0x441111
)

// MessageSender is the subset of *discordgo.Session used by Notifier.
type MessageSender interface {
	ChannelMessageSendComplex(
		channelID string,
		data *discordgo.MessageSend,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Notifier sends notifications to Discord channels.
type Notifier struct {
	sender     MessageSender
	httpClient *http.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(sender MessageSender) *Notifier {
	return &Notifier{
		sender: sender,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendNowPlaying sends a "Now playing:" message with the track embed and returns its ID.
func (n *Notifier) SendNowPlaying(
	channelID snowflake.ID,
	info *ports.NowPlayingInfo,
) (snowflake.ID, error) {
	embed := nowPlayingEmbed(info)
	if thumbnailURL := n.getBestThumbnail(info.Track); thumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: thumbnailURL}
	}

	msg, err := n.sender.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Content: "Now playing:",
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		return 0, err
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// DeleteMessage deletes a message from the channel.
func (n *Notifier) DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error {
	return n.sender.ChannelMessageDelete(channelID.String(), messageID.String())
}

// SendError sends an "Error" embed to the channel.
func (n *Notifier) SendError(channelID snowflake.ID, message string) error {
	_, err := n.sender.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Error",
			Description: message,
			Color:       colorError,
		}},
	})
	return err
}

func nowPlayingEmbed(info *ports.NowPlayingInfo) *discordgo.MessageEmbed {
	track := info.Track

	embed := &discordgo.MessageEmbed{
		Title: track.Title,
		URL:   track.DisplayURL(),
		Color: track.Source().Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Track length", Value: track.FormattedDuration(), Inline: true},
		},
	}
	if track.Artist != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: track.Artist}
	}

	if info.Remaining > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Remaining in queue",
			Value:  strconv.Itoa(info.Remaining) + " (" + info.RemainingDuration + ")",
			Inline: true,
		})
	}
	if info.UpNext != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Up next",
			Value: fmt.Sprintf("%s (%s)", info.UpNext.Title, info.UpNext.FormattedDuration()),
		})
	}

	if info.RequesterName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    "Added by " + info.RequesterName,
			IconURL: info.RequesterAvatarURL,
		}
	}

	return embed
}

// getBestThumbnail attempts to find the best quality thumbnail for the track.
// For YouTube, it tries different quality levels (maxresdefault, sddefault, etc.).
// For other sources, it returns the original artwork URL.
func (n *Notifier) getBestThumbnail(track domain.Track) string {
	if track.Source() == domain.TrackSourceYouTube && track.Identifier != "" {
		return n.getYouTubeThumbnail(track.Identifier, track.ArtworkURL)
	}
	return track.ArtworkURL
}

// getYouTubeThumbnail tries to find the highest quality YouTube thumbnail available.
func (n *Notifier) getYouTubeThumbnail(videoID string, fallbackURL string) string {
	qualities := []string{"maxresdefault", "sddefault", "hqdefault"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range qualities {
		url := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality)
		if n.urlExists(ctx, url) {
			return url
		}
	}

	return fallbackURL
}

// urlExists checks if a URL returns a successful response using a HEAD request.
func (n *Notifier) urlExists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
