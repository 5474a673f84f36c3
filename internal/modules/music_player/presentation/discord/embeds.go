package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorDefault = 0x114411
	colorSuccess = 0x08c404
	colorError   = 0x441111
)

const queueTitle = "Play Queue"

// Discord rejects embed descriptions longer than this.
const maxDescriptionLength = 4096

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

func successEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	}
}

// queueEmbed renders the queue listing. An empty queue gets a short notice.
func queueEmbed(listing *usecases.QueueListOutput) *discordgo.MessageEmbed {
	if listing == nil || len(listing.Entries) == 0 {
		return &discordgo.MessageEmbed{
			Title:       queueTitle,
			Description: "There are no tracks in the queue.",
			Color:       colorDefault,
		}
	}

	var sb strings.Builder
	for i, entry := range listing.Entries {
		line := queueLine(i+1, entry)
		if sb.Len()+len(line) > maxDescriptionLength {
			fmt.Fprintf(&sb, "... and %d more", len(listing.Entries)-i)
			break
		}
		sb.WriteString(line)
	}

	return &discordgo.MessageEmbed{
		Title:       queueTitle,
		Description: sb.String(),
		Color:       colorDefault,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tracks", Value: strconv.Itoa(len(listing.Entries)), Inline: true},
			{Name: "Total play time", Value: listing.TotalDuration.String(), Inline: true},
		},
	}
}

// queueLine writes one listing line. The period is escaped so Discord does not
// turn the listing into a markdown list.
func queueLine(position int, entry domain.QueueEntry) string {
	line := fmt.Sprintf(
		"%d\\.  %s (%s)",
		position,
		entry.Track.Title,
		entry.Track.FormattedDuration(),
	)
	if name := entry.Requester().Name; name != "" {
		line += fmt.Sprintf(" [Added by %s]", name)
	}
	return line + "\n"
}

func stoppingEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       queueTitle,
		Description: "There are no more tracks in the queue; stopping.",
		Color:       colorDefault,
	}
}

func trackLink(track domain.Track) string {
	if url := track.DisplayURL(); url != "" && strings.HasPrefix(url, "http") {
		return fmt.Sprintf("[%s](%s)", track.Title, url)
	}
	return fmt.Sprintf("**%s**", track.Title)
}

// errorMessage turns a use case error into the text shown to the member.
// Stream failures mention ownerID, if set, since they usually need a look at the audio node.
func errorMessage(err error, ownerID string) string {
	switch {
	case errors.Is(err, usecases.ErrNotInVoiceChannel):
		return "You are not connected to a voice channel."
	case errors.Is(err, usecases.ErrNoActiveSession), errors.Is(err, usecases.ErrNotPlaying):
		return "I'm not playing anything right now."
	case errors.Is(err, usecases.ErrEmptyQueue):
		return "There are no tracks in the queue."
	case errors.Is(err, usecases.ErrIndexOutOfRange):
		return "Provide the number of the track you'd like to delete."
	case errors.Is(err, usecases.ErrResolutionFailed):
		// The cause carries the platform's message, e.g. `YouTube says: "..."`.
		return capitalize(strings.TrimPrefix(err.Error(), usecases.ErrResolutionFailed.Error()+": "))
	case errors.Is(err, usecases.ErrStreamOpenFailed):
		msg := capitalize(strings.TrimPrefix(err.Error(), usecases.ErrStreamOpenFailed.Error()+": "))
		if ownerID != "" {
			msg = fmt.Sprintf("<@%s> %s", ownerID, msg)
		}
		return msg
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
