package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

var (
	errInvalidGuild    = errors.New("this command only works in a server")
	errInvalidChannel  = errors.New("invalid channel")
	errMissingQuery    = errors.New("provide a URL or search query")
	errInvalidPosition = errors.New("provide the number of the track you'd like to delete")
)

// invocation identifies who ran a command and where.
type invocation struct {
	guildID   snowflake.ID
	channelID snowflake.ID
	requester domain.Requester
}

// reply is the message produced by a command, independent of whether it
// answers an interaction or a text message. The zero value sends nothing.
type reply struct {
	content string
	embed   *discordgo.MessageEmbed
}

func (r reply) empty() bool {
	return r.content == "" && r.embed == nil
}

func (r reply) embeds() []*discordgo.MessageEmbed {
	if r.embed == nil {
		return nil
	}
	return []*discordgo.MessageEmbed{r.embed}
}

func (r reply) interactionResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: r.content,
			Embeds:  r.embeds(),
		},
	}
}

func (r reply) webhookEdit() *discordgo.WebhookEdit {
	embeds := r.embeds()
	return &discordgo.WebhookEdit{
		Content: &r.content,
		Embeds:  &embeds,
	}
}

func (r reply) messageSend() *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: r.content,
		Embeds:  r.embeds(),
	}
}

func (h *CommandHandlers) errorReply(err error) reply {
	return reply{embed: errorEmbed(errorMessage(err, h.ownerID))}
}

func (h *CommandHandlers) join(
	ctx context.Context,
	inv invocation,
	voiceChannelID snowflake.ID,
) (reply, error) {
	output, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               inv.guildID,
		UserID:                inv.requester.ID,
		NotificationChannelID: inv.channelID,
		VoiceChannelID:        voiceChannelID,
	})
	if err != nil {
		return reply{}, err
	}

	return reply{
		embed: successEmbed(fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID)),
	}, nil
}

// play returns an empty reply for prefixed commands when the track started right
// away, since the now playing message already answers the request.
func (h *CommandHandlers) play(
	ctx context.Context,
	inv invocation,
	query string,
	quietStart bool,
) (reply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return reply{}, errMissingQuery
	}

	output, err := h.playback.Play(ctx, usecases.PlayRequestInput{
		GuildID:               inv.guildID,
		UserID:                inv.requester.ID,
		Query:                 query,
		Requester:             inv.requester,
		NotificationChannelID: inv.channelID,
	})
	if err != nil {
		return reply{}, err
	}

	if output.Started != nil {
		if quietStart {
			return reply{}, nil
		}
		return reply{
			embed: successEmbed(fmt.Sprintf("Started playing %s.", trackLink(*output.Started))),
		}, nil
	}

	content := fmt.Sprintf("Added to the queue at position %d.", output.Position)
	if output.Queued != nil {
		content = fmt.Sprintf(
			"Added **%s** to the queue at position %d.",
			output.Queued.Track.Title,
			output.Position,
		)
	}

	listing, err := h.queue.List(ctx, usecases.QueueListInput{GuildID: inv.guildID})
	if err != nil {
		// The session ended while the request was being queued.
		return reply{embed: successEmbed(content)}, nil
	}

	return reply{content: content, embed: queueEmbed(listing)}, nil
}

func (h *CommandHandlers) stop(ctx context.Context, inv invocation) (reply, error) {
	if err := h.playback.Stop(ctx, usecases.StopInput{GuildID: inv.guildID}); err != nil {
		return reply{}, err
	}

	return reply{embed: successEmbed("Stopped playing and left the voice channel.")}, nil
}

func (h *CommandHandlers) skip(ctx context.Context, inv invocation) (reply, error) {
	output, err := h.playback.Skip(ctx, usecases.SkipInput{
		GuildID:               inv.guildID,
		NotificationChannelID: inv.channelID,
	})
	if err != nil {
		return reply{}, err
	}

	if output.UpNext == nil {
		return reply{embed: stoppingEmbed()}, nil
	}

	return reply{
		embed: successEmbed(fmt.Sprintf(
			"Skipped %s. Up next: **%s**.",
			trackLink(output.Skipped),
			output.UpNext.Track.Title,
		)),
	}, nil
}

func (h *CommandHandlers) listQueue(ctx context.Context, inv invocation) (reply, error) {
	listing, err := h.queue.List(ctx, usecases.QueueListInput{
		GuildID:               inv.guildID,
		NotificationChannelID: inv.channelID,
	})
	if err != nil {
		return reply{}, err
	}

	return reply{embed: queueEmbed(listing)}, nil
}

func (h *CommandHandlers) delete(ctx context.Context, inv invocation, position int) (reply, error) {
	output, err := h.queue.Delete(ctx, usecases.QueueDeleteInput{
		GuildID:               inv.guildID,
		Position:              position,
		NotificationChannelID: inv.channelID,
	})
	if err != nil {
		return reply{}, err
	}

	return reply{
		content: fmt.Sprintf("Removed **%s**.", output.Removed.Track.Title),
		embed:   queueEmbed(output.Queue),
	}, nil
}

func (h *CommandHandlers) shuffle(ctx context.Context, inv invocation) (reply, error) {
	listing, err := h.queue.Shuffle(ctx, usecases.QueueShuffleInput{
		GuildID:               inv.guildID,
		NotificationChannelID: inv.channelID,
	})
	if err != nil {
		return reply{}, err
	}

	return reply{embed: queueEmbed(listing)}, nil
}

func (h *CommandHandlers) clear(ctx context.Context, inv invocation) (reply, error) {
	output, err := h.queue.Clear(ctx, usecases.QueueClearInput{
		GuildID:               inv.guildID,
		NotificationChannelID: inv.channelID,
	})
	if err != nil {
		return reply{}, err
	}

	return reply{embed: queueEmbed(output.Queue)}, nil
}

// parsePosition parses a 1-based queue position typed by a member.
func parsePosition(arg string) (int, error) {
	position, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || position < 1 {
		return 0, errInvalidPosition
	}
	return position, nil
}

// displayName returns the name a member is shown with in the guild.
func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
