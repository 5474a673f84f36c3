package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// TextCommands returns the prefixed commands of the music player.
func (h *CommandHandlers) TextCommands() []bot.TextCommand {
	return []bot.TextCommand{
		{
			Name:        "join",
			Description: "Join the voice channel that you are currently in",
			Handler: h.textHandler(func(ctx context.Context, inv invocation, _ string) (reply, error) {
				return h.join(ctx, inv, 0)
			}),
		},
		{
			Name:        "play",
			Aliases:     []string{"p"},
			Description: "Add a track to the queue, or play immediately if nothing is playing",
			Handler: h.textHandler(func(ctx context.Context, inv invocation, args string) (reply, error) {
				return h.play(ctx, inv, args, true)
			}),
		},
		{
			Name:        "stop",
			Aliases:     []string{"leave"},
			Description: "Stop playing and disconnect from the voice channel",
			Handler: h.textHandler(func(ctx context.Context, inv invocation, _ string) (reply, error) {
				return h.stop(ctx, inv)
			}),
		},
		{
			Name:        "skip",
			Aliases:     []string{"next"},
			Description: "Skip the current track and go to the next track in the queue",
			Handler: h.textHandler(func(ctx context.Context, inv invocation, _ string) (reply, error) {
				return h.skip(ctx, inv)
			}),
		},
		{
			Name:        "queue",
			Aliases:     []string{"q"},
			Description: "List the current play queue",
			Handler: h.textHandler(func(ctx context.Context, inv invocation, _ string) (reply, error) {
				return h.listQueue(ctx, inv)
			}),
		},
		{
			Name:        "delete",
			Aliases:     []string{"del", "d"},
			Description: "Delete an entry from the play queue",
			Handler: h.textHandler(func(ctx context.Context, inv invocation, args string) (reply, error) {
				position, err := parsePosition(args)
				if err != nil {
					return reply{}, err
				}
				return h.delete(ctx, inv, position)
			}),
		},
		{
			Name:        "shuffle",
			Aliases:     []string{"shuf"},
			Description: "Shuffle the play queue",
			Handler: h.textHandler(func(ctx context.Context, inv invocation, _ string) (reply, error) {
				return h.shuffle(ctx, inv)
			}),
		},
		{
			Name:        "clear",
			Aliases:     []string{"nuke"},
			Description: "Clear the play queue",
			Handler: h.textHandler(func(ctx context.Context, inv invocation, _ string) (reply, error) {
				return h.clear(ctx, inv)
			}),
		},
	}
}

type textAction func(ctx context.Context, inv invocation, args string) (reply, error)

// textHandler adapts an action to a bot.TextHandler. Failures are answered with an
// error embed here, so the bot only sees transport errors.
func (h *CommandHandlers) textHandler(action textAction) bot.TextHandler {
	return func(_ *discordgo.Session, m *discordgo.MessageCreate, args string, r bot.Replier) error {
		inv, err := messageInvocation(m)
		if err != nil {
			return r.Reply(h.errorReply(err).messageSend())
		}

		result, err := action(context.Background(), inv, args)
		if err != nil {
			return r.Reply(h.errorReply(err).messageSend())
		}
		if result.empty() {
			return nil
		}
		return r.Reply(result.messageSend())
	}
}

func messageInvocation(m *discordgo.MessageCreate) (invocation, error) {
	if m.Author == nil {
		return invocation{}, errInvalidGuild
	}

	guildID, err := snowflake.Parse(m.GuildID)
	if err != nil {
		return invocation{}, errInvalidGuild
	}

	channelID, err := snowflake.Parse(m.ChannelID)
	if err != nil {
		return invocation{}, errInvalidChannel
	}

	userID, err := snowflake.Parse(m.Author.ID)
	if err != nil {
		return invocation{}, errInvalidGuild
	}

	return invocation{
		guildID:   guildID,
		channelID: channelID,
		requester: domain.Requester{
			ID:        userID,
			Name:      displayName(m.Member, m.Author),
			AvatarURL: m.Author.AvatarURL(""),
		},
	}, nil
}
