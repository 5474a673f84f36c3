package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// playTimeout bounds a deferred /play. Interaction tokens stay valid for 15 minutes.
const playTimeout = 2 * time.Minute

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService
	ownerID      string // mentioned when an audio stream cannot be opened
}

// NewCommandHandlers creates new CommandHandlers. ownerID may be empty.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	ownerID string,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		queue:        queue,
		ownerID:      ownerID,
	}
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := interactionInvocation(i)
	if err != nil {
		return h.respondError(r, err)
	}

	var voiceChannelID snowflake.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name != "channel" {
			continue
		}
		value, _ := opt.Value.(string)
		voiceChannelID, err = snowflake.Parse(value)
		if err != nil {
			return h.respondError(r, errInvalidChannel)
		}
	}

	return h.respond(r, func(ctx context.Context) (reply, error) {
		return h.join(ctx, inv, voiceChannelID)
	})
}

// HandlePlay handles the /play command. Resolving can take a while,
// so the interaction is deferred and the response edited afterwards.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := interactionInvocation(i)
	if err != nil {
		return h.respondError(r, err)
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	if err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()

	result, err := h.play(ctx, inv, query, false)
	if err != nil {
		return r.EditResponse(h.errorReply(err).webhookEdit())
	}

	return r.EditResponse(result.webhookEdit())
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := interactionInvocation(i)
	if err != nil {
		return h.respondError(r, err)
	}

	return h.respond(r, func(ctx context.Context) (reply, error) {
		return h.stop(ctx, inv)
	})
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := interactionInvocation(i)
	if err != nil {
		return h.respondError(r, err)
	}

	return h.respond(r, func(ctx context.Context) (reply, error) {
		return h.skip(ctx, inv)
	})
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := interactionInvocation(i)
	if err != nil {
		return h.respondError(r, err)
	}

	return h.respond(r, func(ctx context.Context) (reply, error) {
		return h.listQueue(ctx, inv)
	})
}

// HandleDelete handles the /delete command.
func (h *CommandHandlers) HandleDelete(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := interactionInvocation(i)
	if err != nil {
		return h.respondError(r, err)
	}

	var position int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "position" {
			position = int(opt.IntValue())
		}
	}
	if position < 1 {
		return h.respondError(r, errInvalidPosition)
	}

	return h.respond(r, func(ctx context.Context) (reply, error) {
		return h.delete(ctx, inv, position)
	})
}

// HandleShuffle handles the /shuffle command.
func (h *CommandHandlers) HandleShuffle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := interactionInvocation(i)
	if err != nil {
		return h.respondError(r, err)
	}

	return h.respond(r, func(ctx context.Context) (reply, error) {
		return h.shuffle(ctx, inv)
	})
}

// HandleClear handles the /clear command.
func (h *CommandHandlers) HandleClear(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := interactionInvocation(i)
	if err != nil {
		return h.respondError(r, err)
	}

	return h.respond(r, func(ctx context.Context) (reply, error) {
		return h.clear(ctx, inv)
	})
}

func (h *CommandHandlers) respond(
	r bot.Responder,
	action func(ctx context.Context) (reply, error),
) error {
	result, err := action(context.Background())
	if err != nil {
		return h.respondError(r, err)
	}
	return r.Respond(result.interactionResponse())
}

// Response helpers.

func (h *CommandHandlers) respondError(r bot.Responder, err error) error {
	return r.Respond(h.errorReply(err).interactionResponse())
}

func interactionInvocation(i *discordgo.InteractionCreate) (invocation, error) {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil || i.Member == nil || i.Member.User == nil {
		return invocation{}, errInvalidGuild
	}

	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return invocation{}, errInvalidChannel
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return invocation{}, errInvalidGuild
	}

	return invocation{
		guildID:   guildID,
		channelID: channelID,
		requester: domain.Requester{
			ID:        userID,
			Name:      displayName(i.Member, i.Member.User),
			AvatarURL: i.Member.AvatarURL(""),
		},
	}, nil
}
