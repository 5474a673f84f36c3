package presentation

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/about/application"
)

const colorDefault = 0x114411

// VersionHandler handles the version command.
type VersionHandler struct {
	interactor *application.VersionInteractor
}

// NewVersionHandler creates a new VersionHandler.
func NewVersionHandler(interactor *application.VersionInteractor) *VersionHandler {
	return &VersionHandler{
		interactor: interactor,
	}
}

// Handle processes the /version command and sends the response.
func (h *VersionHandler) Handle(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{h.embed()},
		},
	})
}

// HandleText processes the prefixed version command.
func (h *VersionHandler) HandleText(
	_ *discordgo.Session,
	_ *discordgo.MessageCreate,
	_ string,
	r bot.Replier,
) error {
	return r.Reply(&discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{h.embed()},
	})
}

func (h *VersionHandler) embed() *discordgo.MessageEmbed {
	info := h.interactor.Execute()

	return &discordgo.MessageEmbed{
		Title:       "Version Info",
		Description: info.Description(),
		Color:       colorDefault,
	}
}
