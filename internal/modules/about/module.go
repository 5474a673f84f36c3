package about

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/about/application"
	"github.com/sglre6355/jukebot/internal/modules/about/presentation"
)

func init() {
	bot.Register(&AboutModule{})
}

var _ bot.TextCommandModule = (*AboutModule)(nil)

// AboutModule provides the version command.
type AboutModule struct {
	versionHandler *presentation.VersionHandler
}

// Name returns the module name.
func (m *AboutModule) Name() string {
	return "about"
}

// Commands returns the slash commands for this module.
func (m *AboutModule) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "version",
			Description: "Display the bot's version",
		},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *AboutModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"version": m.versionHandler.Handle,
	}
}

// TextCommands returns the prefixed commands for this module.
func (m *AboutModule) TextCommands() []bot.TextCommand {
	return []bot.TextCommand{
		{
			Name:        "version",
			Aliases:     []string{"ver", "v"},
			Description: "Display the bot's version",
			Handler:     m.versionHandler.HandleText,
		},
	}
}

// EventHandlers returns the event handlers for this module.
func (m *AboutModule) EventHandlers() []bot.EventHandler {
	return nil
}

// Init initializes the module.
func (m *AboutModule) Init(deps bot.ModuleDependencies) error {
	cfg := deps.Config
	if cfg == nil {
		cfg = &bot.Config{BotName: "jukebot"}
	}

	m.versionHandler = presentation.NewVersionHandler(
		application.NewVersionInteractor(cfg.BotName, cfg.Version, cfg.RepositoryURL, nil),
	)
	return nil
}

// Shutdown cleans up module resources.
func (m *AboutModule) Shutdown() error {
	return nil
}
