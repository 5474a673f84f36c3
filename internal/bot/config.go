package bot

import (
	"github.com/caarlos0/env/v11"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,notEmpty"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`
	OwnerID       string `env:"OWNER_ID"`
	BotName       string `env:"BOT_NAME"       envDefault:"jukebot"`
	LogLevel      string `env:"LOG_LEVEL"      envDefault:"info"`
	RepositoryURL string `env:"REPOSITORY_URL"`

	// Version is set by the binary at build time, not from the environment.
	Version string
}

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
