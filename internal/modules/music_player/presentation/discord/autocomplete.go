package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
)

// Discord accepts at most 25 choices of up to 100 characters.
const (
	maxChoices       = 25
	maxChoiceLength  = 100
	minQueryLength   = 2
	searchTimeout    = 2500 * time.Millisecond
	searchSuggestion = 10
)

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	autocomplete *usecases.AutocompleteService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(autocomplete *usecases.AutocompleteService) *AutocompleteHandler {
	return &AutocompleteHandler{autocomplete: autocomplete}
}

// Handle routes an autocomplete interaction to the handler of its command.
func (h *AutocompleteHandler) Handle(i *discordgo.InteractionCreate, r bot.Responder) error {
	switch i.ApplicationCommandData().Name {
	case "play":
		return h.HandlePlay(i, r)
	case "delete":
		return h.HandleDelete(i, r)
	default:
		return nil
	}
}

// HandlePlay suggests search results for the play command.
func (h *AutocompleteHandler) HandlePlay(i *discordgo.InteractionCreate, r bot.Responder) error {
	// Autocomplete must answer within three seconds.
	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	// Get the current query value
	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" && opt.Focused {
			query = opt.StringValue()
			break
		}
	}

	// Don't search for very short queries
	if len([]rune(query)) < minQueryLength {
		return respondChoices(r, nil)
	}

	output, err := h.autocomplete.SearchTracks(ctx, usecases.SearchTracksInput{
		Query: query,
		Limit: searchSuggestion,
	})
	if err != nil {
		slog.Debug("autocomplete search failed", "query", query, "error", err)
		return respondChoices(r, nil)
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(output.Tracks))
	for _, track := range output.Tracks {
		if track.URI == "" || len(track.URI) > maxChoiceLength {
			continue
		}
		name := track.Title
		if track.Artist != "" {
			name = fmt.Sprintf("%s - %s", track.Title, track.Artist)
		}
		if track.Duration.IsKnown() && !track.IsStream {
			name = fmt.Sprintf("%s (%s)", truncate(name, maxChoiceLength-12), track.Duration)
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(name, maxChoiceLength),
			Value: track.URI,
		})
	}

	return respondChoices(r, choices)
}

// HandleDelete suggests queue positions for the delete command.
func (h *AutocompleteHandler) HandleDelete(i *discordgo.InteractionCreate, r bot.Responder) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		slog.Warn("failed to parse guild ID in autocomplete", "error", err, "guild", i.GuildID)
		return respondChoices(r, nil)
	}

	output := h.autocomplete.GetQueueEntries(context.Background(), usecases.GetQueueEntriesInput{
		GuildID: guildID,
	})

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, min(len(output.Entries), maxChoices))
	for idx, entry := range output.Entries {
		if idx == maxChoices {
			break
		}
		// 1-indexed positions to match the queue listing
		position := idx + 1
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%d. %s", position, entry.Track.Title), maxChoiceLength),
			Value: position,
		})
	}

	return respondChoices(r, choices)
}

func respondChoices(r bot.Responder, choices []*discordgo.ApplicationCommandOptionChoice) error {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
