package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// QueueEntry is an alias for domain.QueueEntry.
type QueueEntry = domain.QueueEntry

// Requester is an alias for domain.Requester.
type Requester = domain.Requester

// Duration is an alias for domain.Duration.
type Duration = domain.Duration

// SessionRepository stores the GuildController of every guild with an active session.
type SessionRepository interface {
	Get(guildID snowflake.ID) (*GuildController, bool)
	Save(guildID snowflake.ID, controller *GuildController)
	// CompareAndDelete removes the entry only if it is still controller.
	CompareAndDelete(guildID snowflake.ID, controller *GuildController) bool
}
