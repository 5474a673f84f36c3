package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// EntryID uniquely identifies a queue entry.
type EntryID string

// QueueEntry is a pending play request waiting in a PlayQueue.
type QueueEntry struct {
	ID                    EntryID
	Query                 string
	Track                 Track // Best known metadata; synthesized from Query until resolved
	NotificationChannelID snowflake.ID
	EnqueuedAt            time.Time
}

// NewQueueEntry creates an entry for a request that has not been resolved yet.
func NewQueueEntry(
	query string,
	requester Requester,
	notificationChannelID snowflake.ID,
) QueueEntry {
	return QueueEntry{
		ID:                    EntryID(uuid.NewString()),
		Query:                 query,
		Track:                 NewQueryTrack(query, requester),
		NotificationChannelID: notificationChannelID,
		EnqueuedAt:            time.Now().UTC(),
	}
}

// Requester returns the member who requested the entry.
func (e QueueEntry) Requester() Requester {
	return e.Track.Requester
}
