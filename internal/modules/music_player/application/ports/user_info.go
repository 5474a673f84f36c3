package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// UserInfo is how a track's requester is shown in the "Now Playing" footer.
type UserInfo struct {
	DisplayName string // guild nickname, falling back to the global name
	AvatarURL   string
}

// UserInfoProvider looks up requesters when a track starts, so renamed members
// show their current name rather than the one captured at request time.
type UserInfoProvider interface {
	GetUserInfo(guildID, requesterID snowflake.ID) (*UserInfo, error)
}
