package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
)

var _ ports.UserInfoProvider = (*DiscordUserInfoProvider)(nil)

// MemberFetcher fetches guild members over REST. *discordgo.Session implements it.
type MemberFetcher interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// DiscordUserInfoProvider resolves requester names and avatars,
// preferring the gateway state cache over a REST lookup.
type DiscordUserInfoProvider struct {
	state   *discordgo.State
	fetcher MemberFetcher
}

// NewDiscordUserInfoProvider creates a new DiscordUserInfoProvider. state may be nil.
func NewDiscordUserInfoProvider(
	state *discordgo.State,
	fetcher MemberFetcher,
) *DiscordUserInfoProvider {
	return &DiscordUserInfoProvider{state: state, fetcher: fetcher}
}

// GetUserInfo returns display info for a user in a guild.
func (p *DiscordUserInfoProvider) GetUserInfo(
	guildID, userID snowflake.ID,
) (*ports.UserInfo, error) {
	var member *discordgo.Member
	if p.state != nil {
		member, _ = p.state.Member(guildID.String(), userID.String())
	}
	if member == nil || member.User == nil {
		fetched, err := p.fetcher.GuildMember(guildID.String(), userID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch guild member: %w", err)
		}
		member = fetched
	}

	return &ports.UserInfo{
		DisplayName: displayName(member),
		AvatarURL:   member.AvatarURL(""),
	}, nil
}

// displayName returns the effective display name for a guild member.
// Priority: guild nickname > global display name > username.
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
