package bot

import "github.com/bwmarrin/discordgo"

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends a response to an interaction.
	Respond(response *discordgo.InteractionResponse) error

	// EditResponse replaces the original (possibly deferred) response.
	EditResponse(edit *discordgo.WebhookEdit) error
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// EditResponse edits the original interaction response via Discord API.
func (r *DiscordResponder) EditResponse(edit *discordgo.WebhookEdit) error {
	_, err := r.session.InteractionResponseEdit(r.interaction, edit)
	return err
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	LastEdit     *discordgo.WebhookEdit
	Err          error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// EditResponse records the edit for testing.
func (m *MockResponder) EditResponse(edit *discordgo.WebhookEdit) error {
	m.LastEdit = edit
	return m.Err
}

// Replier answers a text command message.
type Replier interface {
	// Reply sends a message that references the command message.
	Reply(message *discordgo.MessageSend) error
}

// DiscordReplier implements Replier using a live Discord session.
type DiscordReplier struct {
	session *discordgo.Session
	message *discordgo.Message
}

// NewDiscordReplier creates a new DiscordReplier.
func NewDiscordReplier(s *discordgo.Session, m *discordgo.Message) *DiscordReplier {
	return &DiscordReplier{
		session: s,
		message: m,
	}
}

// Reply sends the message as a reply via Discord API.
func (r *DiscordReplier) Reply(message *discordgo.MessageSend) error {
	message.Reference = r.message.Reference()
	_, err := r.session.ChannelMessageSendComplex(r.message.ChannelID, message)
	return err
}

// MockReplier is a test double for Replier.
type MockReplier struct {
	Replies []*discordgo.MessageSend
	Err     error
}

// Reply records the message for testing.
func (m *MockReplier) Reply(message *discordgo.MessageSend) error {
	m.Replies = append(m.Replies, message)
	return m.Err
}

// LastReply returns the most recent reply, or nil.
func (m *MockReplier) LastReply() *discordgo.MessageSend {
	if len(m.Replies) == 0 {
		return nil
	}
	return m.Replies[len(m.Replies)-1]
}
