package bot

import (
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// Responder replies to the interaction a handler was invoked for.
type Responder interface {
	// Respond sends the initial response. It can be called once.
	Respond(response *discordgo.InteractionResponse) error

	// Edit replaces the initial response, e.g. a "working on it" placeholder.
	Edit(edit *discordgo.WebhookEdit) error
}

// DiscordResponder replies through a live session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	responded   atomic.Bool
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	if err := r.session.InteractionRespond(r.interaction, response); err != nil {
		return err
	}
	r.responded.Store(true)
	return nil
}

func (r *DiscordResponder) Edit(edit *discordgo.WebhookEdit) error {
	_, err := r.session.InteractionResponseEdit(r.interaction, edit)
	return err
}

// Responded reports whether the initial response has been sent.
func (r *DiscordResponder) Responded() bool {
	return r.responded.Load()
}

// MockResponder records what a handler sent.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	LastEdit     *discordgo.WebhookEdit
	Err          error
}

func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

func (m *MockResponder) Edit(edit *discordgo.WebhookEdit) error {
	m.LastEdit = edit
	return m.Err
}
