package bot

import "github.com/bwmarrin/discordgo"

// InteractionHandler handles a slash command. Returning an error makes the bot
// reply with a generic failure message.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// AutocompleteHandler returns the choices for the focused option of a command.
// It must return within Discord's three second autocomplete window.
type AutocompleteHandler func(i *discordgo.InteractionCreate) []*discordgo.ApplicationCommandOptionChoice

// EventHandler is any discordgo handler function,
// e.g., func(s *discordgo.Session, e *discordgo.VoiceStateUpdate)
type EventHandler any

// ModuleDependencies is what the host hands to every module on Init.
// The session is already connected, so State.User is populated.
type ModuleDependencies struct {
	Session *discordgo.Session
}

// Module is a self-contained feature set of the bot.
type Module interface {
	// Name is unique across registered modules.
	Name() string

	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps every command name from Commands to its handler.
	CommandHandlers() map[string]InteractionHandler

	EventHandlers() []EventHandler

	Init(deps ModuleDependencies) error

	Shutdown() error
}

// ConfigurableModule is implemented by modules that read their own configuration.
// LoadConfig runs before Discord is contacted, so a missing setting fails startup early.
type ConfigurableModule interface {
	LoadConfig() error
}

// AutocompleteModule is implemented by modules whose commands have autocompleted options.
type AutocompleteModule interface {
	AutocompleteHandlers() map[string]AutocompleteHandler
}
