package bot

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// Bot owns the Discord session and dispatches interactions to modules.
type Bot struct {
	config        *Config
	session       *discordgo.Session
	modules       []Module
	handlers      map[string]InteractionHandler
	autocompletes map[string]AutocompleteHandler
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:        cfg,
		handlers:      make(map[string]InteractionHandler),
		autocompletes: make(map[string]AutocompleteHandler),
	}
}

// LoadModules takes the registered modules and loads the configuration of those
// implementing ConfigurableModule.
func (b *Bot) LoadModules() error {
	b.modules = Modules()

	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}

	return nil
}

// Start connects to Discord, initializes the modules and publishes their commands.
func (b *Bot) Start() error {
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	b.session = session

	// Modules need the bot user from the ready event.
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	if err := b.buildHandlerMap(); err != nil {
		return err
	}

	b.session.AddHandler(b.handleInteraction)
	b.registerEventHandlers()

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)

	return nil
}

// Stop shuts the modules down in reverse order and closes the session.
func (b *Bot) Stop() error {
	for i := len(b.modules) - 1; i >= 0; i-- {
		mod := b.modules[i]
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Session: b.session,
	}

	names := make([]string, 0, len(b.modules))
	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		names = append(names, mod.Name())
	}
	slog.Info("initialized modules", "modules", names)

	return nil
}

// buildHandlerMap indexes command and autocomplete handlers by command name.
// Two modules claiming the same command is a startup error.
func (b *Bot) buildHandlerMap() error {
	owners := make(map[string]string)

	for _, mod := range b.modules {
		for name, handler := range mod.CommandHandlers() {
			if owner, dup := owners[name]; dup {
				return fmt.Errorf("command %s registered by both %s and %s modules", name, owner, mod.Name())
			}
			owners[name] = mod.Name()
			b.handlers[name] = handler
		}

		if ac, ok := mod.(AutocompleteModule); ok {
			for name, handler := range ac.AutocompleteHandlers() {
				b.autocompletes[name] = handler
			}
		}
	}

	return nil
}

func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands replaces the application's commands with the modules' ones,
// so commands of removed modules disappear.
func (b *Bot) registerCommands() error {
	commands := b.collectCommands()

	// Empty guild ID registers commands globally
	registered, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID,
		b.config.GuildID,
		commands,
	)
	if err != nil {
		return err
	}

	slog.Info("registered commands", "count", len(registered), "guild", b.config.GuildID)
	return nil
}

// Embed colors for responses.
const (
	colorYellow = 0xFFFF00
	colorRed    = 0xFF0000
)

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.runCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.runAutocomplete(s, i)
	}
}

func (b *Bot) runCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmdName := i.ApplicationCommandData().Name
	handler, ok := b.handlers[cmdName]
	if !ok {
		slog.Warn("found no handler for command", "command", cmdName)
		reply(NewDiscordResponder(s, i.Interaction), "Unknown Command", "This command is not recognized.",
			colorYellow)
		return
	}

	logger := slog.With("command", cmdName, "correlation_id", uuid.NewString(), "guild", i.GuildID)
	logger.Debug("handling command")

	responder := NewDiscordResponder(s, i.Interaction)
	defer func() {
		if v := recover(); v != nil {
			logger.Error("command handler panicked", "panic", v, "stack", string(debug.Stack()))
			reply(responder, "Error", "An error occurred while processing your command.", colorRed)
		}
	}()

	if err := handler(s, i, responder); err != nil {
		logger.Error("failed to handle command", "error", err)
		reply(responder, "Error", "An error occurred while processing your command.", colorRed)
	}
}

func (b *Bot) runAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmdName := i.ApplicationCommandData().Name
	handler, ok := b.autocompletes[cmdName]
	if !ok {
		return
	}

	choices := handler(i)
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		slog.Debug("failed to send autocomplete choices", "command", cmdName, "error", err)
	}
}

// reply sends an embed, editing the initial response when one was already sent.
func reply(r *DiscordResponder, title, description string, color int) {
	embeds := []*discordgo.MessageEmbed{
		{
			Title:       title,
			Description: description,
			Color:       color,
		},
	}

	var err error
	if r.Responded() {
		content := ""
		err = r.Edit(&discordgo.WebhookEdit{Content: &content, Embeds: &embeds})
	} else {
		err = r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Embeds: embeds},
		})
	}
	if err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}
