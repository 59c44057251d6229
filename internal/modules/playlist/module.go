package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/bot"
	"github.com/sglre6355/potbot/internal/modules/playlist/application"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/usecases"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
	"github.com/sglre6355/potbot/internal/modules/playlist/infrastructure"
	"github.com/sglre6355/potbot/internal/modules/playlist/presentation/discord"
)

func init() {
	bot.Register(&PlaylistModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*PlaylistModule)(nil)
	_ bot.AutocompleteModule = (*PlaylistModule)(nil)
)

// PlaylistModule provides the per-guild playback queue commands.
type PlaylistModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	cacheIndex      *infrastructure.CacheIndex

	// Track end events drive the queue; notices only reach Discord.
	// They use separate buses so a slow notice never delays the next item.
	controlBus          *infrastructure.ChannelEventBus
	noticeBus           *infrastructure.ChannelEventBus
	playbackHandler     *application.PlaybackEventHandler
	notificationHandler *application.NotificationEventHandler

	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *PlaylistModule) Name() string {
	return "playlist"
}

// Commands returns the slash commands for this module.
func (m *PlaylistModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *PlaylistModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":  m.commandHandlers.HandleJoin,
		"leave": m.commandHandlers.HandleLeave,
		"play":  m.commandHandlers.HandlePlay,
		"skip":  m.commandHandlers.HandleSkip,
		"queue": m.commandHandlers.HandleQueue,
		"clear": m.commandHandlers.HandleClear,
	}
}

// AutocompleteHandlers returns the autocomplete handlers for this module.
func (m *PlaylistModule) AutocompleteHandlers() map[string]bot.AutocompleteHandler {
	return map[string]bot.AutocompleteHandler{
		"play": m.autocomplete.HandlePlay,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *PlaylistModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *PlaylistModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *PlaylistModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		slog.Warn("playlist module initialized without session, voice playback disabled")
		return m.initWithoutSession()
	}

	return m.initWithSession(deps)
}

// initWithoutSession wires the commands that only read the registry.
// Voice commands fail at runtime.
func (m *PlaylistModule) initWithoutSession() error {
	registry := infrastructure.NewMemoryRegistry()
	queue := usecases.NewQueueService(registry)

	m.commandHandlers = discord.NewCommandHandlers(nil, nil, nil, queue)
	m.autocomplete = discord.NewAutocompleteHandler(usecases.NewAutocompleteService(nil))

	return nil
}

func (m *PlaylistModule) initWithSession(deps bot.ModuleDependencies) error {
	if m.config == nil {
		return errors.New("playlist module config not loaded")
	}
	cfg := m.config

	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.controlBus = infrastructure.NewChannelEventBus(cfg.EventBufferSize)
	m.noticeBus = infrastructure.NewChannelEventBus(cfg.EventBufferSize)

	// Media cache
	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath()), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	cacheIndex, err := infrastructure.OpenCacheIndex(cfg.IndexPath())
	if err != nil {
		return err
	}
	m.cacheIndex = cacheIndex

	downloader, err := infrastructure.NewYTDLPDownloader(m.ctx, infrastructure.YTDLPConfig{
		Format: cfg.AudioFormat,
		Executables: map[domain.Backend]string{
			domain.BackendYTDLP:     cfg.YTDLPPath,
			domain.BackendYoutubeDL: cfg.YoutubeDLPath,
		},
		AutoInstall: cfg.YTDLPAutoInstall,
	})
	if err != nil {
		return err
	}

	mediaRoot, err := filepath.Abs(cfg.MediaDir())
	if err != nil {
		return fmt.Errorf("failed to resolve media directory: %w", err)
	}
	mediaCache := infrastructure.NewMediaCache(infrastructure.MediaCacheConfig{
		Root:         mediaRoot,
		LimitBytes:   cfg.CacheLimitBytes,
		FetchTimeout: cfg.MediaFetchTimeout,
	}, downloader, cacheIndex)

	// Voice transport
	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		deps.Session,
		infrastructure.LavalinkConfig{
			Address:        cfg.LavalinkAddress,
			Password:       cfg.LavalinkPassword,
			LocalMediaRoot: mediaRoot,
			NodeMediaRoot:  cfg.LavalinkMediaDir,
		},
		m.controlBus,
	)
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Metadata and suggestions
	youtube := infrastructure.NewYouTubeClient(infrastructure.YouTubeConfig{
		APIKey:    cfg.YouTubeToken,
		RateLimit: cfg.YouTubeRateLimit,
	})
	describers := []ports.LinkDescriber{youtube}
	if cfg.SpotifyEnabled() {
		describers = append(describers,
			infrastructure.NewSpotifyDescriber(m.ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret))
	}

	// Create infrastructure
	registry := infrastructure.NewMemoryRegistry()
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfoProv := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)

	// Create services
	voiceChannel := usecases.NewVoiceChannelService(registry, lavalinkAdapter, voiceState)
	playback := usecases.NewPlaybackService(
		registry,
		mediaCache,
		lavalinkAdapter,
		lavalinkAdapter,
		m.noticeBus,
	)
	resolver := usecases.NewResolverService(youtube, downloader)
	play := usecases.NewPlayService(registry, voiceChannel, resolver, playback, userInfoProv)
	queue := usecases.NewQueueService(registry)
	autocomplete := usecases.NewAutocompleteService(infrastructure.NewSearchSuggester(), describers...)

	// Register application event handlers
	m.playbackHandler = application.NewPlaybackEventHandler(playback, m.controlBus)
	m.notificationHandler = application.NewNotificationEventHandler(m.noticeBus, notifier)
	if err := m.playbackHandler.Start(); err != nil {
		return err
	}
	if err := m.notificationHandler.Start(); err != nil {
		return err
	}

	// Create presentation handlers
	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return err
	}
	m.commandHandlers = discord.NewCommandHandlers(voiceChannel, playback, play, queue)
	m.autocomplete = discord.NewAutocompleteHandler(autocomplete)
	m.eventHandlers = discord.NewEventHandlers(botID, voiceChannel)

	slog.Info("playlist module initialized",
		"media_dir", mediaRoot,
		"cache_limit_bytes", cfg.CacheLimitBytes,
		"spotify", cfg.SpotifyEnabled(),
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *PlaylistModule) Shutdown() error {
	// Cancel context first to signal event handlers to stop
	if m.cancel != nil {
		m.cancel()
	}

	if m.controlBus != nil {
		m.controlBus.Close()
	}
	if m.noticeBus != nil {
		m.noticeBus.Close()
	}

	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	if m.cacheIndex != nil {
		return m.cacheIndex.Close()
	}

	return nil
}

// Event handlers.

func (m *PlaylistModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *PlaylistModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
