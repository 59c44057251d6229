package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// voiceConnectionTimeout bounds how long a join waits for the voice handshake.
const voiceConnectionTimeout = 10 * time.Second

// LavalinkAdapter wraps DisGoLink to implement the port interfaces.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	handshakes *voiceHandshakes

	localRoot string
	nodeRoot  string

	publisher ports.EventPublisher
}

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string

	// LocalMediaRoot is the media cache directory on this host.
	LocalMediaRoot string
	// NodeMediaRoot is the same directory as mounted on the Lavalink node.
	// Empty means the node shares this host's filesystem layout.
	NodeMediaRoot string
}

// NewLavalinkAdapter creates a new LavalinkAdapter.
// Track end events are published to publisher.
func NewLavalinkAdapter(
	session *discordgo.Session,
	config LavalinkConfig,
	publisher ports.EventPublisher,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:    session,
		botID:      botID,
		handshakes: newVoiceHandshakes(),
		localRoot:  config.LocalMediaRoot,
		nodeRoot:   config.NodeMediaRoot,
		publisher:  publisher,
	}

	// Create DisGoLink client
	link := disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)
	adapter.link = link

	// Add Lavalink node
	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// Close closes the connections to every Lavalink node.
func (c *LavalinkAdapter) Close() {
	c.link.Close()
}

// JoinChannel asks Discord to move the bot into the channel.
// It returns once Lavalink has received the complete voice handshake.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	ctx, cancel := context.WithTimeout(ctx, voiceConnectionTimeout)
	defer cancel()

	ready := c.handshakes.get(guildID).wait()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for voice connection in guild %s: %w", guildID, ctx.Err())
	}
}

// LeaveChannel disconnects from the voice channel.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	// Destroy the player
	player := c.link.ExistingPlayer(guildID)
	if player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	// Leave voice channel
	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play loads the media file on the Lavalink node and starts it, replacing the current track.
func (c *LavalinkAdapter) Play(
	ctx context.Context,
	guildID snowflake.ID,
	media domain.Media,
	sequence uint64,
) error {
	node := c.link.BestNode()
	if node == nil {
		return errors.New("no available Lavalink node")
	}

	identifier := c.nodePath(media.Path)
	result, err := node.LoadTracks(ctx, identifier)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", identifier, err)
	}

	track, err := firstTrack(result)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", identifier, err)
	}

	player := c.link.Player(guildID)

	// WithTrack would send the loaded track's userData:null.
	err = player.Update(ctx,
		lavalink.WithEncodedTrack(track.Encoded),
		lavalink.WithTrackUserData(trackUserData{Sequence: sequence}),
	)
	if err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// Stop stops the current playback.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.ExistingPlayer(guildID)
	if player == nil || player.Track() == nil {
		return nil
	}

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	return nil
}

// nodePath translates a local cache path to the path the Lavalink node sees.
func (c *LavalinkAdapter) nodePath(path string) string {
	if c.nodeRoot == "" || c.localRoot == "" {
		return path
	}

	rel, err := filepath.Rel(c.localRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(filepath.Join(c.nodeRoot, rel))
}

// trackUserData is attached to every track the adapter starts.
type trackUserData struct {
	Sequence uint64 `json:"sequence"`
}

// trackSequence returns the play sequence a track was started with, or 0.
func trackSequence(track lavalink.Track) uint64 {
	if len(track.UserData) == 0 {
		return 0
	}

	var data trackUserData
	if err := json.Unmarshal(track.UserData, &data); err != nil {
		slog.Debug("ignoring unreadable track user data", "error", err)
		return 0
	}
	return data.Sequence
}

// firstTrack returns the playable track of a load result.
func firstTrack(result *lavalink.LoadResult) (lavalink.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, nil
	case lavalink.Playlist:
		if len(data.Tracks) > 0 {
			return data.Tracks[0], nil
		}
	case lavalink.Search:
		if len(data) > 0 {
			return data[0], nil
		}
	case lavalink.Exception:
		return lavalink.Track{}, fmt.Errorf("%w: %s", domain.ErrMediaUnavailable, data.Message)
	}
	return lavalink.Track{}, domain.ErrMediaUnavailable
}

// OnVoiceServerUpdate must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	if pair, ok := c.handshakes.get(guildID).withServer(event.Token, event.Endpoint); ok {
		c.forward(guildID, pair)
	}
}

// OnVoiceStateUpdate must be called from the Discord event handler.
// Updates of other users are ignored.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// A disconnect needs no server half.
	if event.ChannelID == "" {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.handshakes.get(guildID).reset()
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	if pair, ok := c.handshakes.get(guildID).withState(channelID, event.SessionID); ok {
		c.forward(guildID, pair)
	}
}

// forward hands a complete handshake to Lavalink, state first.
func (c *LavalinkAdapter) forward(guildID snowflake.ID, pair voicePair) {
	slog.Debug("forwarding voice handshake to Lavalink", "guild", guildID, "channel", pair.channelID)

	ctx := context.Background()
	c.link.OnVoiceStateUpdate(ctx, guildID, &pair.channelID, pair.sessionID)
	c.link.OnVoiceServerUpdate(ctx, guildID, pair.token, pair.endpoint)
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	if c.publisher == nil {
		return
	}

	err := c.publisher.Publish(domain.TrackEndedEvent{
		GuildID:  player.GuildID(),
		Reason:   convertEndReason(event.Reason),
		Sequence: trackSequence(event.Track),
	})
	if err != nil {
		slog.Warn("failed to publish track end", "guild", player.GuildID(), "error", err)
	}
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
)
