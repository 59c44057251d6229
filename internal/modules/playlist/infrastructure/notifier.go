package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
)

// Embed colors.
const (
	colorGold     = 0xF1C40F
	colorRed      = 0xE74C3C
	colorDarkGrey = 0x607D8B
)

// youtubeThumbnailQualities are tried best first.
var youtubeThumbnailQualities = []string{"maxresdefault", "sddefault", "hqdefault"}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)

// Notifier posts playback notices to a guild's notification channel.
type Notifier struct {
	session    *discordgo.Session
	httpClient *http.Client

	// thumbnailBaseURL is overridden in tests.
	thumbnailBaseURL string
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session:          session,
		httpClient:       &http.Client{Timeout: 5 * time.Second},
		thumbnailBaseURL: "https://img.youtube.com/vi",
	}
}

func (n *Notifier) SendNowPlaying(channelID snowflake.ID, info *ports.NowPlayingInfo) error {
	return n.send(channelID, nowPlayingEmbed(info, n.thumbnail(info)))
}

func (n *Notifier) SendPlaybackFailed(channelID snowflake.ID, info *ports.NowPlayingInfo) error {
	return n.send(channelID, playbackFailedEmbed(info))
}

func (n *Notifier) SendQueueFinished(channelID snowflake.ID) error {
	return n.send(channelID, queueFinishedEmbed())
}

func (n *Notifier) send(channelID snowflake.ID, embed *discordgo.MessageEmbed) error {
	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

func nowPlayingEmbed(info *ports.NowPlayingInfo, thumbnailURL string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       ":musical_note:  **Now playing**",
		Description: itemMarkdown(info),
		Color:       colorGold,
	}
	if info.Duration != "" {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: info.Duration, Inline: true},
		}
	}
	if thumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnailURL}
	}
	return embed
}

func playbackFailedEmbed(info *ports.NowPlayingInfo) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       ":musical_note:  **Cannot play**",
		Description: itemMarkdown(info),
		Color:       colorRed,
	}
}

func queueFinishedEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       ":musical_note:  **Queue finished**",
		Description: "Left voice channel",
		Color:       colorDarkGrey,
	}
}

func itemMarkdown(info *ports.NowPlayingInfo) string {
	if info.URL == "" {
		return info.Title
	}
	return fmt.Sprintf("[%s](%s)", info.Title, info.URL)
}

// thumbnail picks the best YouTube thumbnail that exists.
// Other extractors keep the thumbnail they were resolved with.
func (n *Notifier) thumbnail(info *ports.NowPlayingInfo) string {
	if info.Extractor != youtubeExtractor || info.ID == "" {
		return info.ThumbnailURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range youtubeThumbnailQualities {
		url := fmt.Sprintf("%s/%s/%s.jpg", n.thumbnailBaseURL, info.ID, quality)
		if n.exists(ctx, url) {
			return url
		}
	}
	return info.ThumbnailURL
}

func (n *Notifier) exists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}
