package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/bot"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	play         *usecases.PlayService
	queue        *usecases.QueueService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	play *usecases.PlayService,
	queue *usecases.QueueService,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		play:         play,
		queue:        queue,
	}
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, problem := parseIDs(i)
	if problem != "" {
		return respondError(r, problem)
	}

	output, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guild,
		UserID:                ids.user,
		NotificationChannelID: ids.channel,
	})
	if err != nil {
		return respondUsecaseError(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Joined <#%d>!", output.VoiceChannelID))
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, problem := parseIDs(i)
	if problem != "" {
		return respondError(r, problem)
	}

	err := h.voiceChannel.Leave(ctx, usecases.LeaveInput{
		GuildID: ids.guild,
		UserID:  ids.user,
	})
	if err != nil {
		return respondUsecaseError(r, err)
	}

	return respondSuccess(r, "Disconnected")
}

// HandlePlay handles the /play command.
// It acknowledges with "Adding..." right away and edits the reply once the request is queued.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, problem := parseIDs(i)
	if problem != "" {
		return respondError(r, problem)
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Adding...",
		},
	})
	if err != nil {
		return err
	}

	output, err := h.play.Play(ctx, usecases.PlayInput{
		GuildID:               ids.guild,
		UserID:                ids.user,
		NotificationChannelID: ids.channel,
		Query:                 query,
	})
	if err != nil {
		return editError(r, playErrorMessage(err))
	}

	return editEmbed(r, addedEmbed(output))
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, problem := parseIDs(i)
	if problem != "" {
		return respondError(r, problem)
	}

	if err := h.voiceChannel.RequireSameChannel(ids.guild, ids.user); err != nil {
		return respondUsecaseError(r, err)
	}

	output, err := h.playback.Skip(ctx, usecases.SkipInput{
		GuildID: ids.guild,
		UserID:  ids.user,
	})
	if err != nil {
		return respondUsecaseError(r, err)
	}

	return respondSuccess(r, skipMessage(output.Outcome))
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, problem := parseIDs(i)
	if problem != "" {
		return respondError(r, problem)
	}

	var page int // let service default to the first page
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "page" {
			page = int(opt.IntValue())
		}
	}

	output, err := h.queue.List(usecases.QueueListInput{
		GuildID: ids.guild,
		Page:    page,
	})
	if err != nil {
		return respondUsecaseError(r, err)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{queueEmbed(output)},
		},
	})
}

// HandleClear handles the /clear command.
func (h *CommandHandlers) HandleClear(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, problem := parseIDs(i)
	if problem != "" {
		return respondError(r, problem)
	}

	if err := h.voiceChannel.RequireSameChannel(ids.guild, ids.user); err != nil {
		return respondUsecaseError(r, err)
	}

	output, err := h.queue.Clear(usecases.QueueClearInput{GuildID: ids.guild})
	if err != nil {
		return respondUsecaseError(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Cleared %d songs from the queue.", output.ClearedCount))
}

// interactionIDs are the snowflakes every command needs.
type interactionIDs struct {
	guild   snowflake.ID
	user    snowflake.ID
	channel snowflake.ID
}

// parseIDs extracts the interaction's snowflakes.
// Returns a user-facing problem description when they cannot be read.
func parseIDs(i *discordgo.InteractionCreate) (interactionIDs, string) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return interactionIDs{}, "This command only works in guilds"
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionIDs{}, "Invalid guild"
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionIDs{}, "Invalid user"
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionIDs{}, "Invalid channel"
	}

	return interactionIDs{guild: guildID, user: userID, channel: channelID}, ""
}

// userErrorMessage maps errors the user can act on to their reply text.
func userErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, usecases.ErrUserNotInVoice):
		return "User not in a voice channel", true
	case errors.Is(err, usecases.ErrWrongChannel):
		return "User not in the channel", true
	case errors.Is(err, usecases.ErrNotConnected):
		return "Not in voice channel", true
	case errors.Is(err, usecases.ErrAlreadyConnected):
		return "Already in voice channel", true
	default:
		return "", false
	}
}

func playErrorMessage(err error) string {
	if message, ok := userErrorMessage(err); ok {
		return message
	}
	return "Error adding to the playlist"
}

func skipMessage(outcome usecases.SkipOutcome) string {
	switch outcome {
	case usecases.SkipSkipped:
		return "Song skipped"
	case usecases.SkipQueueEnded:
		return "Queue ended"
	default:
		return "Nothing to play"
	}
}

// Embed builders.

func addedEmbed(output *usecases.PlayOutput) *discordgo.MessageEmbed {
	var embed *discordgo.MessageEmbed
	if output.IsPlaylist() {
		embed = &discordgo.MessageEmbed{
			Title:       "Playlist added to queue",
			Description: fmt.Sprintf("%d elements added to playlist", len(output.Added)),
			Color:       colorSuccess,
		}
	} else {
		item := output.Added[0]
		embed = &discordgo.MessageEmbed{
			Title:       "Song added to queue",
			Description: itemLink(item),
			Color:       colorSuccess,
		}
		if item.ThumbnailURL != "" {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: item.ThumbnailURL}
		}
	}

	if output.Requester != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    "Requested by " + output.Requester.DisplayName,
			IconURL: output.Requester.AvatarURL,
		}
	}

	return embed
}

func queueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Queue",
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d", output.CurrentPage, output.TotalPages),
		},
	}

	if output.Current == nil && output.TotalItems == 0 {
		embed.Description = "Queue is empty."
		return embed
	}

	var sb strings.Builder
	if output.Current != nil {
		sb.WriteString("### Now Playing\n")
		sb.WriteString(itemLink(*output.Current))
		sb.WriteString("\n")
	}

	if len(output.Items) > 0 {
		sb.WriteString("### Up Next\n")
		for idx, item := range output.Items {
			writeItemLine(&sb, output.StartIndex+idx+1, item)
		}
	}

	embed.Description = sb.String()
	return embed
}

func itemLink(item usecases.QueueItem) string {
	url := item.WebpageURL
	if url == "" {
		url = item.SourceURL
	}
	if url == "" {
		return fmt.Sprintf("**%s**", item.Title)
	}
	return fmt.Sprintf("[%s](%s)", item.Title, url)
}

// writeItemLine writes a single queue line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeItemLine(sb *strings.Builder, displayIndex int, item usecases.QueueItem) {
	fmt.Fprintf(sb, "%d\\. %s", displayIndex, itemLink(item))
	if duration := item.FormattedDuration(); duration != "" {
		fmt.Fprintf(sb, " `%s`", duration)
	}
	sb.WriteString("\n")
}

// Response helpers.

func respondSuccess(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{errorEmbed(message)},
		},
	})
}

// respondUsecaseError replies with the user-facing text of err.
// Unknown errors are returned to the host, which replies with its generic error.
func respondUsecaseError(r bot.Responder, err error) error {
	if message, ok := userErrorMessage(err); ok {
		return respondError(r, message)
	}
	return err
}

func editError(r bot.Responder, message string) error {
	return editEmbed(r, errorEmbed(message))
}

func editEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	content := ""
	embeds := []*discordgo.MessageEmbed{embed}
	return r.Edit(&discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &embeds,
	})
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}
