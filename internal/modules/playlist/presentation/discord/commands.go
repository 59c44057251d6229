package discord

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the playlist module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join to voice channel",
		},
		{
			Name:        "leave",
			Description: "Leave voice channel",
		},
		{
			Name:        "play",
			Description: "Play song",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "query",
					Description:  "URL or search term",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "skip",
			Description: "Skip song",
		},
		{
			Name:        "queue",
			Description: "Show the upcoming songs",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page number",
					Required:    false,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "clear",
			Description: "Remove every upcoming song from the queue",
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
