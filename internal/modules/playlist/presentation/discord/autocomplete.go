package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/potbot/internal/modules/playlist/application/usecases"
)

// Discord drops autocomplete responses after three seconds.
const autocompleteTimeout = 2500 * time.Millisecond

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	autocomplete *usecases.AutocompleteService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(autocomplete *usecases.AutocompleteService) *AutocompleteHandler {
	return &AutocompleteHandler{autocomplete: autocomplete}
}

// HandlePlay returns choices for the query option of the play command.
func (h *AutocompleteHandler) HandlePlay(i *discordgo.InteractionCreate) []*discordgo.ApplicationCommandOptionChoice {
	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" && opt.Focused {
			query = opt.StringValue()
			break
		}
	}

	suggestions := h.autocomplete.Suggest(ctx, usecases.AutocompleteInput{Query: query})

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(suggestions))
	for _, suggestion := range suggestions {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  suggestion.Name,
			Value: suggestion.Value,
		})
	}
	return choices
}
