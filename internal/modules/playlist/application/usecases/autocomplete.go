package usecases

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

const (
	// MaxChoices is the number of autocomplete choices Discord accepts.
	MaxChoices = 25

	maxChoiceLength = 100
)

// AutocompleteInput contains the input for the Autocomplete use case.
type AutocompleteInput struct {
	Query string
}

// AutocompleteService suggests choices for the play command.
type AutocompleteService struct {
	suggester  ports.SuggestionProvider
	describers []ports.LinkDescriber
}

// NewAutocompleteService creates a new AutocompleteService.
func NewAutocompleteService(
	suggester ports.SuggestionProvider,
	describers ...ports.LinkDescriber,
) *AutocompleteService {
	return &AutocompleteService{
		suggester:  suggester,
		describers: describers,
	}
}

// Suggest returns autocomplete choices for a partially typed query.
// Links are echoed back with a descriptive name; text is completed with search suggestions.
func (s *AutocompleteService) Suggest(ctx context.Context, input AutocompleteInput) []ports.Suggestion {
	text := strings.TrimSpace(input.Query)
	if text == "" {
		return nil
	}

	query := domain.ParseQuery(text)
	// Discord rejects longer values; the typed text can still be submitted.
	if len(query.Input()) > maxChoiceLength {
		return nil
	}
	if domain.IsURLQuery(query) {
		return []ports.Suggestion{s.describe(ctx, query)}
	}

	// The typed text always comes first so it can be submitted as is.
	choices := []ports.Suggestion{choice(text, text)}
	if s.suggester == nil {
		return choices
	}

	suggestions, err := s.suggester.Suggest(ctx, text, MaxChoices-1)
	if err != nil {
		slog.Warn("failed to fetch search suggestions", "query", text, "error", err)
		return choices
	}

	seen := map[string]struct{}{text: {}}
	for _, suggestion := range suggestions {
		if len(choices) == MaxChoices {
			break
		}
		if len(suggestion.Value) > maxChoiceLength {
			continue
		}
		if _, ok := seen[suggestion.Value]; ok {
			continue
		}
		seen[suggestion.Value] = struct{}{}
		choices = append(choices, choice(suggestion.Name, suggestion.Value))
	}
	return choices
}

func (s *AutocompleteService) describe(ctx context.Context, query domain.Query) ports.Suggestion {
	input := query.Input()
	for _, describer := range s.describers {
		if name, ok := describer.Describe(ctx, query); ok {
			return choice(name, input)
		}
	}
	return choice(input, input)
}

func choice(name, value string) ports.Suggestion {
	return ports.Suggestion{Name: truncate(name, maxChoiceLength), Value: value}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
