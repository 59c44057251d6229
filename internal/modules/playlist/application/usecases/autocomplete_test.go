package usecases

import (
	"context"
	"strings"
	"testing"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
)

func TestAutocompleteService_Suggest(t *testing.T) {
	spotifyURL := "https://open.spotify.com/track/1"

	tests := []struct {
		name      string
		query     string
		suggester *mockSuggester
		describer *mockDescriber
		want      []ports.Suggestion
	}{
		{
			name:      "empty query",
			query:     "  ",
			suggester: &mockSuggester{},
			want:      nil,
		},
		{
			name:  "search merges suggestions after the typed text",
			query: "lofi",
			suggester: &mockSuggester{suggestions: []ports.Suggestion{
				{Name: "lofi hip hop", Value: "lofi hip hop"},
				{Name: "lofi", Value: "lofi"},
				{Name: "lofi girl", Value: "lofi girl"},
				{Name: "lofi hip hop (dup)", Value: "lofi hip hop"},
			}},
			want: []ports.Suggestion{
				{Name: "lofi", Value: "lofi"},
				{Name: "lofi hip hop", Value: "lofi hip hop"},
				{Name: "lofi girl", Value: "lofi girl"},
			},
		},
		{
			name:      "suggester failure keeps the typed text",
			query:     "lofi",
			suggester: &mockSuggester{err: errMock},
			want:      []ports.Suggestion{{Name: "lofi", Value: "lofi"}},
		},
		{
			name:      "link is described",
			query:     spotifyURL,
			suggester: &mockSuggester{},
			describer: &mockDescriber{names: map[string]string{spotifyURL: "Song - Artist"}},
			want:      []ports.Suggestion{{Name: "Song - Artist", Value: spotifyURL}},
		},
		{
			name:      "undescribed link is echoed",
			query:     "https://example.com/a",
			suggester: &mockSuggester{},
			describer: &mockDescriber{},
			want:      []ports.Suggestion{{Name: "https://example.com/a", Value: "https://example.com/a"}},
		},
		{
			name:      "overlong input has no choices",
			query:     "https://example.com/" + strings.Repeat("a", 100),
			suggester: &mockSuggester{},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var describers []ports.LinkDescriber
			if tt.describer != nil {
				describers = append(describers, tt.describer)
			}
			service := NewAutocompleteService(tt.suggester, describers...)

			got := service.Suggest(context.Background(), AutocompleteInput{Query: tt.query})

			if len(got) != len(tt.want) {
				t.Fatalf("expected %d choices, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("choice %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestAutocompleteService_LimitsChoices(t *testing.T) {
	suggestions := make([]ports.Suggestion, 40)
	for i := range suggestions {
		value := "song " + strings.Repeat("x", i+1)
		suggestions[i] = ports.Suggestion{Name: value, Value: value}
	}
	service := NewAutocompleteService(&mockSuggester{suggestions: suggestions})

	got := service.Suggest(context.Background(), AutocompleteInput{Query: "song"})

	if len(got) != MaxChoices {
		t.Errorf("expected %d choices, got %d", MaxChoices, len(got))
	}
}

func TestAutocompleteService_TruncatesNames(t *testing.T) {
	long := strings.Repeat("n", 150)
	service := NewAutocompleteService(&mockSuggester{suggestions: []ports.Suggestion{
		{Name: long, Value: "short"},
	}})

	got := service.Suggest(context.Background(), AutocompleteInput{Query: "q"})

	if len(got) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(got))
	}
	if n := len([]rune(got[1].Name)); n != 100 {
		t.Errorf("expected name of 100 runes, got %d", n)
	}
}
