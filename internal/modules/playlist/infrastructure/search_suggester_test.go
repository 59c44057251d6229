package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
)

func staticSource(name string, suggestions []ports.Suggestion, err error) searchSource {
	return searchSource{name: name, search: func(ctx context.Context, query string) ([]ports.Suggestion, error) {
		return suggestions, err
	}}
}

func TestSearchSuggester_Suggest(t *testing.T) {
	a := ports.Suggestion{Name: "A", Value: "https://www.youtube.com/watch?v=a"}
	b := ports.Suggestion{Name: "B", Value: "https://www.youtube.com/watch?v=b"}
	c := ports.Suggestion{Name: "C - Artist", Value: "https://www.youtube.com/watch?v=c"}
	failure := errors.New("boom")

	tests := []struct {
		name    string
		sources []searchSource
		limit   int
		want    []ports.Suggestion
		wantErr bool
	}{
		{
			name: "merged in source order without duplicates",
			sources: []searchSource{
				staticSource("first", []ports.Suggestion{a, b}, nil),
				staticSource("second", []ports.Suggestion{b, c}, nil),
			},
			want: []ports.Suggestion{a, b, c},
		},
		{
			name: "limit",
			sources: []searchSource{
				staticSource("first", []ports.Suggestion{a, b}, nil),
				staticSource("second", []ports.Suggestion{c}, nil),
			},
			limit: 2,
			want:  []ports.Suggestion{a, b},
		},
		{
			name: "one source fails",
			sources: []searchSource{
				staticSource("first", nil, failure),
				staticSource("second", []ports.Suggestion{c}, nil),
			},
			want: []ports.Suggestion{c},
		},
		{
			name: "every source fails",
			sources: []searchSource{
				staticSource("first", nil, failure),
				staticSource("second", nil, failure),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggester := &SearchSuggester{sources: tt.sources}

			got, err := suggester.Suggest(context.Background(), "query", tt.limit)
			if tt.wantErr {
				if !errors.Is(err, failure) {
					t.Errorf("expected error wrapping %v, got %v", failure, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d suggestions, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("suggestion %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSearchSuggester_SlowSourceIsDropped(t *testing.T) {
	fast := ports.Suggestion{Name: "Fast", Value: "fast"}
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	suggester := &SearchSuggester{sources: []searchSource{
		{name: "slow", search: func(ctx context.Context, query string) ([]ports.Suggestion, error) {
			<-release
			return []ports.Suggestion{{Name: "Slow", Value: "slow"}}, nil
		}},
		staticSource("fast", []ports.Suggestion{fast}, nil),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	got, err := suggester.Suggest(ctx, "query", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != fast {
		t.Errorf("expected only the fast suggestion, got %+v", got)
	}
}
