package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppalone/ytsearch"
	"github.com/raitonoberu/ytmusic"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
)

// searchSource returns suggestions from one search backend.
type searchSource struct {
	name   string
	search func(ctx context.Context, query string) ([]ports.Suggestion, error)
}

// SearchSuggester merges search results from YouTube and YouTube Music.
type SearchSuggester struct {
	sources []searchSource
}

// NewSearchSuggester creates a new SearchSuggester.
func NewSearchSuggester() *SearchSuggester {
	client := ytsearch.NewClient(nil)

	return &SearchSuggester{sources: []searchSource{
		{name: "youtube", search: func(ctx context.Context, query string) ([]ports.Suggestion, error) {
			return searchYouTube(ctx, client, query)
		}},
		{name: "youtube music", search: searchYouTubeMusic},
	}}
}

type sourceResult struct {
	index       int
	suggestions []ports.Suggestion
	err         error
}

// Suggest queries every source concurrently and merges the results in source order.
// Sources that have not answered when ctx is done are left out.
func (s *SearchSuggester) Suggest(ctx context.Context, query string, limit int) ([]ports.Suggestion, error) {
	results := make(chan sourceResult, len(s.sources))
	for i, source := range s.sources {
		go func() {
			suggestions, err := source.search(ctx, query)
			if err != nil {
				err = fmt.Errorf("%s search: %w", source.name, err)
			}
			results <- sourceResult{index: i, suggestions: suggestions, err: err}
		}()
	}

	collected := make([][]ports.Suggestion, len(s.sources))
	var errs []error
	answered := 0

wait:
	for answered < len(s.sources) {
		select {
		case result := <-results:
			answered++
			if result.err != nil {
				errs = append(errs, result.err)
				continue
			}
			collected[result.index] = result.suggestions
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			break wait
		}
	}

	merged := mergeSuggestions(collected, limit)
	if len(merged) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return merged, nil
}

// mergeSuggestions concatenates groups, dropping repeated values, up to limit entries.
func mergeSuggestions(groups [][]ports.Suggestion, limit int) []ports.Suggestion {
	var merged []ports.Suggestion
	seen := make(map[string]struct{})

	for _, group := range groups {
		for _, suggestion := range group {
			if limit > 0 && len(merged) >= limit {
				return merged
			}
			if _, ok := seen[suggestion.Value]; ok {
				continue
			}
			seen[suggestion.Value] = struct{}{}
			merged = append(merged, suggestion)
		}
	}
	return merged
}

func searchYouTube(ctx context.Context, client *ytsearch.Client, query string) ([]ports.Suggestion, error) {
	res, err := client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	suggestions := make([]ports.Suggestion, 0, len(res.Results))
	for _, video := range res.Results {
		if video.VideoID == "" {
			continue
		}
		suggestions = append(suggestions, ports.Suggestion{
			Name:  video.Title,
			Value: youtubeWatchURL + video.VideoID,
		})
	}
	return suggestions, nil
}

// searchYouTubeMusic ignores ctx: the ytmusic client has no context support.
func searchYouTubeMusic(_ context.Context, query string) ([]ports.Suggestion, error) {
	res, err := ytmusic.TrackSearch(query).Next()
	if err != nil {
		return nil, err
	}

	suggestions := make([]ports.Suggestion, 0, len(res.Tracks))
	for _, track := range res.Tracks {
		if track.VideoID == "" {
			continue
		}
		name := track.Title
		if len(track.Artists) > 0 {
			name += " - " + track.Artists[0].Name
		}
		suggestions = append(suggestions, ports.Suggestion{
			Name:  name,
			Value: youtubeWatchURL + track.VideoID,
		})
	}
	return suggestions, nil
}

var _ ports.SuggestionProvider = (*SearchSuggester)(nil)
