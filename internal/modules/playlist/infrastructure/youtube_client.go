package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// DefaultYouTubeAPIBaseURL is the YouTube Data API v3 endpoint.
const DefaultYouTubeAPIBaseURL = "https://www.googleapis.com/youtube/v3"

const (
	youtubeExtractor     = "youtube"
	youtubeWatchURL      = "https://www.youtube.com/watch?v="
	playlistPageSize     = "50"
	youtubeClientTimeout = 10 * time.Second
)

// YouTubeConfig contains YouTube Data API client configuration.
type YouTubeConfig struct {
	APIKey  string
	BaseURL string
	// RateLimit is the number of requests per second. Zero or less disables limiting.
	RateLimit float64
}

// YouTubeClient looks up videos and playlists through the YouTube Data API.
type YouTubeClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewYouTubeClient creates a new YouTubeClient.
func NewYouTubeClient(config YouTubeConfig) *YouTubeClient {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultYouTubeAPIBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), max(1, int(config.RateLimit)))
	}

	return &YouTubeClient{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: youtubeClientTimeout},
		limiter: limiter,
	}
}

// APIError is an error payload returned by the Data API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube api error %d: %s", e.Code, e.Message)
}

type thumbnailsJSON struct {
	Default struct {
		URL string `json:"url"`
	} `json:"default"`
}

type videoListJSON struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string         `json:"title"`
			Thumbnails thumbnailsJSON `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type playlistItemListJSON struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title      string         `json:"title"`
			PlaylistID string         `json:"playlistId"`
			Thumbnails thumbnailsJSON `json:"thumbnails"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type playlistListJSON struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// LookupVideo returns the item for a single video.
func (c *YouTubeClient) LookupVideo(ctx context.Context, id string) (domain.QueueItem, error) {
	var body videoListJSON
	err := c.get(ctx, "videos", url.Values{
		"part":       {"snippet"},
		"maxResults": {"1"},
		"id":         {id},
	}, &body)
	if err != nil {
		return domain.QueueItem{}, err
	}

	if len(body.Items) == 0 {
		return domain.QueueItem{}, fmt.Errorf("video %s: %w", id, domain.ErrNoItemsResolved)
	}

	video := body.Items[0]
	return youtubeItem(video.ID, video.Snippet.Title, video.Snippet.Thumbnails, ""), nil
}

// LookupPlaylistPage returns one page of playlist items.
func (c *YouTubeClient) LookupPlaylistPage(
	ctx context.Context,
	id, pageToken string,
) (ports.PlaylistPage, error) {
	params := url.Values{
		"part":       {"snippet"},
		"maxResults": {playlistPageSize},
		"playlistId": {id},
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var body playlistItemListJSON
	if err := c.get(ctx, "playlistItems", params, &body); err != nil {
		return ports.PlaylistPage{}, err
	}

	items := make([]domain.QueueItem, 0, len(body.Items))
	for _, entry := range body.Items {
		snippet := entry.Snippet
		items = append(items, youtubeItem(
			snippet.ResourceID.VideoID,
			snippet.Title,
			snippet.Thumbnails,
			snippet.PlaylistID,
		))
	}

	return ports.PlaylistPage{Items: items, NextPageToken: body.NextPageToken}, nil
}

// Describe returns the title of a YouTube video or playlist link.
func (c *YouTubeClient) Describe(ctx context.Context, q domain.Query) (string, bool) {
	switch q := q.(type) {
	case domain.VideoQuery:
		return c.describeVideo(ctx, q.ID)
	case domain.ShortQuery:
		return c.describeVideo(ctx, q.ID)
	case domain.PlaylistQuery:
		var body playlistListJSON
		err := c.get(ctx, "playlists", url.Values{
			"part": {"snippet"},
			"id":   {q.ID},
		}, &body)
		if err != nil || len(body.Items) == 0 {
			return "", false
		}
		return body.Items[0].Snippet.Title, true
	default:
		return "", false
	}
}

func (c *YouTubeClient) describeVideo(ctx context.Context, id string) (string, bool) {
	item, err := c.LookupVideo(ctx, id)
	if err != nil {
		return "", false
	}
	return item.Title, true
}

// get performs a rate limited GET against resource and decodes the JSON response into out.
// API error payloads are returned as *domain.ResolutionError with the API message as detail.
func (c *YouTubeClient) get(ctx context.Context, resource string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "/" + resource + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The *url.Error message carries the request URL and with it the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("youtube %s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error *APIError `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error == nil {
			return fmt.Errorf("youtube %s request failed: status %d", resource, resp.StatusCode)
		}
		return &domain.ResolutionError{Detail: payload.Error.Message, Err: payload.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode youtube %s response: %w", resource, err)
	}
	return nil
}

func youtubeItem(id, title string, thumbnails thumbnailsJSON, playlistID string) domain.QueueItem {
	watchURL := youtubeWatchURL + id
	return domain.QueueItem{
		ID:           id,
		Title:        title,
		SourceURL:    watchURL,
		Extractor:    youtubeExtractor,
		ThumbnailURL: thumbnails.Default.URL,
		PlaylistID:   playlistID,
		WebpageURL:   watchURL,
		Backend:      domain.BackendYTDLP,
	}
}

var (
	_ ports.MetadataProvider = (*YouTubeClient)(nil)
	_ ports.LinkDescriber    = (*YouTubeClient)(nil)
)
