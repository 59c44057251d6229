package ports

import (
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// PlaylistPage is one page of a playlist listing.
type PlaylistPage struct {
	Items         []domain.QueueItem
	NextPageToken string // empty on the last page
}

// NowPlayingInfo contains information for playback notifications.
type NowPlayingInfo struct {
	ID           string // provider-native identifier
	Extractor    string
	Title        string
	URL          string
	ThumbnailURL string
	Duration     string // empty when unknown, "LIVE" for streams
}

// NewNowPlayingInfo builds notification info from a queue item.
func NewNowPlayingInfo(item domain.QueueItem) *NowPlayingInfo {
	url := item.WebpageURL
	if url == "" {
		url = item.SourceURL
	}
	return &NowPlayingInfo{
		ID:           item.ID,
		Extractor:    item.Extractor,
		Title:        item.Title,
		URL:          url,
		ThumbnailURL: item.ThumbnailURL,
		Duration:     item.FormattedDuration(),
	}
}

// Suggestion is one autocomplete choice.
type Suggestion struct {
	Name  string
	Value string
}
