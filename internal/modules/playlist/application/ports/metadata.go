package ports

import (
	"context"

	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// MetadataProvider looks up structured metadata on the primary video platform.
type MetadataProvider interface {
	// LookupVideo returns the item for a single video ID.
	LookupVideo(ctx context.Context, id string) (domain.QueueItem, error)

	// LookupPlaylistPage returns one page of a playlist. An empty pageToken requests the first page.
	LookupPlaylistPage(ctx context.Context, id, pageToken string) (PlaylistPage, error)
}
