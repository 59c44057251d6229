package ports

import (
	"context"

	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// Downloader wraps the external media downloader.
type Downloader interface {
	// Resolve returns the items target expands to. target is a URL or a search expression.
	Resolve(ctx context.Context, target string, backend domain.Backend) ([]domain.QueueItem, error)

	// Fetch downloads the media of item to dest.
	Fetch(ctx context.Context, item domain.QueueItem, dest string) error
}
