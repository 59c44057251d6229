package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// ResolverService turns play requests into queue items.
type ResolverService struct {
	metadata   ports.MetadataProvider
	downloader ports.Downloader
}

// NewResolverService creates a new ResolverService.
func NewResolverService(metadata ports.MetadataProvider, downloader ports.Downloader) *ResolverService {
	return &ResolverService{
		metadata:   metadata,
		downloader: downloader,
	}
}

// Resolve returns the items q refers to, each stamped with the backend that must fetch it.
// Every failure is returned as a *domain.ResolutionError.
func (r *ResolverService) Resolve(ctx context.Context, q domain.Query) ([]domain.QueueItem, error) {
	items, err := r.resolve(ctx, q)
	if err != nil {
		return nil, asResolutionError(q, err)
	}

	backend := domain.BackendFor(q)
	resolved := make([]domain.QueueItem, 0, len(items))
	for _, item := range items {
		if !item.IsValid() {
			slog.Debug("dropping incomplete item", "input", q.Input(), "id", item.ID)
			continue
		}
		resolved = append(resolved, item.WithBackend(backend))
	}

	if len(resolved) == 0 {
		return nil, &domain.ResolutionError{Input: q.Input(), Err: domain.ErrNoItemsResolved}
	}
	return resolved, nil
}

func (r *ResolverService) resolve(ctx context.Context, q domain.Query) ([]domain.QueueItem, error) {
	switch q := q.(type) {
	case domain.VideoQuery:
		return r.lookupVideo(ctx, q.ID)
	case domain.ShortQuery:
		return r.lookupVideo(ctx, q.ID)
	case domain.PlaylistQuery:
		return r.lookupPlaylist(ctx, q.ID)
	case domain.SpotifyQuery:
		// Every Spotify link kind goes through the downloader.
		return r.downloader.Resolve(ctx, q.URL, domain.BackendYoutubeDL)
	case domain.LinkQuery:
		return r.downloader.Resolve(ctx, q.URL, domain.BackendYTDLP)
	case domain.SearchQuery:
		return r.downloader.Resolve(ctx, q.DownloaderTarget(), domain.BackendYTDLP)
	default:
		return nil, fmt.Errorf("unsupported query type %T", q)
	}
}

func (r *ResolverService) lookupVideo(ctx context.Context, id string) ([]domain.QueueItem, error) {
	item, err := r.metadata.LookupVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	return []domain.QueueItem{item}, nil
}

// lookupPlaylist follows page tokens sequentially until the listing is exhausted.
func (r *ResolverService) lookupPlaylist(ctx context.Context, id string) ([]domain.QueueItem, error) {
	var items []domain.QueueItem
	seen := make(map[string]struct{})
	token := ""

	for {
		page, err := r.metadata.LookupPlaylistPage(ctx, id, token)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if page.NextPageToken == "" {
			return items, nil
		}
		if _, ok := seen[page.NextPageToken]; ok {
			return nil, fmt.Errorf("playlist %s: page token %q repeated", id, page.NextPageToken)
		}
		seen[page.NextPageToken] = struct{}{}
		token = page.NextPageToken
	}
}

func asResolutionError(q domain.Query, err error) error {
	var resErr *domain.ResolutionError
	if errors.As(err, &resErr) {
		if resErr.Input == "" {
			resErr.Input = q.Input()
		}
		return resErr
	}
	return &domain.ResolutionError{Input: q.Input(), Err: err}
}
