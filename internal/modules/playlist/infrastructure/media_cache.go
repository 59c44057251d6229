package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/singleflight"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// MediaCacheConfig contains media cache configuration.
type MediaCacheConfig struct {
	// Root is the directory media files are stored under, as {Root}/{extractor}/{id}.
	Root string
	// LimitBytes caps the total size of indexed files. Zero disables eviction.
	LimitBytes int64
	// FetchTimeout bounds a single download. Zero means no timeout.
	FetchTimeout time.Duration
}

// MediaCache materializes queue items into local files, downloading on a miss.
type MediaCache struct {
	config     MediaCacheConfig
	downloader ports.Downloader
	index      *CacheIndex

	// fetches collapses concurrent downloads of the same key.
	fetches singleflight.Group
	evictMu sync.Mutex

	// pins holds the last key materialized by each guild; eviction skips them.
	pinsMu sync.Mutex
	pins   map[snowflake.ID]domain.CacheKey
}

// NewMediaCache creates a new MediaCache.
func NewMediaCache(config MediaCacheConfig, downloader ports.Downloader, index *CacheIndex) *MediaCache {
	return &MediaCache{
		config:     config,
		downloader: downloader,
		index:      index,
		pins:       make(map[snowflake.ID]domain.CacheKey),
	}
}

// PathFor returns the file path for key.
func (c *MediaCache) PathFor(key domain.CacheKey) string {
	extractor, id := key.Segments()
	return filepath.Join(c.config.Root, extractor, id)
}

// Materialize returns the cached file for item, downloading it when absent.
// The file stays pinned for guildID until the guild materializes another item.
func (c *MediaCache) Materialize(
	ctx context.Context,
	guildID snowflake.ID,
	item domain.QueueItem,
) (domain.Media, error) {
	key := item.CacheKey()
	path := c.PathFor(key)

	if size, ok := fileSize(path); ok {
		c.pin(guildID, key)
		c.touch(ctx, key, size)
		slog.Debug("media loaded from cache", "key", key.String())
		return domain.Media{Key: key, Path: path, Cached: true}, nil
	}

	_, fetchErr, _ := c.fetches.Do(key.String(), func() (any, error) {
		return nil, c.fetch(ctx, item, path)
	})

	size, ok := fileSize(path)
	if !ok {
		if fetchErr != nil {
			return domain.Media{}, fmt.Errorf("%w: %s: %w", domain.ErrMediaUnavailable, key, fetchErr)
		}
		return domain.Media{}, fmt.Errorf("%w: %s", domain.ErrMediaUnavailable, key)
	}
	if fetchErr != nil {
		slog.Warn("downloader reported an error but produced the file", "key", key.String(), "error", fetchErr)
	}

	c.pin(guildID, key)
	c.touch(ctx, key, size)
	c.evict(ctx)

	slog.Debug("media downloaded", "key", key.String(), "bytes", size)
	return domain.Media{Key: key, Path: path}, nil
}

func (c *MediaCache) fetch(ctx context.Context, item domain.QueueItem, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if c.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.FetchTimeout)
		defer cancel()
	}

	return c.downloader.Fetch(ctx, item, path)
}

func (c *MediaCache) touch(ctx context.Context, key domain.CacheKey, size int64) {
	if err := c.index.Touch(ctx, key, size); err != nil {
		slog.Warn("failed to update cache index", "key", key.String(), "error", err)
	}
}

func (c *MediaCache) pin(guildID snowflake.ID, key domain.CacheKey) {
	c.pinsMu.Lock()
	defer c.pinsMu.Unlock()
	c.pins[guildID] = key
}

func (c *MediaCache) pinned() []domain.CacheKey {
	c.pinsMu.Lock()
	defer c.pinsMu.Unlock()

	keys := make([]domain.CacheKey, 0, len(c.pins))
	for _, key := range c.pins {
		keys = append(keys, key)
	}
	return keys
}

// evict removes least recently used files until the cache fits its limit.
// Pinned keys are never evicted.
func (c *MediaCache) evict(ctx context.Context) {
	if c.config.LimitBytes <= 0 {
		return
	}

	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	for {
		total, err := c.index.TotalBytes(ctx)
		if err != nil {
			slog.Warn("failed to read cache size", "error", err)
			return
		}
		if total <= c.config.LimitBytes {
			return
		}

		oldest, ok, err := c.index.Oldest(ctx, c.pinned()...)
		if err != nil {
			slog.Warn("failed to find eviction candidate", "error", err)
			return
		}
		if !ok {
			return
		}

		if err := os.Remove(c.PathFor(oldest)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove cached media", "key", oldest.String(), "error", err)
		}
		if err := c.index.Remove(ctx, oldest); err != nil {
			slog.Warn("failed to remove cache index entry", "key", oldest.String(), "error", err)
			return
		}

		slog.Info("evicted cached media", "key", oldest.String(), "total_bytes", total)
	}
}

func fileSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

var _ ports.MediaSupplier = (*MediaCache)(nil)
