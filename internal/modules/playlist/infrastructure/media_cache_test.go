package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

const testGuild = snowflake.ID(1)

// fakeDownloader writes content to dest on Fetch unless told otherwise.
type fakeDownloader struct {
	mu      sync.Mutex
	content map[string]string // item ID -> file content
	err     error
	block   bool
	fetches []string
}

func (d *fakeDownloader) Resolve(
	ctx context.Context,
	target string,
	backend domain.Backend,
) ([]domain.QueueItem, error) {
	return nil, nil
}

func (d *fakeDownloader) Fetch(ctx context.Context, item domain.QueueItem, dest string) error {
	d.mu.Lock()
	d.fetches = append(d.fetches, item.ID)
	content, ok := d.content[item.ID]
	d.mu.Unlock()

	if d.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if d.err != nil {
		return d.err
	}
	if !ok {
		return nil
	}
	return os.WriteFile(dest, []byte(content), 0o644)
}

func (d *fakeDownloader) fetchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fetches)
}

func newTestIndex(t *testing.T) *CacheIndex {
	t.Helper()

	index, err := OpenCacheIndex(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open cache index: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })

	// Monotonic clock so access order never ties.
	var tick int64
	index.now = func() time.Time {
		tick++
		return time.Unix(0, tick)
	}
	return index
}

func cacheItem(id string) domain.QueueItem {
	return domain.QueueItem{
		ID:        id,
		Title:     "Track " + id,
		SourceURL: "https://example.com/" + id,
		Extractor: "generic",
	}
}

func TestMediaCache_Materialize(t *testing.T) {
	t.Run("downloads on miss", func(t *testing.T) {
		root := t.TempDir()
		downloader := &fakeDownloader{content: map[string]string{"a": "audio"}}
		cache := NewMediaCache(MediaCacheConfig{Root: root}, downloader, newTestIndex(t))

		media, err := cache.Materialize(context.Background(), testGuild, cacheItem("a"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if media.Cached {
			t.Error("expected a fresh download")
		}
		if want := filepath.Join(root, "generic", "a"); media.Path != want {
			t.Errorf("expected path %q, got %q", want, media.Path)
		}
		if media.Key != (domain.CacheKey{Extractor: "generic", ID: "a"}) {
			t.Errorf("unexpected key %+v", media.Key)
		}
	})

	t.Run("hit skips the downloader", func(t *testing.T) {
		downloader := &fakeDownloader{content: map[string]string{"a": "audio"}}
		cache := NewMediaCache(MediaCacheConfig{Root: t.TempDir()}, downloader, newTestIndex(t))

		if _, err := cache.Materialize(context.Background(), testGuild, cacheItem("a")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		media, err := cache.Materialize(context.Background(), testGuild, cacheItem("a"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !media.Cached {
			t.Error("expected a cache hit")
		}
		if got := downloader.fetchCount(); got != 1 {
			t.Errorf("expected 1 fetch, got %d", got)
		}
	})

	t.Run("path separators are sanitized", func(t *testing.T) {
		root := t.TempDir()
		item := cacheItem("../escape")
		downloader := &fakeDownloader{content: map[string]string{item.ID: "audio"}}
		cache := NewMediaCache(MediaCacheConfig{Root: root}, downloader, newTestIndex(t))

		media, err := cache.Materialize(context.Background(), testGuild, item)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := filepath.Join(root, "generic", ".._escape"); media.Path != want {
			t.Errorf("expected path %q, got %q", want, media.Path)
		}
	})
}

func TestMediaCache_Materialize_Unavailable(t *testing.T) {
	fetchErr := errors.New("HTTP Error 403")

	tests := []struct {
		name       string
		downloader *fakeDownloader
		timeout    time.Duration
		wantCause  error
	}{
		{
			name:       "downloader error",
			downloader: &fakeDownloader{err: fetchErr},
			wantCause:  fetchErr,
		},
		{
			name:       "no file produced",
			downloader: &fakeDownloader{},
		},
		{
			name:       "fetch timeout",
			downloader: &fakeDownloader{block: true},
			timeout:    10 * time.Millisecond,
			wantCause:  context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewMediaCache(
				MediaCacheConfig{Root: t.TempDir(), FetchTimeout: tt.timeout},
				tt.downloader,
				newTestIndex(t),
			)

			_, err := cache.Materialize(context.Background(), testGuild, cacheItem("a"))
			if !errors.Is(err, domain.ErrMediaUnavailable) {
				t.Fatalf("expected ErrMediaUnavailable, got %v", err)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("expected error to wrap %v, got %v", tt.wantCause, err)
			}
		})
	}
}

func TestMediaCache_Eviction(t *testing.T) {
	root := t.TempDir()
	downloader := &fakeDownloader{content: map[string]string{
		"a": "aaaaaa",
		"b": "bbbbbb",
		"c": "cccccc",
	}}
	index := newTestIndex(t)
	cache := NewMediaCache(MediaCacheConfig{Root: root, LimitBytes: 10}, downloader, index)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := cache.Materialize(ctx, testGuild, cacheItem(id)); err != nil {
			t.Fatalf("unexpected error for %s: %v", id, err)
		}
	}

	for _, tt := range []struct {
		id   string
		kept bool
	}{
		{"a", false},
		{"b", false},
		{"c", true},
	} {
		_, exists := fileSize(filepath.Join(root, "generic", tt.id))
		if exists != tt.kept {
			t.Errorf("%s: expected kept=%v, got %v", tt.id, tt.kept, exists)
		}
	}

	total, err := index.TotalBytes(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 6 {
		t.Errorf("expected 6 indexed bytes, got %d", total)
	}
}

func TestMediaCache_EvictionKeepsRecentlyUsed(t *testing.T) {
	root := t.TempDir()
	downloader := &fakeDownloader{content: map[string]string{
		"a": "aaaa",
		"b": "bbbb",
		"c": "cccc",
	}}
	cache := NewMediaCache(MediaCacheConfig{Root: root, LimitBytes: 8}, downloader, newTestIndex(t))
	ctx := context.Background()

	mustMaterialize := func(id string) {
		t.Helper()
		if _, err := cache.Materialize(ctx, testGuild, cacheItem(id)); err != nil {
			t.Fatalf("unexpected error for %s: %v", id, err)
		}
	}

	mustMaterialize("a")
	mustMaterialize("b")
	mustMaterialize("a") // hit: a becomes most recently used
	mustMaterialize("c")

	if _, ok := fileSize(filepath.Join(root, "generic", "b")); ok {
		t.Error("expected b to be evicted")
	}
	for _, id := range []string{"a", "c"} {
		if _, ok := fileSize(filepath.Join(root, "generic", id)); !ok {
			t.Errorf("expected %s to be kept", id)
		}
	}
}

func TestMediaCache_EvictionSkipsOtherGuildsMedia(t *testing.T) {
	root := t.TempDir()
	downloader := &fakeDownloader{content: map[string]string{
		"a": "aaaaaa",
		"b": "bbbbbb",
		"c": "cccccc",
	}}
	cache := NewMediaCache(MediaCacheConfig{Root: root, LimitBytes: 10}, downloader, newTestIndex(t))
	ctx := context.Background()

	// Guild 1 is still playing a while guild 2 moves through b and c.
	materialize := []struct {
		guildID snowflake.ID
		id      string
	}{
		{guildID: 1, id: "a"},
		{guildID: 2, id: "b"},
		{guildID: 2, id: "c"},
	}
	for _, m := range materialize {
		if _, err := cache.Materialize(ctx, m.guildID, cacheItem(m.id)); err != nil {
			t.Fatalf("unexpected error for %s: %v", m.id, err)
		}
	}

	for _, tt := range []struct {
		id   string
		kept bool
	}{
		{"a", true},
		{"b", false},
		{"c", true},
	} {
		_, exists := fileSize(filepath.Join(root, "generic", tt.id))
		if exists != tt.kept {
			t.Errorf("%s: expected kept=%v, got %v", tt.id, tt.kept, exists)
		}
	}
}

func TestCacheIndex_Oldest(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()
	keyA := domain.CacheKey{Extractor: "youtube", ID: "a"}
	keyB := domain.CacheKey{Extractor: "youtube", ID: "b"}

	if _, ok, err := index.Oldest(ctx); err != nil || ok {
		t.Fatalf("expected empty index, got ok=%v err=%v", ok, err)
	}

	for _, key := range []domain.CacheKey{keyA, keyB} {
		if err := index.Touch(ctx, key, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		name string
		keep domain.CacheKey
		want domain.CacheKey
	}{
		{name: "least recently used", keep: keyB, want: keyA},
		{name: "skips kept key", keep: keyA, want: keyB},
	}

	if _, ok, err := index.Oldest(ctx, keyA, keyB); err != nil || ok {
		t.Errorf("expected no candidate when every entry is kept, got ok=%v err=%v", ok, err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := index.Oldest(ctx, tt.keep)
			if err != nil || !ok {
				t.Fatalf("expected an entry, got ok=%v err=%v", ok, err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
