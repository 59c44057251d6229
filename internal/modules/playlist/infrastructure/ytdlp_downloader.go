package infrastructure

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ytdlp "github.com/lrstanley/go-ytdlp"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// DefaultAudioFormat prefers webm audio with a known bitrate.
const DefaultAudioFormat = "webm[abr>0]/bestaudio/best"

// YTDLPConfig contains downloader configuration.
type YTDLPConfig struct {
	Format string
	// Executables maps each backend to the binary that runs it.
	Executables map[domain.Backend]string
	// AutoInstall downloads a managed yt-dlp binary when true.
	AutoInstall bool
}

// YTDLPDownloader runs yt-dlp compatible binaries for resolution and fetching.
type YTDLPDownloader struct {
	format      string
	executables map[domain.Backend]string
}

// NewYTDLPDownloader creates a new YTDLPDownloader, installing yt-dlp first when configured to.
func NewYTDLPDownloader(ctx context.Context, config YTDLPConfig) (*YTDLPDownloader, error) {
	format := config.Format
	if format == "" {
		format = DefaultAudioFormat
	}

	executables := map[domain.Backend]string{
		domain.BackendYTDLP:     "yt-dlp",
		domain.BackendYoutubeDL: "youtube-dl",
	}
	for backend, path := range config.Executables {
		if path != "" {
			executables[backend] = path
		}
	}

	if config.AutoInstall {
		installed, err := ytdlp.Install(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to install yt-dlp: %w", err)
		}
		executables[domain.BackendYTDLP] = installed.Executable
		slog.Info("yt-dlp installed", "path", installed.Executable, "version", installed.Version)
	}

	return &YTDLPDownloader{format: format, executables: executables}, nil
}

func (d *YTDLPDownloader) command(backend domain.Backend) *ytdlp.Command {
	return ytdlp.New().
		SetExecutable(d.executables[backend.OrDefault()]).
		Format(d.format).
		Retries("infinite").
		IgnoreConfig().
		NoWarnings()
}

// Resolve dumps one JSON object per entry of target and converts each to a queue item.
func (d *YTDLPDownloader) Resolve(
	ctx context.Context,
	target string,
	backend domain.Backend,
) ([]domain.QueueItem, error) {
	start := time.Now()

	res, err := d.command(backend).
		DumpJSON().
		YesPlaylist().
		Run(ctx, target)
	if err != nil {
		// Playlists with unavailable entries exit non-zero but still dump the rest.
		if res != nil {
			if items := parseEntries(res.Stdout); len(items) > 0 {
				slog.Warn("downloader resolved target partially", "target", target, "items", len(items), "error", err)
				return items, nil
			}
		}
		return nil, fmt.Errorf("%s failed for %s: %w", backend.OrDefault(), target, err)
	}

	items := parseEntries(res.Stdout)
	slog.Debug("downloader resolved target",
		"target", target,
		"backend", backend.OrDefault(),
		"items", len(items),
		"elapsed", time.Since(start),
	)
	return items, nil
}

// Fetch downloads a single entry of item to dest.
func (d *YTDLPDownloader) Fetch(ctx context.Context, item domain.QueueItem, dest string) error {
	_, err := d.command(item.Backend).
		NoPlaylist().
		Output(dest).
		Run(ctx, item.SourceURL)
	if err != nil {
		return fmt.Errorf("%s failed to fetch %s: %w", item.Backend.OrDefault(), item.SourceURL, err)
	}
	return nil
}

// entryJSON is the subset of a dumped entry the queue uses.
type entryJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	OriginalURL string   `json:"original_url"`
	WebpageURL  string   `json:"webpage_url"`
	Extractor   string   `json:"extractor"`
	Thumbnail   string   `json:"thumbnail"`
	Duration    *float64 `json:"duration"`
	PlaylistID  string   `json:"playlist_id"`
	IsLive      *bool    `json:"is_live"`
	WasLive     *bool    `json:"was_live"`
}

// parseEntries reads newline-delimited JSON. Lines that do not decode are skipped.
func parseEntries(output string) []domain.QueueItem {
	var items []domain.QueueItem

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry entryJSON
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			slog.Debug("skipping undecodable downloader line", "error", err)
			continue
		}
		items = append(items, entry.toQueueItem())
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("failed to read downloader output", "error", err)
	}

	return items
}

func (e entryJSON) toQueueItem() domain.QueueItem {
	item := domain.QueueItem{
		ID:           e.ID,
		Title:        e.Title,
		SourceURL:    e.OriginalURL,
		Extractor:    e.Extractor,
		ThumbnailURL: e.Thumbnail,
		PlaylistID:   e.PlaylistID,
		WebpageURL:   e.WebpageURL,
	}
	if item.SourceURL == "" {
		item.SourceURL = e.WebpageURL
	}
	if e.Duration != nil {
		item.Duration = time.Duration(*e.Duration * float64(time.Second))
	}
	if e.IsLive != nil {
		item.IsLive = *e.IsLive
	}
	if e.WasLive != nil {
		item.WasLive = *e.WasLive
	}
	return item
}

var _ ports.Downloader = (*YTDLPDownloader)(nil)
