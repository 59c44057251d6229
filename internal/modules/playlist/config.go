package playlist

import (
	"path/filepath"
	"time"
)

// Config holds the playlist module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	// LavalinkMediaDir is the media cache directory as mounted on the Lavalink node.
	LavalinkMediaDir string `env:"LAVALINK_MEDIA_DIR"`

	YouTubeToken     string  `env:"YOUTUBE_TOKEN,notEmpty"`
	YouTubeRateLimit float64 `env:"YOUTUBE_RATE_LIMIT" envDefault:"5"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`

	DataDir           string        `env:"DATA_DIR"            envDefault:"data"`
	CacheLimitBytes   int64         `env:"CACHE_LIMIT_BYTES"   envDefault:"2147483648"`
	MediaFetchTimeout time.Duration `env:"MEDIA_FETCH_TIMEOUT" envDefault:"10m"`

	AudioFormat      string `env:"AUDIO_FORMAT"`
	YTDLPPath        string `env:"YTDLP_PATH"         envDefault:"yt-dlp"`
	YoutubeDLPath    string `env:"YOUTUBE_DL_PATH"    envDefault:"youtube-dl"`
	YTDLPAutoInstall bool   `env:"YTDLP_AUTO_INSTALL" envDefault:"false"`

	EventBufferSize int `env:"EVENT_BUFFER_SIZE" envDefault:"100"`
}

// MediaDir returns the root of the downloaded media tree.
func (c *Config) MediaDir() string {
	return filepath.Join(c.DataDir, "cache", "media")
}

// IndexPath returns the path of the media cache index database.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, "cache", "index.db")
}

// SpotifyEnabled reports whether Spotify credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}
