package domain

import (
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Query
	}{
		{
			name:  "youtube video",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  VideoQuery{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", ID: "dQw4w9WgXcQ"},
		},
		{
			name:  "youtube video with playlist prefers playlist",
			input: "https://www.youtube.com/watch?v=abc&list=PL123",
			want:  PlaylistQuery{URL: "https://www.youtube.com/watch?v=abc&list=PL123", ID: "PL123"},
		},
		{
			name:  "youtube playlist",
			input: "https://youtube.com/playlist?list=PL123",
			want:  PlaylistQuery{URL: "https://youtube.com/playlist?list=PL123", ID: "PL123"},
		},
		{
			name:  "youtube music video",
			input: "https://music.youtube.com/watch?v=xyz",
			want:  VideoQuery{URL: "https://music.youtube.com/watch?v=xyz", ID: "xyz"},
		},
		{
			name:  "youtube short",
			input: "https://www.youtube.com/shorts/short1",
			want:  ShortQuery{URL: "https://www.youtube.com/shorts/short1", ID: "short1"},
		},
		{
			name:  "youtu.be link",
			input: "https://youtu.be/abc123?t=10",
			want:  VideoQuery{URL: "https://youtu.be/abc123?t=10", ID: "abc123"},
		},
		{
			name:  "youtube channel is a plain link",
			input: "https://www.youtube.com/@someone",
			want:  LinkQuery{URL: "https://www.youtube.com/@someone"},
		},
		{
			name:  "www prefix without scheme",
			input: "www.youtube.com/watch?v=abc",
			want:  VideoQuery{URL: "https://www.youtube.com/watch?v=abc", ID: "abc"},
		},
		{
			name:  "spotify track",
			input: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			want: SpotifyQuery{
				URL:  "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
				Kind: SpotifyKindTrack,
				ID:   "4uLU6hMCjMI75M1A2tKUQC",
			},
		},
		{
			name:  "spotify localized playlist",
			input: "https://open.spotify.com/intl-ja/playlist/37i9dQZF1DX",
			want: SpotifyQuery{
				URL:  "https://open.spotify.com/intl-ja/playlist/37i9dQZF1DX",
				Kind: SpotifyKindPlaylist,
				ID:   "37i9dQZF1DX",
			},
		},
		{
			name:  "spotify unknown path",
			input: "https://open.spotify.com/",
			want:  SpotifyQuery{URL: "https://open.spotify.com/"},
		},
		{
			name:  "other link",
			input: "https://soundcloud.com/artist/track",
			want:  LinkQuery{URL: "https://soundcloud.com/artist/track"},
		},
		{
			name:  "search terms",
			input: "never gonna give you up",
			want:  SearchQuery{Terms: "never gonna give you up"},
		},
		{
			name:  "search terms are trimmed",
			input: "  lofi beats  ",
			want:  SearchQuery{Terms: "lofi beats"},
		},
		{
			name:  "unsupported scheme is a search",
			input: "ftp://example.com/file",
			want:  SearchQuery{Terms: "ftp://example.com/file"},
		},
		{
			name:  "scheme without host is a search",
			input: "https://",
			want:  SearchQuery{Terms: "https://"},
		},
		{
			name:  "url followed by words is a search",
			input: "https://example.com is cool",
			want:  SearchQuery{Terms: "https://example.com is cool"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.input)
			if got != tt.want {
				t.Errorf("ParseQuery(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBackendFor(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  Backend
	}{
		{name: "spotify", query: SpotifyQuery{}, want: BackendYoutubeDL},
		{name: "link", query: LinkQuery{}, want: BackendYTDLP},
		{name: "search", query: SearchQuery{}, want: BackendYTDLP},
		{name: "video", query: VideoQuery{}, want: BackendYTDLP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BackendFor(tt.query); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSearchQuery_DownloaderTarget(t *testing.T) {
	q := SearchQuery{Terms: "lofi beats"}
	if got := q.DownloaderTarget(); got != "ytsearch1:lofi beats" {
		t.Errorf("expected ytsearch1:lofi beats, got %s", got)
	}
}

func TestIsURLQuery(t *testing.T) {
	if IsURLQuery(SearchQuery{Terms: "x"}) {
		t.Error("expected search not to be a URL query")
	}
	if !IsURLQuery(LinkQuery{URL: "https://example.com"}) {
		t.Error("expected link to be a URL query")
	}
}
