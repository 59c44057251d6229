package domain

import (
	"net/url"
	"strings"
)

// SearchPrefix is the downloader's single-result search prefix.
const SearchPrefix = "ytsearch1:"

// Query is a classified play request. It is one of VideoQuery, ShortQuery,
// PlaylistQuery, SpotifyQuery, LinkQuery or SearchQuery.
type Query interface {
	// Input returns the text the query was parsed from.
	Input() string
	isQuery()
}

// VideoQuery is a single YouTube video.
type VideoQuery struct {
	URL string
	ID  string
}

// ShortQuery is a YouTube short.
type ShortQuery struct {
	URL string
	ID  string
}

// PlaylistQuery is a YouTube playlist.
type PlaylistQuery struct {
	URL string
	ID  string
}

// SpotifyKind is the kind of entity a Spotify link points at.
type SpotifyKind string

const (
	SpotifyKindTrack    SpotifyKind = "track"
	SpotifyKindPlaylist SpotifyKind = "playlist"
	SpotifyKindAlbum    SpotifyKind = "album"
	SpotifyKindArtist   SpotifyKind = "artist"
	SpotifyKindUnknown  SpotifyKind = ""
)

// SpotifyQuery is a Spotify link. Kind and ID are informational: every Spotify
// link resolves through the generic downloader.
type SpotifyQuery struct {
	URL  string
	Kind SpotifyKind
	ID   string
}

// LinkQuery is any other URL, resolved by the generic downloader.
type LinkQuery struct {
	URL string
}

// SearchQuery is free text, resolved by the downloader's search mode.
type SearchQuery struct {
	Terms string
}

func (q VideoQuery) Input() string    { return q.URL }
func (q ShortQuery) Input() string    { return q.URL }
func (q PlaylistQuery) Input() string { return q.URL }
func (q SpotifyQuery) Input() string  { return q.URL }
func (q LinkQuery) Input() string     { return q.URL }
func (q SearchQuery) Input() string   { return q.Terms }

func (VideoQuery) isQuery()    {}
func (ShortQuery) isQuery()    {}
func (PlaylistQuery) isQuery() {}
func (SpotifyQuery) isQuery()  {}
func (LinkQuery) isQuery()     {}
func (SearchQuery) isQuery()   {}

// DownloaderTarget returns the string handed to the downloader for a search.
func (q SearchQuery) DownloaderTarget() string {
	return SearchPrefix + q.Terms
}

// IsURLQuery returns true for every variant except SearchQuery.
func IsURLQuery(q Query) bool {
	_, ok := q.(SearchQuery)
	return !ok
}

// BackendFor returns the downloader variant used to resolve the query.
func BackendFor(q Query) Backend {
	if _, ok := q.(SpotifyQuery); ok {
		return BackendYoutubeDL
	}
	return BackendYTDLP
}

// ParseQuery classifies user input.
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)

	u, ok := parseURL(input)
	if !ok {
		return SearchQuery{Terms: input}
	}

	host := strings.ToLower(u.Hostname())
	raw := u.String()

	switch {
	case strings.HasSuffix(host, "youtube.com") || strings.HasSuffix(host, "youtu.be"):
		return parseYouTube(u, host, raw)
	case strings.HasSuffix(host, "open.spotify.com"):
		return parseSpotify(u, raw)
	default:
		return LinkQuery{URL: raw}
	}
}

func parseURL(input string) (*url.URL, bool) {
	if strings.HasPrefix(input, "www.") {
		input = "https://" + input
	}
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return nil, false
	}
	if strings.ContainsAny(input, " \t\n") {
		return nil, false
	}

	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}

func parseYouTube(u *url.URL, host, raw string) Query {
	values := u.Query()
	if list := values.Get("list"); list != "" {
		return PlaylistQuery{URL: raw, ID: list}
	}
	if v := values.Get("v"); v != "" {
		return VideoQuery{URL: raw, ID: v}
	}

	segments := pathSegments(u)
	if len(segments) >= 2 && segments[0] == "shorts" {
		return ShortQuery{URL: raw, ID: segments[1]}
	}
	if strings.HasSuffix(host, "youtu.be") && len(segments) >= 1 {
		return VideoQuery{URL: raw, ID: segments[0]}
	}

	return LinkQuery{URL: raw}
}

func parseSpotify(u *url.URL, raw string) Query {
	q := SpotifyQuery{URL: raw}

	segments := pathSegments(u)
	// Localized links carry a leading "intl-xx" segment.
	if len(segments) > 0 && strings.HasPrefix(segments[0], "intl-") {
		segments = segments[1:]
	}
	if len(segments) < 2 {
		return q
	}

	switch kind := SpotifyKind(segments[0]); kind {
	case SpotifyKindTrack, SpotifyKindPlaylist, SpotifyKindAlbum, SpotifyKindArtist:
		q.Kind = kind
		q.ID = segments[1]
	}
	return q
}

func pathSegments(u *url.URL) []string {
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
