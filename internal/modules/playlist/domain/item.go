package domain

import (
	"strconv"
	"strings"
	"time"
)

// QueueItem is a resolved playable unit.
// Items are values: nothing mutates one after it has been enqueued.
type QueueItem struct {
	ID           string // provider-native identifier
	Title        string
	SourceURL    string // canonical URL handed to the downloader
	Extractor    string // e.g., "youtube", "soundcloud", "generic"
	ThumbnailURL string
	Duration     time.Duration // zero when unknown
	IsLive       bool
	WasLive      bool
	PlaylistID   string
	WebpageURL   string
	Backend      Backend // downloader variant that must materialize the media
}

// WithBackend returns a copy of the item stamped with the given backend.
func (i QueueItem) WithBackend(backend Backend) QueueItem {
	i.Backend = backend
	return i
}

// CacheKey returns the (extractor, id) pair identifying the item's media.
func (i QueueItem) CacheKey() CacheKey {
	return CacheKey{Extractor: i.Extractor, ID: i.ID}
}

// IsValid returns true if the item has the minimum required fields.
func (i QueueItem) IsValid() bool {
	return i.ID != "" && i.Extractor != "" && i.SourceURL != ""
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss.
// Returns "LIVE" for live streams and an empty string when the duration is unknown.
func (i QueueItem) FormattedDuration() string {
	if i.IsLive {
		return "LIVE"
	}
	if i.Duration <= 0 {
		return ""
	}

	totalSeconds := int(i.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// CacheKey identifies a materialized media artifact.
type CacheKey struct {
	Extractor string
	ID        string
}

// Segments returns the key as two path-safe segments.
func (k CacheKey) Segments() (extractor, id string) {
	return sanitizeSegment(k.Extractor), sanitizeSegment(k.ID)
}

// String returns the key in "extractor/id" form.
func (k CacheKey) String() string {
	extractor, id := k.Segments()
	return extractor + "/" + id
}

var segmentReplacer = strings.NewReplacer("/", "_", "\\", "_")

func sanitizeSegment(s string) string {
	s = segmentReplacer.Replace(s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
