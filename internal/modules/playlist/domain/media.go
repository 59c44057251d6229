package domain

// Media is a playable artifact produced for a QueueItem.
type Media struct {
	Key  CacheKey
	Path string // local file path
	// Cached is true when the artifact was already present before the request.
	Cached bool
}
