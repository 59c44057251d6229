package domain

// Backend names the external downloader variant used for an item.
type Backend string

const (
	BackendYTDLP     Backend = "yt-dlp"
	BackendYoutubeDL Backend = "youtube-dl"
)

// OrDefault returns yt-dlp for an unset backend.
func (b Backend) OrDefault() Backend {
	if b == "" {
		return BackendYTDLP
	}
	return b
}
