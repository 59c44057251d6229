package infrastructure

import (
	"context"
	"log/slog"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sglre6355/potbot/internal/modules/playlist/application/ports"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// SpotifyDescriber names Spotify links with their catalogue title.
type SpotifyDescriber struct {
	client *spotify.Client
}

// NewSpotifyDescriber creates a SpotifyDescriber authenticated with client credentials.
func NewSpotifyDescriber(ctx context.Context, clientID, clientSecret string) *SpotifyDescriber {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return newSpotifyDescriber(spotify.New(config.Client(ctx), spotify.WithRetry(true)))
}

func newSpotifyDescriber(client *spotify.Client) *SpotifyDescriber {
	return &SpotifyDescriber{client: client}
}

// Describe returns the catalogue name of a Spotify link.
func (d *SpotifyDescriber) Describe(ctx context.Context, q domain.Query) (string, bool) {
	sq, ok := q.(domain.SpotifyQuery)
	if !ok || sq.ID == "" {
		return "", false
	}

	name, err := d.describe(ctx, sq)
	if err != nil {
		slog.Debug("failed to describe spotify link", "url", sq.URL, "error", err)
		return "", false
	}
	return name, name != ""
}

func (d *SpotifyDescriber) describe(ctx context.Context, q domain.SpotifyQuery) (string, error) {
	id := spotify.ID(q.ID)

	switch q.Kind {
	case domain.SpotifyKindTrack:
		track, err := d.client.GetTrack(ctx, id)
		if err != nil {
			return "", err
		}
		if len(track.Artists) > 0 {
			return track.Name + " - " + track.Artists[0].Name, nil
		}
		return track.Name, nil
	case domain.SpotifyKindAlbum:
		album, err := d.client.GetAlbum(ctx, id)
		if err != nil {
			return "", err
		}
		return album.Name, nil
	case domain.SpotifyKindPlaylist:
		playlist, err := d.client.GetPlaylist(ctx, id)
		if err != nil {
			return "", err
		}
		return playlist.Name, nil
	case domain.SpotifyKindArtist:
		artist, err := d.client.GetArtist(ctx, id)
		if err != nil {
			return "", err
		}
		return artist.Name, nil
	default:
		return "", nil
	}
}

var _ ports.LinkDescriber = (*SpotifyDescriber)(nil)
