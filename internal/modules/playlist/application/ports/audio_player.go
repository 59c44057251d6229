package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// AudioPlayer defines the interface for audio playback operations.
type AudioPlayer interface {
	// Play starts playback of the given media, replacing anything currently playing.
	// The track end event of this playback carries sequence.
	Play(ctx context.Context, guildID snowflake.ID, media domain.Media, sequence uint64) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error
}
