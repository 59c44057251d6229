package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// MediaSupplier turns queue items into playable media.
type MediaSupplier interface {
	// Materialize returns a ready-to-play artifact for item, to be played in guildID.
	// The artifact stays available until the guild materializes another item.
	// Fails with domain.ErrMediaUnavailable when the artifact cannot be produced.
	Materialize(ctx context.Context, guildID snowflake.ID, item domain.QueueItem) (domain.Media, error)
}
