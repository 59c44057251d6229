package ports

import (
	"context"

	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// SuggestionProvider returns search suggestions for a partial query.
type SuggestionProvider interface {
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

// LinkDescriber describes a link query with a human readable name.
type LinkDescriber interface {
	// Describe returns a display name for q, or false if q is not handled.
	Describe(ctx context.Context, q domain.Query) (string, bool)
}
