package usecases

import (
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// QueueItem is an alias for domain.QueueItem.
type QueueItem = domain.QueueItem

// SkipOutcome is an alias for domain.SkipOutcome.
type SkipOutcome = domain.SkipOutcome

// ResolutionError is an alias for domain.ResolutionError.
type ResolutionError = domain.ResolutionError

// Skip outcomes.
const (
	SkipSkipped       = domain.SkipSkipped
	SkipQueueEnded    = domain.SkipQueueEnded
	SkipNothingToPlay = domain.SkipNothingToPlay
)

// ErrNoItemsResolved is re-exported from domain.
var ErrNoItemsResolved = domain.ErrNoItemsResolved
