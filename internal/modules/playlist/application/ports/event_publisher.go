package ports

import "github.com/sglre6355/potbot/internal/modules/playlist/domain"

// EventPublisher defines the interface for publishing events asynchronously.
type EventPublisher interface {
	Publish(event domain.Event) error
}
