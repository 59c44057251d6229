package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

const DefaultPageSize = 10

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID  snowflake.ID
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to 10)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	Current     *domain.QueueItem
	Items       []domain.QueueItem
	StartIndex  int // 0-indexed position of Items[0] among the upcoming items
	TotalItems  int
	CurrentPage int
	TotalPages  int
}

// QueueClearInput contains the input for the QueueClear use case.
type QueueClearInput struct {
	GuildID snowflake.ID
}

// QueueClearOutput contains the result of the QueueClear use case.
type QueueClearOutput struct {
	ClearedCount int
}

// QueueService handles queue inspection and maintenance.
type QueueService struct {
	registry domain.PlaylistRegistry
}

// NewQueueService creates a new QueueService.
func NewQueueService(registry domain.PlaylistRegistry) *QueueService {
	return &QueueService{
		registry: registry,
	}
}

// List returns one page of the upcoming items.
func (q *QueueService) List(input QueueListInput) (*QueueListOutput, error) {
	snapshot := q.registry.Snapshot(input.GuildID)
	if snapshot.VoiceChannelID == 0 {
		return nil, ErrNotConnected
	}

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(snapshot.Upcoming)
	totalPages := max((total+pageSize-1)/pageSize, 1)

	page := min(max(input.Page, 1), totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	return &QueueListOutput{
		Current:     snapshot.Current,
		Items:       snapshot.Upcoming[start:end],
		StartIndex:  start,
		TotalItems:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}

// Clear drops every upcoming item. The current item keeps playing.
func (q *QueueService) Clear(input QueueClearInput) (*QueueClearOutput, error) {
	var (
		connected bool
		cleared   int
	)
	q.registry.WithQueue(input.GuildID, func(p *domain.Playlist) {
		connected = p.IsConnected()
		if connected {
			cleared = p.Clear()
		}
	})

	if !connected {
		return nil, ErrNotConnected
	}
	return &QueueClearOutput{ClearedCount: cleared}, nil
}
