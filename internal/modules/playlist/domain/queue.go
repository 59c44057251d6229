package domain

// Queue is a strict FIFO of queue items.
// Consuming removes the head; there is no cursor and nothing is replayed.
type Queue struct {
	items []QueueItem
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		items: make([]QueueItem, 0),
	}
}

// IsEmpty returns true if the queue has no items.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of items waiting in the queue.
func (q *Queue) Len() int {
	return len(q.items)
}

// List returns a copy of all items in play order.
func (q *Queue) List() []QueueItem {
	result := make([]QueueItem, q.Len())
	copy(result, q.items)
	return result
}

// Append adds items to the end of the queue and returns the appended slice.
func (q *Queue) Append(items ...QueueItem) []QueueItem {
	start := q.Len()
	q.items = append(q.items, items...)

	appended := make([]QueueItem, len(items))
	copy(appended, q.items[start:])
	return appended
}

// Pop removes and returns the head item.
// Returns false if the queue is empty.
func (q *Queue) Pop() (QueueItem, bool) {
	if q.IsEmpty() {
		return QueueItem{}, false
	}

	head := q.items[0]
	q.items[0] = QueueItem{}
	q.items = q.items[1:]
	return head, true
}

// Clear removes all items from the queue and returns how many were dropped.
func (q *Queue) Clear() int {
	n := q.Len()
	q.items = make([]QueueItem, 0)
	return n
}
