package domain

// AdvanceResult is the terminal state of one advance.
type AdvanceResult int

const (
	// AdvanceStarted means an item is now playing.
	AdvanceStarted AdvanceResult = iota
	// AdvanceQueueFinished means the queue was exhausted.
	AdvanceQueueFinished
)

// AdvanceOutcome is the result of consuming and trying to play queue items.
type AdvanceOutcome struct {
	Result AdvanceResult
	Item   *QueueItem  // the started item, nil when the queue finished
	Failed []QueueItem // items skipped because they could not be played
}

// Started returns an outcome for an item that started playing.
func Started(item QueueItem, failed []QueueItem) AdvanceOutcome {
	return AdvanceOutcome{Result: AdvanceStarted, Item: &item, Failed: failed}
}

// QueueFinished returns an outcome for an exhausted queue.
func QueueFinished(failed []QueueItem) AdvanceOutcome {
	return AdvanceOutcome{Result: AdvanceQueueFinished, Failed: failed}
}

// IsStarted returns true if an item started playing.
func (o AdvanceOutcome) IsStarted() bool {
	return o.Result == AdvanceStarted
}

// SkipOutcome is the result of a skip request.
type SkipOutcome int

const (
	// SkipSkipped means the next item started playing.
	SkipSkipped SkipOutcome = iota
	// SkipQueueEnded means there was nothing left to play and the connection was released.
	SkipQueueEnded
	// SkipNothingToPlay means nothing was playing.
	SkipNothingToPlay
)

// String returns a human-readable representation of the skip outcome.
func (o SkipOutcome) String() string {
	switch o {
	case SkipSkipped:
		return "skipped"
	case SkipQueueEnded:
		return "queue_ended"
	default:
		return "nothing_to_play"
	}
}
