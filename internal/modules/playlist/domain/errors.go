package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItemsResolved is returned when a play request resolves to zero items.
	ErrNoItemsResolved = errors.New("no items resolved")

	// ErrMediaUnavailable is returned when an item cannot be materialized.
	ErrMediaUnavailable = errors.New("media unavailable")
)

// ResolutionError reports a failed play request resolution.
type ResolutionError struct {
	Input  string
	Detail string // optional provider message
	Err    error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("failed to resolve %q", e.Input)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
