package usecases

import "errors"

// Command validation errors. They are reported to the user and never mutate state.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not in voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("user not in a voice channel")

	// ErrWrongChannel is returned when the user is not in the bot's voice channel.
	ErrWrongChannel = errors.New("user not in the channel")

	// ErrAlreadyConnected is returned by join when the bot is already in a voice channel.
	ErrAlreadyConnected = errors.New("already in voice channel")
)
