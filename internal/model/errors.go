package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomAborted    = errors.New("room aborted")
	ErrRoomClosed     = errors.New("room is closed")
	ErrHandInProgress = errors.New("hand is in progress")
	ErrInvalidRoom    = errors.New("invalid room parameters")

	// Bot errors
	ErrUnknownBotStrategy = errors.New("unknown bot strategy")

	// Archive errors
	ErrHandNotFound = errors.New("hand not found")
)
