package domain

import "errors"

var (
	// ErrBankNotFound indicates the question bank for an exam could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrSessionNotFound is returned when a quiz session has not been started.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrAlreadyQueued is returned when a player joins matchmaking twice for the same mode.
	ErrAlreadyQueued = errors.New("player already in matchmaking queue")
	// ErrNotQueued is returned when leaving a queue the player never joined.
	ErrNotQueued = errors.New("player not in matchmaking queue")
)
