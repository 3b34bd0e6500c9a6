package app

import "errors"

var (
	// ErrInvalidBackup indicates a snapshot that cannot be restored.
	ErrInvalidBackup = errors.New("invalid backup")
	// ErrInvalidInput indicates invalid settings input.
	ErrInvalidInput = errors.New("invalid input")
)
