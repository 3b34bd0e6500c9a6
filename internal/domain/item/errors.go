package item

import "errors"

var (
	// ErrItemNotFound indicates the item doesn't exist in the list.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidInput indicates invalid input for item operations.
	ErrInvalidInput = errors.New("invalid item input")
	// ErrAlreadyCompleted indicates the item is already completed.
	ErrAlreadyCompleted = errors.New("item already completed")
	// ErrNotReplaceable indicates the list does not support bulk replacement.
	ErrNotReplaceable = errors.New("list does not support replacement")
)
