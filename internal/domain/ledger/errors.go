package ledger

import "errors"

var (
	// ErrInvalidStats indicates persisted stats that violate ledger invariants.
	ErrInvalidStats = errors.New("invalid ledger stats")
	// ErrInvalidInput indicates invalid input for ledger operations.
	ErrInvalidInput = errors.New("invalid ledger input")
)
