package sentinel

import "errors"

// Sentinel dependency errors. Stores and ledger adapters return these (optionally wrapped)
// so the pass service can translate them into domain errors exactly once.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyUsed      = errors.New("already used")
	ErrTransferRejected = errors.New("transfer rejected")
	ErrUnavailable      = errors.New("unavailable")
	// ErrUnconfirmed means a transfer was broadcast but its outcome is unknown.
	ErrUnconfirmed = errors.New("unconfirmed")
)
