package core

import "errors"

// Error kinds shared by every component. Each is recoverable: an operation
// that fails with one of them leaves its receiver in the prior valid state.
var (
	// ErrInvalidParameter reports a value or name outside a declared contract.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOutOfRange reports a delay or offset request beyond buffer capacity.
	ErrOutOfRange = errors.New("out of range")

	// ErrNotReady reports a query issued before warm-up or initialization.
	ErrNotReady = errors.New("not ready")
)
