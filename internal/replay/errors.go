package replay

import "errors"

var (
	// ErrInsufficientFunds rejects an order whose cost or amount exceeds
	// the free balance of the paying asset. No state changes when it is
	// returned.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound covers unknown order ids and, in strict mode, unknown
	// symbols.
	ErrNotFound = errors.New("not found")
)
