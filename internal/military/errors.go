package military

import "errors"

// Domain failure modes. Resource shortfalls are recoverable — the tick process
// decides whether to retry, cancel, or degrade. Invalid transitions are
// programming errors and leave state untouched.
var (
	ErrCooldownActive       = errors.New("rename cooldown active")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrInsufficientSupplies = errors.New("insufficient supplies")
)
