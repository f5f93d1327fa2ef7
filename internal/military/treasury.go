package military

import (
	"log/slog"
	"sync/atomic"
)

// Treasury is a gold balance shared between tick systems. Withdrawals check
// funds and the balance can never go negative; concurrent war ticks touching
// the same treasury stay consistent without a lock.
type Treasury struct {
	balance atomic.Uint64
}

// NewTreasury creates a treasury with an opening balance.
func NewTreasury(opening uint64) *Treasury {
	t := &Treasury{}
	t.balance.Store(opening)
	return t
}

// Balance returns the current gold balance.
func (t *Treasury) Balance() uint64 {
	return t.balance.Load()
}

// Deposit adds gold to the treasury.
func (t *Treasury) Deposit(amount uint64, reason string) {
	if amount == 0 {
		return
	}
	t.balance.Add(amount)
	slog.Debug("treasury deposit", "amount", amount, "reason", reason)
}

// Withdraw removes gold, failing with ErrInsufficientFunds when the balance
// cannot cover the amount. The balance is left unchanged on failure.
func (t *Treasury) Withdraw(amount uint64, reason string) error {
	for {
		current := t.balance.Load()
		if current < amount {
			return ErrInsufficientFunds
		}
		if t.balance.CompareAndSwap(current, current-amount) {
			slog.Debug("treasury withdrawal", "amount", amount, "reason", reason)
			return nil
		}
	}
}

// WithdrawUpTo removes at most amount, returning what was actually taken.
// Used for loot and fines where a partial take is acceptable.
func (t *Treasury) WithdrawUpTo(amount uint64, reason string) uint64 {
	for {
		current := t.balance.Load()
		take := amount
		if take > current {
			take = current
		}
		if take == 0 {
			return 0
		}
		if t.balance.CompareAndSwap(current, current-take) {
			slog.Debug("treasury withdrawal", "amount", take, "reason", reason)
			return take
		}
	}
}
