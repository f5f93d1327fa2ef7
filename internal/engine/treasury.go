// Settlement treasury access. The settlement ledger proper lives outside
// this module; the engine only needs withdraw-with-check and deposit.
package engine

import (
	"sync"

	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

// TreasuryService is the treasury collaborator consumed for siege loot,
// mercenary payroll, and army funding. Withdrawals fail rather than drive a
// balance negative.
type TreasuryService interface {
	Withdraw(ref world.SettlementRef, amount uint64, reason string) error
	Deposit(ref world.SettlementRef, amount uint64, reason string)
	Balance(ref world.SettlementRef) uint64
}

// LocalTreasuries is an in-memory TreasuryService. Accounts are created on
// first touch.
type LocalTreasuries struct {
	mu       sync.Mutex
	accounts map[world.SettlementRef]*military.Treasury
}

// NewLocalTreasuries creates an empty treasury ledger.
func NewLocalTreasuries() *LocalTreasuries {
	return &LocalTreasuries{accounts: make(map[world.SettlementRef]*military.Treasury)}
}

// Fund sets up an account with an opening balance.
func (l *LocalTreasuries) Fund(ref world.SettlementRef, opening uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[ref] = military.NewTreasury(opening)
}

func (l *LocalTreasuries) account(ref world.SettlementRef) *military.Treasury {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.accounts[ref]
	if !ok {
		t = military.NewTreasury(0)
		l.accounts[ref] = t
	}
	return t
}

// Withdraw implements TreasuryService.
func (l *LocalTreasuries) Withdraw(ref world.SettlementRef, amount uint64, reason string) error {
	return l.account(ref).Withdraw(amount, reason)
}

// Deposit implements TreasuryService.
func (l *LocalTreasuries) Deposit(ref world.SettlementRef, amount uint64, reason string) {
	l.account(ref).Deposit(amount, reason)
}

// Balance implements TreasuryService.
func (l *LocalTreasuries) Balance(ref world.SettlementRef) uint64 {
	return l.account(ref).Balance()
}
