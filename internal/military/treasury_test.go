package military

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreasuryWithdraw(t *testing.T) {
	tr := NewTreasury(100)

	require.NoError(t, tr.Withdraw(60, "upkeep"))
	require.Equal(t, uint64(40), tr.Balance())

	require.ErrorIs(t, tr.Withdraw(41, "upkeep"), ErrInsufficientFunds)
	require.Equal(t, uint64(40), tr.Balance())
}

func TestTreasuryWithdrawUpTo(t *testing.T) {
	tr := NewTreasury(100)

	require.Equal(t, uint64(100), tr.WithdrawUpTo(250, "loot"))
	require.Equal(t, uint64(0), tr.Balance())
	require.Equal(t, uint64(0), tr.WithdrawUpTo(10, "loot"))
}

func TestTreasuryConcurrentWithdrawals(t *testing.T) {
	tr := NewTreasury(1000)

	var wg sync.WaitGroup
	failures := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tr.Withdraw(15, "payroll"); err != nil {
				failures <- err
			}
		}()
	}
	wg.Wait()
	close(failures)

	// 1000 / 15 = 66 withdrawals can succeed; the rest must fail cleanly.
	failed := 0
	for err := range failures {
		require.ErrorIs(t, err, ErrInsufficientFunds)
		failed++
	}
	require.Equal(t, 34, failed)
	require.Equal(t, uint64(1000-66*15), tr.Balance())
}
