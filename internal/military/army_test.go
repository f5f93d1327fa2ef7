package military

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warmarch/internal/world"
)

func testOwner() OwnerRef {
	return OwnerRef{
		Kind:   OwnerPolity,
		Polity: world.SettlementRef{Kind: world.RefKingdom, ID: uuid.New()},
	}
}

func TestNewArmy(t *testing.T) {
	a := NewArmy("Host of the Marches", testOwner(), world.None(), 1000)

	require.Equal(t, ArmyMustering, a.Status)
	require.Equal(t, 50.0, a.Morale)
	require.Equal(t, uint64(1000), a.Treasury.Balance())
	require.Nil(t, a.LastRenamedAt)
	require.True(t, a.IsOperational())
	require.False(t, a.HasSupplies())
}

func TestRenameCooldown(t *testing.T) {
	a := NewArmy("First Banner", testOwner(), world.None(), 0)
	now := time.Date(1347, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first rename always allowed", func(t *testing.T) {
		require.NoError(t, a.Rename("Second Banner", now))
		require.Equal(t, "Second Banner", a.Name)
	})

	t.Run("rename inside cooldown rejected", func(t *testing.T) {
		err := a.Rename("Third Banner", now.Add(30*24*time.Hour))
		require.ErrorIs(t, err, ErrCooldownActive)
		require.Equal(t, "Second Banner", a.Name)
	})

	t.Run("rename at exactly the cooldown boundary rejected", func(t *testing.T) {
		err := a.Rename("Third Banner", now.Add(RenameCooldown))
		require.ErrorIs(t, err, ErrCooldownActive)
	})

	t.Run("rename after cooldown allowed", func(t *testing.T) {
		require.NoError(t, a.Rename("Third Banner", now.Add(RenameCooldown+time.Second)))
		require.Equal(t, "Third Banner", a.Name)
	})
}

func TestArmyTotals(t *testing.T) {
	a := NewArmy("Host", testOwner(), world.None(), 0)
	a.AddUnit(NewUnit(UnitMenAtArms, 100)) // 4 atk, 4 def, 5 upkeep
	a.AddUnit(NewUnit(UnitKnights, 10))    // 8 atk, 6 def, 15 upkeep

	require.Equal(t, 110, a.TotalTroops())
	require.Equal(t, 100*4+10*8, a.TotalAttack())
	require.Equal(t, 100*4+10*6, a.TotalDefense())
	require.Equal(t, 110, a.DailySupplyCost)
	require.Equal(t, uint64(100*5+10*15), a.GoldUpkeep)
	require.Equal(t, 100, a.Composition[UnitMenAtArms])
	require.Equal(t, 10, a.Composition[UnitKnights])
}

func TestMoraleBonusWeighted(t *testing.T) {
	a := NewArmy("Host", testOwner(), world.None(), 0)
	a.AddUnit(NewUnit(UnitLevy, 90))    // -5 each
	a.AddUnit(NewUnit(UnitKnights, 10)) // +15 each

	// (90*-5 + 10*15) / 100 = -3.
	require.InDelta(t, -3.0, a.MoraleBonus(), 1e-9)
}

func TestDeadUnitsExcludedFromTotals(t *testing.T) {
	a := NewArmy("Host", testOwner(), world.None(), 0)
	archers := NewUnit(UnitArchers, 50)
	a.AddUnit(NewUnit(UnitMilitia, 200))
	a.AddUnit(archers)

	archers.ApplyCasualties(50)
	a.RefreshComposition()

	require.Equal(t, 200, a.TotalTroops())
	require.Equal(t, 200, a.DailySupplyCost)
	require.NotContains(t, a.Composition, UnitArchers)
	require.False(t, a.HasUnitType(UnitArchers))
	require.True(t, a.HasUnitType(UnitMilitia))
}

func TestDisbandIsTerminal(t *testing.T) {
	a := NewArmy("Host", testOwner(), world.None(), 0)
	a.AddUnit(NewUnit(UnitMilitia, 100))
	a.SupplyLines = append(a.SupplyLines,
		NewSupplyLine(a.ID, world.SettlementRef{Kind: world.RefTown, ID: uuid.New()}, 100, 2, 50))

	require.NoError(t, a.Disband())
	require.Equal(t, ArmyDisbanded, a.Status)
	require.False(t, a.IsOperational())
	require.Equal(t, 0, a.TotalTroops())
	require.Equal(t, SupplySevered, a.SupplyLines[0].Status)

	require.ErrorIs(t, a.Disband(), ErrInvalidTransition)
	require.ErrorIs(t, a.SetStatus(ArmyMarching), ErrInvalidTransition)
}

func TestSpendSupplies(t *testing.T) {
	a := NewArmy("Host", testOwner(), world.None(), 0)
	a.Supplies = 100

	require.NoError(t, a.SpendSupplies(60))
	require.Equal(t, 40, a.Supplies)

	// A shortfall consumes nothing.
	require.ErrorIs(t, a.SpendSupplies(41), ErrInsufficientSupplies)
	require.Equal(t, 40, a.Supplies)

	require.NoError(t, a.SpendSupplies(40))
	require.Equal(t, 0, a.Supplies)
}
