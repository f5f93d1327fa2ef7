package conflict

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

func testBattle() *Battle {
	location := world.SettlementRef{Kind: world.RefTown, ID: uuid.New()}
	terrain := world.TerrainModifiers{Terrain: world.TerrainPlains, AttackerMod: 1.0, DefenderMod: 1.0, CavalryUsable: true}
	weather := world.WeatherModifiers{Description: "clear skies", CombatMod: 1.0, MissileMod: 1.0}
	return NewBattle(uuid.New(), location, BattleField, 42, terrain, weather)
}

func TestNewBattle(t *testing.T) {
	b := testBattle()
	require.Equal(t, BattleOngoing, b.Status)
	require.Equal(t, PhaseEngagement, b.Phase)
	require.Equal(t, uint64(42), b.Day)
	require.Empty(t, b.Participants)
}

func TestBattleAddArmy(t *testing.T) {
	b := testBattle()
	b.AddArmy(uuid.New(), SideAttacker, 800)
	b.AddArmy(uuid.New(), SideAttacker, 300)
	b.AddArmy(uuid.New(), SideDefender, 950)

	require.Equal(t, 1100, b.AttackerTroopsStart)
	require.Equal(t, 950, b.DefenderTroopsStart)
	require.Len(t, b.Participants, 3)
	require.Equal(t, b.ID, b.Participants[0].BattleID)
}

func TestBattlePhases(t *testing.T) {
	t.Run("advance runs the full sequence once", func(t *testing.T) {
		b := testBattle()
		for _, want := range []BattlePhase{PhaseMelee, PhasePursuit, PhaseAftermath} {
			require.NoError(t, b.AdvancePhase())
			require.Equal(t, want, b.Phase)
		}
		require.ErrorIs(t, b.AdvancePhase(), military.ErrInvalidTransition)
		require.Equal(t, PhaseAftermath, b.Phase)
	})

	t.Run("set phase skips forward", func(t *testing.T) {
		b := testBattle()
		require.NoError(t, b.SetPhase(PhasePursuit))
		require.Equal(t, PhasePursuit, b.Phase)
	})

	t.Run("set phase never moves backward", func(t *testing.T) {
		b := testBattle()
		require.NoError(t, b.SetPhase(PhaseMelee))
		err := b.SetPhase(PhaseEngagement)
		require.ErrorIs(t, err, military.ErrInvalidTransition)
		require.Equal(t, PhaseMelee, b.Phase)
	})

	t.Run("unknown phase is rejected", func(t *testing.T) {
		b := testBattle()
		require.ErrorIs(t, b.SetPhase(BattlePhase("parley")), military.ErrInvalidTransition)
	})
}

func TestBattleCasualties(t *testing.T) {
	b := testBattle()
	require.NoError(t, b.AddCasualties(SideAttacker, 120))
	require.NoError(t, b.AddCasualties(SideAttacker, 30))
	require.NoError(t, b.AddCasualties(SideDefender, 200))

	require.Equal(t, 150, b.AttackerCasualties)
	require.Equal(t, 200, b.DefenderCasualties)
	require.Equal(t, 350, b.TotalCasualties())

	require.ErrorIs(t, b.AddCasualties(SideDefender, -5), military.ErrInvalidTransition)
	require.Equal(t, 200, b.DefenderCasualties)
}

func TestBattleResolve(t *testing.T) {
	b := testBattle()

	require.ErrorIs(t, b.Resolve(BattleOngoing), military.ErrInvalidTransition)
	require.Equal(t, BattleOngoing, b.Status)

	require.NoError(t, b.Resolve(BattleAttackerVictory))
	require.Equal(t, BattleAttackerVictory, b.Status)

	// The first outcome stands.
	require.ErrorIs(t, b.Resolve(BattleDraw), military.ErrInvalidTransition)
	require.Equal(t, BattleAttackerVictory, b.Status)
}

func TestBattleLog(t *testing.T) {
	b := testBattle()
	b.AppendLog(42, "the lines meet at %s", "the ford")
	b.AppendLog(43, "the cavalry turns the flank")

	require.Len(t, b.Log, 2)
	require.Equal(t, "the lines meet at the ford", b.Log[0].Message)
	require.Equal(t, uint64(43), b.Log[1].Tick)
}
