package military

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnitStatsTable(t *testing.T) {
	cases := []struct {
		name string
		typ  UnitType
		want BaseStats
	}{
		{"levy", UnitLevy, BaseStats{1, 1, 1, -5}},
		{"militia", UnitMilitia, BaseStats{2, 2, 2, 0}},
		{"men at arms", UnitMenAtArms, BaseStats{4, 4, 5, 5}},
		{"knights", UnitKnights, BaseStats{8, 6, 15, 15}},
		{"archers", UnitArchers, BaseStats{3, 1, 3, 0}},
		{"crossbowmen", UnitCrossbowmen, BaseStats{5, 2, 4, 0}},
		{"cavalry", UnitCavalry, BaseStats{6, 3, 8, 10}},
		{"siege engineers", UnitSiegeEngineers, BaseStats{1, 1, 10, 0}},
		{"unknown type falls back", UnitType(99), BaseStats{1, 1, 1, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, UnitStats(tc.typ))
		})
	}
}

func TestNewUnitStartsAtFullStrength(t *testing.T) {
	u := NewUnit(UnitKnights, 120)
	require.Equal(t, 120, u.Count)
	require.Equal(t, 120, u.MaxCount)
	require.Equal(t, UnitReady, u.Status)
	require.Equal(t, 8, u.Attack)
	require.Equal(t, 15, u.UpkeepPerSoldier)
	require.True(t, u.IsAlive())
}

func TestApplyCasualties(t *testing.T) {
	t.Run("partial losses", func(t *testing.T) {
		u := NewUnit(UnitMilitia, 100)
		require.Equal(t, 30, u.ApplyCasualties(30))
		require.Equal(t, 70, u.Count)
		require.True(t, u.IsAlive())
	})

	t.Run("losses clamp to remaining count", func(t *testing.T) {
		u := NewUnit(UnitMilitia, 100)
		require.Equal(t, 100, u.ApplyCasualties(250))
		require.Equal(t, 0, u.Count)
		require.Equal(t, UnitDestroyed, u.Status)
		require.False(t, u.IsAlive())
	})

	t.Run("non-positive losses are a no-op", func(t *testing.T) {
		u := NewUnit(UnitMilitia, 100)
		require.Equal(t, 0, u.ApplyCasualties(0))
		require.Equal(t, 0, u.ApplyCasualties(-5))
		require.Equal(t, 100, u.Count)
	})
}

func TestReinforce(t *testing.T) {
	t.Run("capped at muster strength", func(t *testing.T) {
		u := NewUnit(UnitArchers, 100)
		u.ApplyCasualties(40)
		require.Equal(t, 40, u.Reinforce(60))
		require.Equal(t, 100, u.Count)
	})

	t.Run("destroyed units stay destroyed", func(t *testing.T) {
		u := NewUnit(UnitArchers, 100)
		u.ApplyCasualties(100)
		require.Equal(t, 0, u.Reinforce(50))
		require.Equal(t, 0, u.Count)
		require.Equal(t, UnitDestroyed, u.Status)
	})
}
