package conflict

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

func testParties() (PartyRef, PartyRef) {
	return PartyRef{Kind: PartyKingdom, ID: uuid.New()},
		PartyRef{Kind: PartyKingdom, ID: uuid.New()}
}

func TestDeclareWar(t *testing.T) {
	attacker, defender := testParties()
	w := DeclareWar(attacker, defender, CasusConquest, 10)

	require.Equal(t, WarActive, w.Status)
	require.False(t, w.IsEnded())
	require.Len(t, w.Participants, 2)

	leaders := w.WarLeaders(SideAttacker)
	require.Len(t, leaders, 1)
	require.Equal(t, attacker, leaders[0].Participant)
	require.Equal(t, RolePrimary, leaders[0].Role)
}

func TestWinningSide(t *testing.T) {
	cases := []struct {
		name     string
		attacker int
		defender int
		want     Side
		isWinner bool
	}{
		{"decisive score wins outright", 100, 0, SideAttacker, true},
		{"lead beyond margin wins", 60, 30, SideAttacker, true},
		{"lead inside margin is contested", 60, 45, 0, false},
		{"lead of exactly the margin is contested", 40, 20, 0, false},
		{"defender can win too", 10, 45, SideDefender, true},
		{"fresh war has no winner", 0, 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attacker, defender := testParties()
			w := DeclareWar(attacker, defender, CasusClaim, 0)
			w.AttackerScore = tc.attacker
			w.DefenderScore = tc.defender

			side, ok := w.WinningSide()
			require.Equal(t, tc.isWinner, ok)
			if tc.isWinner {
				require.Equal(t, tc.want, side)
			}
		})
	}
}

func TestWarStatusTransitions(t *testing.T) {
	attacker, defender := testParties()
	w := DeclareWar(attacker, defender, CasusClaim, 0)

	require.NoError(t, w.MarkWinning(SideAttacker))
	require.Equal(t, WarAttackerWinning, w.Status)

	// The tide can turn while the war runs.
	require.NoError(t, w.MarkWinning(SideDefender))
	require.Equal(t, WarDefenderWinning, w.Status)

	require.NoError(t, w.Conclude(WarDefenderVictory, "the claim is renounced", 50))
	require.True(t, w.IsEnded())
	require.Equal(t, uint64(50), *w.EndedTick)
	require.Equal(t, "the claim is renounced", w.PeaceTerms)

	// All participants are out once the war ends.
	require.Empty(t, w.ActiveParticipants(SideAttacker))
	require.Empty(t, w.ActiveParticipants(SideDefender))

	t.Run("ended war rejects further transitions", func(t *testing.T) {
		require.ErrorIs(t, w.Conclude(WarWhitePeace, "", 60), military.ErrInvalidTransition)
		require.ErrorIs(t, w.MarkWinning(SideAttacker), military.ErrInvalidTransition)
	})

	t.Run("ended war drops late score", func(t *testing.T) {
		before := w.DefenderScore
		require.False(t, w.AddScore(SideDefender, 10))
		require.Equal(t, before, w.DefenderScore)
	})
}

func TestConcludeRejectsNonTerminalStatus(t *testing.T) {
	attacker, defender := testParties()
	w := DeclareWar(attacker, defender, CasusRaid, 0)

	require.ErrorIs(t, w.Conclude(WarActive, "", 5), military.ErrInvalidTransition)
	require.False(t, w.IsEnded())
}

func TestGoalAchieveOnce(t *testing.T) {
	attacker, _ := testParties()
	castle := world.SettlementRef{Kind: world.RefCastle, ID: uuid.New()}
	g := NewSettlementGoal(GoalTerritory, castle, attacker, SideAttacker, 60)

	require.True(t, g.TargetsSettlement(castle))
	require.False(t, g.TargetsSettlement(world.SettlementRef{Kind: world.RefCastle, ID: uuid.New()}))

	points, ok := g.Achieve()
	require.True(t, ok)
	require.Equal(t, 60, points)

	points, ok = g.Achieve()
	require.False(t, ok)
	require.Zero(t, points)
}

func TestParticipantLeave(t *testing.T) {
	attacker, defender := testParties()
	w := DeclareWar(attacker, defender, CasusClaim, 0)
	ally := w.AddParticipant(PartyRef{Kind: PartyBarony, ID: uuid.New()}, SideAttacker, RoleAlly, false, 5)

	ally.Contribute(12)
	require.Equal(t, 12, ally.ContributionScore)

	ally.Leave(20)
	require.False(t, ally.IsActive())
	require.Equal(t, uint64(20), *ally.LeftTick)

	// Departed participants stop accruing and keep their first exit tick.
	ally.Contribute(5)
	require.Equal(t, 12, ally.ContributionScore)
	ally.Leave(30)
	require.Equal(t, uint64(20), *ally.LeftTick)

	require.Len(t, w.ActiveParticipants(SideAttacker), 1)
	require.Len(t, w.Participants, 3)
}
