package engine

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warmarch/internal/conflict"
	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

// fixedDice pins every roll so campaign outcomes are exact.
type fixedDice struct {
	percent int
	intn    int
	float   float64
}

func (d fixedDice) Percent() int { return d.percent }

func (d fixedDice) Intn(n int) int {
	if d.intn < n {
		return d.intn
	}
	return n - 1
}

func (d fixedDice) Float() float64 { return d.float }

func newTestCampaign(dice fixedDice) (*Campaign, world.SettlementRef) {
	castle := world.SettlementRef{Kind: world.RefCastle, ID: uuid.New()}
	resolver := world.NewMapResolver()
	resolver.Add(&world.Settlement{Ref: castle, Name: "Ravenfell Keep"})

	treasuries := NewLocalTreasuries()
	treasuries.Fund(castle, 8000)

	return NewCampaign(11, resolver, treasuries, dice), castle
}

func testBelligerents() (conflict.PartyRef, military.OwnerRef, conflict.PartyRef) {
	kingdom := world.SettlementRef{Kind: world.RefKingdom, ID: uuid.New()}
	attacker := conflict.PartyRef{Kind: conflict.PartyKingdom, ID: kingdom.ID}
	owner := military.OwnerRef{Kind: military.OwnerPolity, Polity: kingdom}
	defender := conflict.PartyRef{Kind: conflict.PartyKingdom, ID: uuid.New()}
	return attacker, owner, defender
}

func hasEvent(c *Campaign, category, substr string) bool {
	for _, e := range c.Events {
		if e.Category == category && strings.Contains(e.Description, substr) {
			return true
		}
	}
	return false
}

// A fully supplied besieger with siege engines grinds a fortified castle
// down, storms it, and takes it, flipping the territory goal exactly once.
func TestSiegeRunsToCapture(t *testing.T) {
	// Rolls always succeed, bombardment always lands its maximum.
	c, castle := newTestCampaign(fixedDice{percent: 100, intn: 2, float: 0.5})
	attacker, owner, defender := testBelligerents()

	w := c.DeclareWar(attacker, defender, conflict.CasusConquest)
	w.AddGoal(conflict.NewSettlementGoal(conflict.GoalTerritory, castle, attacker, conflict.SideAttacker, 60))

	army := military.NewArmy("Host of the Vale", owner, world.None(), 100_000)
	army.AddUnit(military.NewUnit(military.UnitMenAtArms, 500))
	army.AddUnit(military.NewUnit(military.UnitSiegeEngineers, 40))
	army.Supplies = 1000
	source := world.SettlementRef{Kind: world.RefTown, ID: uuid.New()}
	army.SupplyLines = append(army.SupplyLines, military.NewSupplyLine(army.ID, source, 600, 2, 100))
	c.AddArmy(army)

	s, err := c.BeginSiege(w.ID, army, castle, 60, 400, 80, 5000)
	require.NoError(t, err)
	require.Equal(t, military.ArmyBesieging, army.Status)

	for tick := uint64(1); tick <= 20; tick++ {
		c.TickDay(tick)
	}

	require.Equal(t, conflict.SiegeCaptured, s.Status)
	require.True(t, s.HasBreach)
	require.Equal(t, military.ArmyEncamped, army.Status)
	require.Equal(t, castle, army.Location)

	// A quarter of the castle treasury changes hands.
	require.Equal(t, uint64(6000), c.Treasuries.Balance(castle))
	// Twenty days of upkeep for 500 men-at-arms and 40 engineers, plus loot.
	require.Equal(t, uint64(100_000-20*2900+2000), army.Treasury.Balance())

	// The territory goal pays out once and the war tilts to the attacker.
	require.True(t, w.Goals[0].Achieved)
	require.Equal(t, 60, w.AttackerScore)
	require.Equal(t, conflict.WarAttackerWinning, w.Status)

	leaders := w.WarLeaders(conflict.SideAttacker)
	require.Len(t, leaders, 1)
	require.Equal(t, 60, leaders[0].ContributionScore)

	require.True(t, hasEvent(c, "siege", "has fallen"))
}

// A one-sided field battle runs its phases to aftermath and pays war score
// to the winning side.
func TestBattleRunsToResolution(t *testing.T) {
	c, _ := newTestCampaign(fixedDice{percent: 100, intn: 0, float: 0.5})
	attacker, attackerOwner, defender := testBelligerents()

	w := c.DeclareWar(attacker, defender, conflict.CasusClaim)

	strong := military.NewArmy("Iron Column", attackerOwner, world.None(), 50_000)
	strong.AddUnit(military.NewUnit(military.UnitKnights, 300))
	strong.Supplies = 10_000
	c.AddArmy(strong)

	weak := military.NewArmy("Border Levy", military.OwnerRef{
		Kind:   military.OwnerPolity,
		Polity: world.SettlementRef{Kind: world.RefKingdom, ID: defender.ID},
	}, world.None(), 50_000)
	weak.AddUnit(military.NewUnit(military.UnitLevy, 300))
	weak.Supplies = 10_000
	c.AddArmy(weak)

	field := world.SettlementRef{Kind: world.RefTown, ID: uuid.New()}
	b := c.OpenBattle(w.ID, field, conflict.BattleField, []*military.Army{strong}, []*military.Army{weak})
	require.Equal(t, 300, b.AttackerTroopsStart)
	require.Equal(t, military.ArmyInBattle, strong.Status)

	for tick := uint64(1); tick <= 4; tick++ {
		c.TickDay(tick)
	}

	require.Equal(t, conflict.BattleAttackerVictory, b.Status)
	require.Equal(t, conflict.PhaseAftermath, b.Phase)
	require.Greater(t, b.DefenderCasualties, b.AttackerCasualties)
	require.Equal(t, b.TotalCasualties(), c.Stats.TotalCasualties)

	require.Equal(t, battleScoreValue, w.AttackerScore)
	require.Equal(t, military.ArmyEncamped, strong.Status)
	require.True(t, hasEvent(c, "battle", "ends in"))
}

// Hitting the decisive score ends the war at once and lifts its sieges.
func TestDecisiveScoreConcludesWar(t *testing.T) {
	c, castle := newTestCampaign(fixedDice{percent: 100, intn: 0, float: 0.5})
	attacker, owner, defender := testBelligerents()

	w := c.DeclareWar(attacker, defender, conflict.CasusConquest)

	// No engineers and no equipment, so the walls never wear down.
	army := military.NewArmy("Patient Host", owner, world.None(), 50_000)
	army.AddUnit(military.NewUnit(military.UnitMenAtArms, 200))
	army.Supplies = 5000
	c.AddArmy(army)

	s, err := c.BeginSiege(w.ID, army, castle, 100, 400, 90, 100_000)
	require.NoError(t, err)

	w.AddScore(conflict.SideAttacker, conflict.DecisiveScore)
	c.TickDay(1)

	require.Equal(t, conflict.WarAttackerVictory, w.Status)
	require.NotNil(t, w.EndedTick)
	require.Contains(t, w.PeaceTerms, "enforces every achieved goal")
	require.Equal(t, conflict.SiegeLifted, s.Status)
}

// A contested war that drags on for years grinds out into a white peace.
func TestExhaustedWarEndsInWhitePeace(t *testing.T) {
	c, _ := newTestCampaign(fixedDice{percent: 100, intn: 0, float: 0.5})
	attacker, _, defender := testBelligerents()

	w := c.DeclareWar(attacker, defender, conflict.CasusClaim)
	c.TickDay(exhaustionTicks)

	require.Equal(t, conflict.WarWhitePeace, w.Status)
	require.Equal(t, "status quo ante bellum", w.PeaceTerms)
	for _, p := range w.Participants {
		require.False(t, p.IsActive())
	}
}

// An unsupplied, demoralized army bleeds deserters.
func TestStarvationDesertion(t *testing.T) {
	// Low roll so the desertion check fires.
	c, _ := newTestCampaign(fixedDice{percent: 10, intn: 0, float: 0.5})
	_, owner, _ := testBelligerents()

	army := military.NewArmy("Hungry Band", owner, world.None(), 10_000)
	army.AddUnit(military.NewUnit(military.UnitMilitia, 100))
	army.Supplies = 0
	army.Morale = 10
	c.AddArmy(army)

	c.TickDay(1)

	require.Equal(t, 95, army.TotalTroops())
	require.Equal(t, 5.0, army.Morale)
	require.True(t, hasEvent(c, "army", "desert"))
}

func TestMercenaryPayroll(t *testing.T) {
	t.Run("a missed payment voids the contract", func(t *testing.T) {
		c, _ := newTestCampaign(fixedDice{percent: 100, intn: 0, float: 0.5})
		_, owner, _ := testBelligerents()

		broke := military.NewArmy("Gilded Spears", owner, world.None(), 0)
		c.AddArmy(broke)

		m := military.NewMercenaryCompany("Company of the Crane", military.ReputationLegendary, military.SpecCavalry, 5000, 100)
		require.NoError(t, m.Hire(military.HirerRef{Kind: military.HirerPlayer, ID: uuid.New()}, 30))
		m.ArmyID = &broke.ID
		c.AddCompany(m)

		c.TickDay(1)

		require.True(t, m.Available)
		require.False(t, m.IsHired())
		require.True(t, hasEvent(c, "mercenary", "unpaid wages"))
	})

	t.Run("an expired contract returns the company to market", func(t *testing.T) {
		c, _ := newTestCampaign(fixedDice{percent: 100, intn: 0, float: 0.5})
		_, owner, _ := testBelligerents()

		paymaster := military.NewArmy("Gilded Spears", owner, world.None(), 10_000)
		c.AddArmy(paymaster)

		m := military.NewMercenaryCompany("Company of the Crane", military.ReputationAverage, military.SpecInfantry, 5000, 100)
		require.NoError(t, m.Hire(military.HirerRef{Kind: military.HirerPlayer, ID: uuid.New()}, 1))
		m.ArmyID = &paymaster.ID
		c.AddCompany(m)

		c.TickDay(1) // Final contract day, paid.
		require.False(t, m.IsHired())
		require.False(t, m.Available)

		c.TickDay(2) // Lapsed contract noticed and released.
		require.True(t, m.Available)
		require.True(t, hasEvent(c, "mercenary", "expired"))
	})
}

// Observers read campaign state while the tick loop writes it; the campaign
// lock keeps both sides consistent (run with -race to verify).
func TestCampaignConcurrentReads(t *testing.T) {
	c, castle := newTestCampaign(fixedDice{percent: 100, intn: 0, float: 0.5})
	_, owner, _ := testBelligerents()

	army := military.NewArmy("Watch of the Marches", owner, castle, 50_000)
	army.AddUnit(military.NewUnit(military.UnitMilitia, 200))
	army.Supplies = 500
	c.AddArmy(army)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for tick := uint64(1); tick <= 200; tick++ {
			c.TickDay(tick)
		}
	}()

	var lastTick uint64
	for lastTick < 200 {
		c.RLock()
		lastTick = c.CurrentTick()
		_ = c.Stats
		_ = hasEvent(c, "army", "desert")
		c.RUnlock()
	}
	<-done

	require.Equal(t, uint64(200), c.CurrentTick())
}
