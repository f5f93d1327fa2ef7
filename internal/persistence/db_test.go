package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warmarch/internal/conflict"
	"github.com/talgya/warmarch/internal/engine"
	"github.com/talgya/warmarch/internal/entropy"
	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "campaign.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestCampaign() *engine.Campaign {
	resolver := world.NewMapResolver()
	return engine.NewCampaign(7, resolver, engine.NewLocalTreasuries(), entropy.NewSeeded(7))
}

func TestCampaignRoundTrip(t *testing.T) {
	db := openTestDB(t)

	c := newTestCampaign()

	attacker := conflict.PartyRef{Kind: conflict.PartyKingdom, ID: uuid.New()}
	defender := conflict.PartyRef{Kind: conflict.PartyKingdom, ID: uuid.New()}
	castle := world.SettlementRef{Kind: world.RefCastle, ID: uuid.New()}
	c.Resolver.(*world.MapResolver).Add(&world.Settlement{Ref: castle, Name: "Ravenfell Keep"})
	c.Treasuries.Deposit(castle, 12000, "opening balance")

	war := conflict.DeclareWar(attacker, defender, conflict.CasusClaim, 3)
	war.AddGoal(conflict.NewSettlementGoal(conflict.GoalTerritory, castle, attacker, conflict.SideAttacker, 60))
	war.AddScore(conflict.SideAttacker, 35)
	c.AddWar(war)

	owner := military.OwnerRef{
		Kind:   military.OwnerPolity,
		Polity: world.SettlementRef{Kind: world.RefKingdom, ID: attacker.ID},
	}
	army := military.NewArmy("Host of the Marches", owner, castle, 2500)
	army.AddUnit(military.NewUnit(military.UnitMenAtArms, 600))
	army.AddUnit(military.NewUnit(military.UnitKnights, 90))
	army.Supplies = 340
	line := military.NewSupplyLine(army.ID, world.SettlementRef{Kind: world.RefTown, ID: uuid.New()}, 1200, 5, 70)
	line.Degrade()
	army.SupplyLines = append(army.SupplyLines, line)
	c.AddArmy(army)

	siege := conflict.BeginSiege(war.ID, army.ID, castle, 18, 400, 80, 250)
	siege.AppendLog(10, "the host invests %s", "the castle")
	siege.AppendLog(17, "sappers open a mine beneath the east wall")
	require.NoError(t, siege.BeginAssault())
	require.NoError(t, siege.RecordBreach())
	c.Sieges = append(c.Sieges, siege)

	battle := conflict.NewBattle(war.ID, castle, conflict.BattleField, 12,
		world.TerrainModifiers{Terrain: world.TerrainHills, AttackerMod: 0.9, DefenderMod: 1.1, CavalryUsable: true},
		world.WeatherModifiers{Description: "driving rain", CombatMod: 0.85, MissileMod: 0.5})
	battle.AddArmy(army.ID, conflict.SideAttacker, army.TotalTroops())
	require.NoError(t, battle.AddCasualties(conflict.SideAttacker, 40))
	require.NoError(t, battle.AdvancePhase())
	c.Battles = append(c.Battles, battle)

	company := military.NewMercenaryCompany(
		"Company of the Grey Banner", military.ReputationGood, military.SpecSiegecraft, 5000, 40)
	require.NoError(t, company.Hire(military.HirerRef{Kind: military.HirerPolity, Polity: owner.Polity}, 180))
	armyID := army.ID
	company.ArmyID = &armyID
	c.Companies = append(c.Companies, company)

	c.LastTick = 17
	c.CurrentSeason = 2
	c.Events = append(c.Events,
		engine.Event{Tick: 3, Description: "war declared", Category: "war"},
		engine.Event{Tick: 10, Description: "siege begins", Category: "siege"},
	)

	require.NoError(t, db.SaveCampaign(c))

	loaded := newTestCampaign()
	require.NoError(t, db.LoadCampaign(loaded))

	t.Run("settlements", func(t *testing.T) {
		got, ok := loaded.Resolver.Resolve(castle)
		require.True(t, ok)
		require.Equal(t, "Ravenfell Keep", got.Name)
		require.Equal(t, uint64(12000), loaded.Treasuries.Balance(castle))
	})

	t.Run("meta", func(t *testing.T) {
		require.Equal(t, uint64(17), loaded.LastTick)
		require.Equal(t, uint8(2), loaded.CurrentSeason)
	})

	t.Run("war", func(t *testing.T) {
		got, ok := loaded.War(war.ID)
		require.True(t, ok)
		require.Equal(t, conflict.WarActive, got.Status)
		require.Equal(t, 35, got.AttackerScore)
		require.Equal(t, attacker, got.Attacker)
		require.Len(t, got.Goals, 1)
		require.Equal(t, 60, got.Goals[0].WarScoreValue)
		require.False(t, got.Goals[0].Achieved)
		require.Len(t, got.Participants, 2)
		require.True(t, got.Participants[0].IsWarLeader)
	})

	t.Run("army", func(t *testing.T) {
		got, ok := loaded.Army(army.ID)
		require.True(t, ok)
		require.Equal(t, "Host of the Marches", got.Name)
		require.Equal(t, uint64(2500), got.Treasury.Balance())
		require.Equal(t, 340, got.Supplies)
		require.Equal(t, army.TotalTroops(), got.TotalTroops())
		require.Equal(t, army.DailySupplyCost, got.DailySupplyCost)
		require.Equal(t, army.GoldUpkeep, got.GoldUpkeep)
		require.Len(t, got.SupplyLines, 1)
		require.Equal(t, military.SupplyDisrupted, got.SupplyLines[0].Status)
	})

	t.Run("siege", func(t *testing.T) {
		require.Len(t, loaded.Sieges, 1)
		got := loaded.Sieges[0]
		require.Equal(t, conflict.SiegeBreached, got.Status)
		require.True(t, got.HasBreach)
		require.Equal(t, 18, got.FortificationLevel)
		require.Len(t, got.Log, 2)
		require.Equal(t, uint64(10), got.Log[0].Tick)
		require.Equal(t, "sappers open a mine beneath the east wall", got.Log[1].Message)
	})

	t.Run("battle", func(t *testing.T) {
		require.Len(t, loaded.Battles, 1)
		got := loaded.Battles[0]
		require.Equal(t, conflict.BattleOngoing, got.Status)
		require.Equal(t, conflict.PhaseMelee, got.Phase)
		require.Equal(t, 40, got.AttackerCasualties)
		require.Equal(t, world.TerrainHills, got.Terrain.Terrain)
		require.InDelta(t, 0.85, got.Weather.CombatMod, 1e-9)
		require.Len(t, got.Participants, 1)
		require.Equal(t, army.ID, got.Participants[0].ArmyID)
	})

	t.Run("company", func(t *testing.T) {
		require.Len(t, loaded.Companies, 1)
		got := loaded.Companies[0]
		require.Equal(t, military.ReputationGood, got.Reputation)
		require.True(t, got.IsHired())
		require.Equal(t, 180, got.ContractDaysRemaining)
		require.NotNil(t, got.ArmyID)
		require.Equal(t, army.ID, *got.ArmyID)
	})

	t.Run("events", func(t *testing.T) {
		events, err := db.RecentEvents(10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		// Most recent first.
		require.Equal(t, uint64(10), events[0].Tick)
	})
}

func TestSaveReplacesPriorState(t *testing.T) {
	db := openTestDB(t)

	c := newTestCampaign()
	a := military.NewArmy("First Muster", military.OwnerRef{Kind: military.OwnerPlayer, ID: uuid.New()}, world.None(), 100)
	c.AddArmy(a)
	require.NoError(t, db.SaveCampaign(c))

	// Saving a campaign without that army must drop it from the store.
	c2 := newTestCampaign()
	b := military.NewArmy("Second Muster", military.OwnerRef{Kind: military.OwnerPlayer, ID: uuid.New()}, world.None(), 100)
	c2.AddArmy(b)
	require.NoError(t, db.SaveCampaign(c2))

	loaded := newTestCampaign()
	require.NoError(t, db.LoadCampaign(loaded))
	require.Len(t, loaded.Armies, 1)
	require.Equal(t, "Second Muster", loaded.Armies[0].Name)
}

func TestHasCampaignState(t *testing.T) {
	db := openTestDB(t)
	require.False(t, db.HasCampaignState())

	require.NoError(t, db.SaveCampaign(newTestCampaign()))
	require.True(t, db.HasCampaignState())
}
