// Demo campaign generation, so the simulator runs out of the box: two
// kingdoms at war over a border castle, with a mercenary company under
// contract on the attacking side.
package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/conflict"
	"github.com/talgya/warmarch/internal/entropy"
	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

// NewDemoCampaign builds a small self-contained campaign.
func NewDemoCampaign(seed int64) *Campaign {
	resolver := world.NewMapResolver()
	treasuries := NewLocalTreasuries()
	c := NewCampaign(seed, resolver, treasuries, entropy.NewSeeded(seed))

	// Settlements on the contested border.
	ravenfell := world.SettlementRef{Kind: world.RefCastle, ID: uuid.New()}
	thornbury := world.SettlementRef{Kind: world.RefTown, ID: uuid.New()}
	mereholt := world.SettlementRef{Kind: world.RefVillage, ID: uuid.New()}

	resolver.Add(&world.Settlement{Ref: ravenfell, Name: "Ravenfell Keep", Treasury: 12000})
	resolver.Add(&world.Settlement{Ref: thornbury, Name: "Thornbury", Treasury: 8000})
	resolver.Add(&world.Settlement{Ref: mereholt, Name: "Mereholt", Treasury: 900})

	treasuries.Fund(ravenfell, 12000)
	treasuries.Fund(thornbury, 8000)
	treasuries.Fund(mereholt, 900)

	// Two kingdoms and their quarrel.
	valdria := conflict.PartyRef{Kind: conflict.PartyKingdom, ID: uuid.New()}
	karstmark := conflict.PartyRef{Kind: conflict.PartyKingdom, ID: uuid.New()}

	w := c.DeclareWar(valdria, karstmark, conflict.CasusClaim)
	w.AddGoal(conflict.NewSettlementGoal(
		conflict.GoalTerritory, ravenfell, valdria, conflict.SideAttacker, 60))
	w.AddGoal(conflict.NewPolityGoal(
		conflict.GoalHumiliation, karstmark, valdria, conflict.SideAttacker, 20))

	// The attacking host.
	host := military.NewArmy("Army of the Claim",
		military.OwnerRef{Kind: military.OwnerPolity, Polity: world.SettlementRef{Kind: world.RefKingdom, ID: valdria.ID}},
		world.None(), 20000)
	host.AddUnit(military.NewUnit(military.UnitMenAtArms, 800))
	host.AddUnit(military.NewUnit(military.UnitArchers, 400))
	host.AddUnit(military.NewUnit(military.UnitKnights, 120))
	host.AddUnit(military.NewUnit(military.UnitSiegeEngineers, 60))
	host.Supplies = 500
	host.SupplyLines = append(host.SupplyLines,
		military.NewSupplyLine(host.ID, thornbury, 1500, 5, 70))
	c.AddArmy(host)

	// The defenders' field army, mustering behind the border.
	levy := military.NewArmy("Karstmark Levy",
		military.OwnerRef{Kind: military.OwnerPolity, Polity: world.SettlementRef{Kind: world.RefKingdom, ID: karstmark.ID}},
		mereholt, 6000)
	levy.AddUnit(military.NewUnit(military.UnitLevy, 1200))
	levy.AddUnit(military.NewUnit(military.UnitMilitia, 600))
	levy.AddUnit(military.NewUnit(military.UnitCrossbowmen, 200))
	levy.Supplies = 300
	levy.SupplyLines = append(levy.SupplyLines,
		military.NewSupplyLine(levy.ID, mereholt, 1200, 2, 85))
	c.AddArmy(levy)

	// A mercenary company riding with the attackers.
	company := military.NewMercenaryCompany(
		"Company of the Grey Banner", military.ReputationGood, military.SpecSiegecraft, 5000, 40)
	freelances := military.NewArmy("Grey Banner Freelances",
		military.OwnerRef{Kind: military.OwnerMercenary, ID: company.ID},
		world.None(), 9000)
	freelances.AddUnit(military.NewUnit(military.UnitCavalry, 300))
	freelances.AddUnit(military.NewUnit(military.UnitCrossbowmen, 150))
	freelances.Supplies = 200
	c.AddArmy(freelances)

	if err := company.Hire(military.HirerRef{
		Kind:   military.HirerPolity,
		Polity: world.SettlementRef{Kind: world.RefKingdom, ID: valdria.ID},
	}, 180); err == nil {
		id := freelances.ID
		company.ArmyID = &id
	}
	c.AddCompany(company)

	// The war opens with the host investing Ravenfell.
	if _, err := c.BeginSiege(w.ID, host, ravenfell, 60, 400, 80, 250); err != nil {
		slog.Error("demo siege failed", "error", err)
	}

	c.updateStats()
	slog.Info("demo campaign seeded",
		"wars", len(c.Wars),
		"armies", len(c.Armies),
		"troops", c.Stats.TotalTroops,
	)
	return c
}
