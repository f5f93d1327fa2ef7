// Campaign ties together all conflict state and advances it each tick.
package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/conflict"
	"github.com/talgya/warmarch/internal/entropy"
	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

// Campaign holds the complete war state and wires systems together.
// Entities belonging to the same war are always advanced together within one
// tick; distinct wars are independent and a failure in one never blocks the
// others.
//
// The embedded lock covers all campaign state: the tick methods take the
// write lock, readers on other goroutines (the HTTP handlers) take RLock.
type Campaign struct {
	sync.RWMutex

	Seed int64

	Wars      []*conflict.War
	Armies    []*military.Army
	Sieges    []*conflict.Siege
	Battles   []*conflict.Battle
	Companies []*military.MercenaryCompany

	WarIndex  map[uuid.UUID]*conflict.War
	ArmyIndex map[uuid.UUID]*military.Army

	Events   []Event // Recent events (trimmed weekly)
	LastTick uint64

	// Season tracking (0=Spring, 1=Summer, 2=Autumn, 3=Winter).
	CurrentSeason uint8

	// Injected collaborators.
	Resolver   world.Resolver
	Treasuries TreasuryService
	Dice       entropy.Dice
	Sampler    *world.Sampler

	// Statistics refreshed once per tick.
	Stats CampaignStats
}

// Event is a notable occurrence in the campaign.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "war", "siege", "battle", "army", "supply", "mercenary"
}

// CampaignStats tracks aggregate campaign statistics.
type CampaignStats struct {
	ActiveWars      int    `json:"active_wars"`
	OngoingSieges   int    `json:"ongoing_sieges"`
	OngoingBattles  int    `json:"ongoing_battles"`
	FieldedArmies   int    `json:"fielded_armies"`
	TotalTroops     int    `json:"total_troops"`
	TotalGold       uint64 `json:"total_gold"`
	TotalCasualties int    `json:"total_casualties"`
}

// NewCampaign creates an empty campaign with injected collaborators.
func NewCampaign(seed int64, resolver world.Resolver, treasuries TreasuryService, dice entropy.Dice) *Campaign {
	return &Campaign{
		Seed:       seed,
		WarIndex:   make(map[uuid.UUID]*conflict.War),
		ArmyIndex:  make(map[uuid.UUID]*military.Army),
		Resolver:   resolver,
		Treasuries: treasuries,
		Dice:       dice,
		Sampler:    world.NewSampler(seed),
	}
}

// CurrentTick returns the most recently processed tick number.
func (c *Campaign) CurrentTick() uint64 {
	return c.LastTick
}

// AddWar registers a war with the campaign.
func (c *Campaign) AddWar(w *conflict.War) {
	c.Wars = append(c.Wars, w)
	c.WarIndex[w.ID] = w
}

// AddArmy registers an army with the campaign.
func (c *Campaign) AddArmy(a *military.Army) {
	c.Armies = append(c.Armies, a)
	c.ArmyIndex[a.ID] = a
}

// AddCompany registers a mercenary company with the campaign.
func (c *Campaign) AddCompany(m *military.MercenaryCompany) {
	c.Companies = append(c.Companies, m)
}

// War returns a war by ID.
func (c *Campaign) War(id uuid.UUID) (*conflict.War, bool) {
	w, ok := c.WarIndex[id]
	return w, ok
}

// Army returns an army by ID.
func (c *Campaign) Army(id uuid.UUID) (*military.Army, bool) {
	a, ok := c.ArmyIndex[id]
	return a, ok
}

// companyForArmy returns the mercenary company fielding the given army.
func (c *Campaign) companyForArmy(armyID uuid.UUID) (*military.MercenaryCompany, bool) {
	for _, m := range c.Companies {
		if m.ArmyID != nil && *m.ArmyID == armyID {
			return m, true
		}
	}
	return nil, false
}

// partyForArmy maps an army's owner to a war party, when the owner kind has
// a seat at a war (mercenary-owned armies fight for their hirer instead).
func (c *Campaign) partyForArmy(a *military.Army) (conflict.PartyRef, bool) {
	switch a.Owner.Kind {
	case military.OwnerPlayer:
		return conflict.PartyRef{Kind: conflict.PartyPlayer, ID: a.Owner.ID}, true
	case military.OwnerPolity:
		switch a.Owner.Polity.Kind {
		case world.RefKingdom:
			return conflict.PartyRef{Kind: conflict.PartyKingdom, ID: a.Owner.Polity.ID}, true
		case world.RefBarony:
			return conflict.PartyRef{Kind: conflict.PartyBarony, ID: a.Owner.Polity.ID}, true
		}
	case military.OwnerMercenary:
		if m, ok := c.companyForArmy(a.ID); ok {
			switch m.HiredBy.Kind {
			case military.HirerPlayer:
				return conflict.PartyRef{Kind: conflict.PartyPlayer, ID: m.HiredBy.ID}, true
			case military.HirerPolity:
				if m.HiredBy.Polity.Kind == world.RefKingdom {
					return conflict.PartyRef{Kind: conflict.PartyKingdom, ID: m.HiredBy.Polity.ID}, true
				}
				if m.HiredBy.Polity.Kind == world.RefBarony {
					return conflict.PartyRef{Kind: conflict.PartyBarony, ID: m.HiredBy.Polity.ID}, true
				}
			}
		}
	}
	return conflict.PartyRef{}, false
}

// creditContribution adds points to the war participant an army fights for.
func (c *Campaign) creditContribution(w *conflict.War, a *military.Army, points int) {
	party, ok := c.partyForArmy(a)
	if !ok {
		return
	}
	for _, p := range w.Participants {
		if p.Participant == party {
			p.Contribute(points)
			return
		}
	}
}

// settlementName resolves a display name for a settlement ref.
func (c *Campaign) settlementName(ref world.SettlementRef) string {
	if s, ok := c.Resolver.Resolve(ref); ok {
		return s.Name
	}
	return "the field"
}

func (c *Campaign) recordEvent(tick uint64, category, description string) {
	c.Events = append(c.Events, Event{Tick: tick, Description: description, Category: category})
}

// TickDay advances every conflict by one campaign day: supply lines and army
// upkeep first, then sieges, battles, and finally war status drift.
func (c *Campaign) TickDay(tick uint64) {
	c.Lock()
	defer c.Unlock()

	c.LastTick = tick

	c.tickSupplyLines(tick)
	c.tickUpkeep(tick)
	c.tickPayroll(tick)
	c.tickSieges(tick)
	c.tickBattles(tick)
	c.tickWars(tick)

	c.updateStats()
}

// TickWeek logs a summary and trims the event list.
func (c *Campaign) TickWeek(tick uint64) {
	c.Lock()
	defer c.Unlock()

	slog.Info("weekly dispatch",
		"tick", tick,
		"time", SimTime(tick),
		"active_wars", c.Stats.ActiveWars,
		"ongoing_sieges", c.Stats.OngoingSieges,
		"ongoing_battles", c.Stats.OngoingBattles,
		"fielded_troops", c.Stats.TotalTroops,
		"events_this_week", len(c.Events),
	)

	// Trim old events to prevent unbounded growth (keep last 1000).
	if len(c.Events) > 1000 {
		c.Events = c.Events[len(c.Events)-1000:]
	}
}

// TickSeason rolls the season forward.
func (c *Campaign) TickSeason(tick uint64) {
	c.Lock()
	defer c.Unlock()

	c.CurrentSeason = (c.CurrentSeason + 1) % SeasonsPerYear
	slog.Info("season turns", "season", SeasonName(c.CurrentSeason), "time", SimTime(tick))
}

func (c *Campaign) updateStats() {
	stats := CampaignStats{}

	for _, w := range c.Wars {
		if !w.IsEnded() {
			stats.ActiveWars++
		}
	}
	for _, s := range c.Sieges {
		if s.IsOngoing() {
			stats.OngoingSieges++
		}
	}
	for _, b := range c.Battles {
		if b.Status == conflict.BattleOngoing {
			stats.OngoingBattles++
		}
		stats.TotalCasualties += b.TotalCasualties()
	}
	for _, a := range c.Armies {
		if a.IsOperational() {
			stats.FieldedArmies++
			stats.TotalTroops += a.TotalTroops()
			stats.TotalGold += a.Treasury.Balance()
		}
	}

	c.Stats = stats
}
