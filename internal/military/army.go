package military

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/world"
)

// RenameCooldown is how long an army keeps its name after a rename.
const RenameCooldown = 90 * 24 * time.Hour

// ArmyStatus tracks what an army is currently doing.
type ArmyStatus uint8

const (
	ArmyMustering ArmyStatus = iota
	ArmyMarching
	ArmyEncamped
	ArmyBesieging
	ArmyInBattle
	ArmyDisbanded
)

// StatusName returns a display label for an army status.
func StatusName(s ArmyStatus) string {
	switch s {
	case ArmyMustering:
		return "mustering"
	case ArmyMarching:
		return "marching"
	case ArmyEncamped:
		return "encamped"
	case ArmyBesieging:
		return "besieging"
	case ArmyInBattle:
		return "in battle"
	case ArmyDisbanded:
		return "disbanded"
	default:
		return "unknown"
	}
}

// OwnerKind tags who an army answers to.
type OwnerKind uint8

const (
	OwnerPolity OwnerKind = iota
	OwnerPlayer
	OwnerMercenary
)

// OwnerRef identifies an army's owner: a polity settlement, a player, or a
// mercenary company. Exactly one arm of the union is meaningful per Kind.
type OwnerRef struct {
	Kind   OwnerKind           `json:"kind"`
	Polity world.SettlementRef `json:"polity,omitzero"`
	ID     uuid.UUID           `json:"id,omitzero"`
}

// CommanderKind tags who leads an army: a player, an NPC, or nobody.
type CommanderKind uint8

const (
	CommanderNone CommanderKind = iota
	CommanderPlayer
	CommanderNPC
)

// CommanderRef identifies an army's commander, if any.
type CommanderRef struct {
	Kind CommanderKind `json:"kind"`
	ID   uuid.UUID     `json:"id,omitzero"`
}

// CommanderKindName returns a display label for a commander kind.
func CommanderKindName(k CommanderKind) string {
	switch k {
	case CommanderPlayer:
		return "player"
	case CommanderNPC:
		return "npc"
	default:
		return "none"
	}
}

// Army is a mobile military force. Location is a settlement ref; the zero ref
// means the army is in the field. A disbanded army is never deleted — it is a
// historical record that holds no live units or supply lines.
type Army struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	LastRenamedAt *time.Time `json:"last_renamed_at,omitempty"`

	Commander CommanderRef        `json:"commander"`
	Owner     OwnerRef            `json:"owner"`
	Location  world.SettlementRef `json:"location"`
	Status    ArmyStatus          `json:"status"`

	// Morale carries 0–100 semantics but is stored unbounded so penalty
	// pipelines can stack before clamping at read time.
	Morale          float64 `json:"morale"`
	Supplies        int     `json:"supplies"`
	DailySupplyCost int     `json:"daily_supply_cost"`
	GoldUpkeep      uint64  `json:"gold_upkeep"`

	Treasury *Treasury `json:"-"`

	Units       []*ArmyUnit      `json:"units"`
	SupplyLines []*SupplyLine    `json:"supply_lines"`
	Composition map[UnitType]int `json:"composition"`
}

// NewArmy musters a new army for an owner with an opening treasury.
func NewArmy(name string, owner OwnerRef, location world.SettlementRef, gold uint64) *Army {
	return &Army{
		ID:          uuid.New(),
		Name:        name,
		Owner:       owner,
		Location:    location,
		Status:      ArmyMustering,
		Morale:      50,
		Treasury:    NewTreasury(gold),
		Composition: make(map[UnitType]int),
	}
}

// Rename changes the army's display name. Renames are throttled: a second
// rename inside the cooldown window fails with ErrCooldownActive.
func (a *Army) Rename(newName string, now time.Time) error {
	if a.LastRenamedAt != nil && now.Sub(*a.LastRenamedAt) <= RenameCooldown {
		return ErrCooldownActive
	}
	a.Name = newName
	t := now
	a.LastRenamedAt = &t
	return nil
}

// AddUnit attaches a unit block and refreshes upkeep and composition.
func (a *Army) AddUnit(u *ArmyUnit) {
	a.Units = append(a.Units, u)
	a.RefreshComposition()
}

// RefreshComposition rebuilds the denormalized composition snapshot and the
// derived daily costs from live units.
func (a *Army) RefreshComposition() {
	comp := make(map[UnitType]int)
	supplyCost := 0
	var goldUpkeep uint64
	for _, u := range a.Units {
		if !u.IsAlive() {
			continue
		}
		comp[u.Type] += u.Count
		supplyCost += u.Count
		goldUpkeep += uint64(u.Count * u.UpkeepPerSoldier)
	}
	a.Composition = comp
	a.DailySupplyCost = supplyCost
	a.GoldUpkeep = goldUpkeep
}

// TotalTroops sums soldiers across live units.
func (a *Army) TotalTroops() int {
	total := 0
	for _, u := range a.Units {
		if u.IsAlive() {
			total += u.Count
		}
	}
	return total
}

// TotalAttack sums count×attack across live units.
func (a *Army) TotalAttack() int {
	total := 0
	for _, u := range a.Units {
		if u.IsAlive() {
			total += u.Count * u.Attack
		}
	}
	return total
}

// TotalDefense sums count×defense across live units.
func (a *Army) TotalDefense() int {
	total := 0
	for _, u := range a.Units {
		if u.IsAlive() {
			total += u.Count * u.Defense
		}
	}
	return total
}

// MoraleBonus sums the morale contribution of live units, weighted by share
// of the army. An army of knights holds together; an army of levies does not.
func (a *Army) MoraleBonus() float64 {
	troops := a.TotalTroops()
	if troops == 0 {
		return 0
	}
	weighted := 0
	for _, u := range a.Units {
		if u.IsAlive() {
			weighted += u.Count * u.MoraleBonus
		}
	}
	return float64(weighted) / float64(troops)
}

// IsOperational reports whether the army can still act.
func (a *Army) IsOperational() bool {
	return a.Status != ArmyDisbanded
}

// HasSupplies reports whether the army can cover supply-consuming actions.
// Downstream battle and siege logic treats a false here as a combat penalty.
func (a *Army) HasSupplies() bool {
	return a.Supplies > 0
}

// SpendSupplies draws down stores for a supply-consuming action. Fails with
// ErrInsufficientSupplies and consumes nothing when stores cannot cover it.
func (a *Army) SpendSupplies(n int) error {
	if a.Supplies < n {
		return ErrInsufficientSupplies
	}
	a.Supplies -= n
	return nil
}

// HasUnitType reports whether any live unit of the given type remains.
func (a *Army) HasUnitType(t UnitType) bool {
	for _, u := range a.Units {
		if u.Type == t && u.IsAlive() {
			return true
		}
	}
	return false
}

// SetStatus moves the army to a new activity. A disbanded army is terminal;
// any attempt to revive it fails with ErrInvalidTransition.
func (a *Army) SetStatus(next ArmyStatus) error {
	if a.Status == ArmyDisbanded {
		return ErrInvalidTransition
	}
	a.Status = next
	return nil
}

// Disband retires the army permanently. Units are marked destroyed and supply
// lines severed; the record itself survives as history.
func (a *Army) Disband() error {
	if a.Status == ArmyDisbanded {
		return ErrInvalidTransition
	}
	a.Status = ArmyDisbanded
	for _, u := range a.Units {
		u.Count = 0
		u.Status = UnitDestroyed
	}
	for _, sl := range a.SupplyLines {
		sl.Status = SupplySevered
	}
	a.RefreshComposition()
	return nil
}
