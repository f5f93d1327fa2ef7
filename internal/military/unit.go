// Package military provides armies, their units, supply logistics, and
// mercenary companies. Everything here is deterministic — dice live with the
// tick process, which consumes the probabilities these types expose.
package military

// UnitType enumerates the troop blocks an army can field.
type UnitType uint8

const (
	UnitLevy UnitType = iota
	UnitMilitia
	UnitMenAtArms
	UnitKnights
	UnitArchers
	UnitCrossbowmen
	UnitCavalry
	UnitSiegeEngineers
)

// UnitName returns a display label for a unit type.
func UnitName(t UnitType) string {
	switch t {
	case UnitLevy:
		return "levy"
	case UnitMilitia:
		return "militia"
	case UnitMenAtArms:
		return "men-at-arms"
	case UnitKnights:
		return "knights"
	case UnitArchers:
		return "archers"
	case UnitCrossbowmen:
		return "crossbowmen"
	case UnitCavalry:
		return "cavalry"
	case UnitSiegeEngineers:
		return "siege engineers"
	default:
		return "irregulars"
	}
}

// BaseStats are the fixed per-soldier stats of a unit type.
type BaseStats struct {
	Attack      int
	Defense     int
	Upkeep      int
	MoraleBonus int
}

// UnitStats returns the base stats for a unit type. Unknown types fall back
// to an untrained rabble line.
func UnitStats(t UnitType) BaseStats {
	switch t {
	case UnitLevy:
		return BaseStats{Attack: 1, Defense: 1, Upkeep: 1, MoraleBonus: -5}
	case UnitMilitia:
		return BaseStats{Attack: 2, Defense: 2, Upkeep: 2, MoraleBonus: 0}
	case UnitMenAtArms:
		return BaseStats{Attack: 4, Defense: 4, Upkeep: 5, MoraleBonus: 5}
	case UnitKnights:
		return BaseStats{Attack: 8, Defense: 6, Upkeep: 15, MoraleBonus: 15}
	case UnitArchers:
		return BaseStats{Attack: 3, Defense: 1, Upkeep: 3, MoraleBonus: 0}
	case UnitCrossbowmen:
		return BaseStats{Attack: 5, Defense: 2, Upkeep: 4, MoraleBonus: 0}
	case UnitCavalry:
		return BaseStats{Attack: 6, Defense: 3, Upkeep: 8, MoraleBonus: 10}
	case UnitSiegeEngineers:
		return BaseStats{Attack: 1, Defense: 1, Upkeep: 10, MoraleBonus: 0}
	default:
		return BaseStats{Attack: 1, Defense: 1, Upkeep: 1, MoraleBonus: 0}
	}
}

// UnitStatus tracks a unit's battlefield condition.
type UnitStatus uint8

const (
	UnitReady UnitStatus = iota
	UnitExhausted
	UnitRouted
	UnitDestroyed
)

// UnitStatusName returns a display name for a unit status.
func UnitStatusName(s UnitStatus) string {
	switch s {
	case UnitReady:
		return "ready"
	case UnitExhausted:
		return "exhausted"
	case UnitRouted:
		return "routed"
	case UnitDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// ArmyUnit is a homogeneous block of troops inside one army. Stats start at
// the type's base values and may drift with equipment and training.
type ArmyUnit struct {
	Type             UnitType   `json:"type"`
	Count            int        `json:"count"`
	MaxCount         int        `json:"max_count"`
	Attack           int        `json:"attack"`
	Defense          int        `json:"defense"`
	MoraleBonus      int        `json:"morale_bonus"`
	UpkeepPerSoldier int        `json:"upkeep_per_soldier"`
	Status           UnitStatus `json:"status"`
}

// NewUnit creates a unit of the given type at full strength.
func NewUnit(t UnitType, count int) *ArmyUnit {
	stats := UnitStats(t)
	return &ArmyUnit{
		Type:             t,
		Count:            count,
		MaxCount:         count,
		Attack:           stats.Attack,
		Defense:          stats.Defense,
		MoraleBonus:      stats.MoraleBonus,
		UpkeepPerSoldier: stats.Upkeep,
		Status:           UnitReady,
	}
}

// IsAlive reports whether the unit still has soldiers and has not been wiped.
func (u *ArmyUnit) IsAlive() bool {
	return u.Count > 0 && u.Status != UnitDestroyed
}

// ApplyCasualties removes up to n soldiers, returning the actual losses.
// A unit reduced to zero is destroyed.
func (u *ArmyUnit) ApplyCasualties(n int) int {
	if n <= 0 || u.Count <= 0 {
		return 0
	}
	if n > u.Count {
		n = u.Count
	}
	u.Count -= n
	if u.Count == 0 {
		u.Status = UnitDestroyed
	}
	return n
}

// Reinforce adds up to n soldiers, capped at the unit's muster strength.
// Returns the number actually absorbed. A destroyed unit stays destroyed.
func (u *ArmyUnit) Reinforce(n int) int {
	if n <= 0 || u.Status == UnitDestroyed {
		return 0
	}
	room := u.MaxCount - u.Count
	if n > room {
		n = room
	}
	u.Count += n
	return n
}
