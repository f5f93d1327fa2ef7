package military

import (
	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/world"
)

// SupplyStatus tracks the health of a logistics link.
type SupplyStatus uint8

const (
	SupplyActive SupplyStatus = iota
	SupplyDisrupted
	SupplySevered
)

// SupplyStatusName returns a display label for a supply line status.
func SupplyStatusName(s SupplyStatus) string {
	switch s {
	case SupplyActive:
		return "active"
	case SupplyDisrupted:
		return "disrupted"
	case SupplySevered:
		return "severed"
	default:
		return "unknown"
	}
}

// SupplyLine links an army to a source settlement. The line itself never
// rolls dice: it exposes a disruption probability and the tick process makes
// the draw. A severed line stays severed until an explicit Reconnect — supply
// chains do not heal themselves.
type SupplyLine struct {
	ID       uuid.UUID           `json:"id"`
	ArmyID   uuid.UUID           `json:"army_id"`
	Source   world.SettlementRef `json:"source"`
	Status   SupplyStatus        `json:"status"`
	Rate     int                 `json:"supply_rate"`
	Distance int                 `json:"distance"`
	Safety   int                 `json:"safety"` // 0–100, escorts and friendly roads
	Route    []string            `json:"route"`  // Waypoints, opaque to the engine.
}

// NewSupplyLine creates an active line from a source settlement to an army.
func NewSupplyLine(armyID uuid.UUID, source world.SettlementRef, rate, distance, safety int) *SupplyLine {
	return &SupplyLine{
		ID:       uuid.New(),
		ArmyID:   armyID,
		Source:   source,
		Status:   SupplyActive,
		Rate:     rate,
		Distance: distance,
		Safety:   safety,
	}
}

// EffectiveSupplyRate is the throughput the army actually receives:
// full when active, halved (floored) when disrupted, nothing when severed.
func (sl *SupplyLine) EffectiveSupplyRate() int {
	switch sl.Status {
	case SupplyActive:
		return sl.Rate
	case SupplyDisrupted:
		return sl.Rate / 2
	default:
		return 0
	}
}

// DisruptionChance is the per-tick percentage odds of the line degrading one
// step. Long routes raise it, safety lowers it; clamped to [1, 50].
func (sl *SupplyLine) DisruptionChance() int {
	chance := 5 - sl.Safety/20
	if sl.Distance > 3 {
		chance += (sl.Distance - 3) * 2
	}
	if chance < 1 {
		chance = 1
	}
	if chance > 50 {
		chance = 50
	}
	return chance
}

// Degrade moves the line one step toward severed. Called by the tick process
// after a failed disruption roll. Severed is absorbing.
func (sl *SupplyLine) Degrade() SupplyStatus {
	switch sl.Status {
	case SupplyActive:
		sl.Status = SupplyDisrupted
	case SupplyDisrupted:
		sl.Status = SupplySevered
	}
	return sl.Status
}

// Reconnect restores the line to active. This is the external recovery
// action — an escort mission or a rerouted caravan — never automatic.
func (sl *SupplyLine) Reconnect() {
	sl.Status = SupplyActive
}
