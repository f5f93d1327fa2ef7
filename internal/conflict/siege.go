package conflict

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

// SiegeStatus tracks a siege's progress. Active, assault, and breached are
// the only non-terminal states.
type SiegeStatus string

const (
	SiegeActive    SiegeStatus = "active"
	SiegeAssault   SiegeStatus = "assault"
	SiegeBreached  SiegeStatus = "breached"
	SiegeCaptured  SiegeStatus = "captured"
	SiegeLifted    SiegeStatus = "lifted"
	SiegeAbandoned SiegeStatus = "abandoned"
)

// AssaultableFortification is the fortification level at or below which the
// walls no longer stop an assault, breach or none.
const AssaultableFortification = 20

// Siege is a fortification-reduction state machine: one attacking army
// against one settlement, inside one war. The garrison's supplies are its
// own resource, independent of the attacker's. HasBreach is sticky: a
// breach never closes while the siege lasts.
type Siege struct {
	ID     uuid.UUID `json:"id"`
	WarID  uuid.UUID `json:"war_id"`
	ArmyID uuid.UUID `json:"army_id"`

	Target world.SettlementRef `json:"target"`
	Status SiegeStatus         `json:"status"`

	FortificationLevel int `json:"fortification_level"` // 0–100
	GarrisonStrength   int `json:"garrison_strength"`
	GarrisonMorale     int `json:"garrison_morale"`
	SuppliesRemaining  int `json:"supplies_remaining"`

	DaysBesieged int      `json:"days_besieged"`
	HasBreach    bool     `json:"has_breach"`
	Equipment    []string `json:"siege_equipment"`

	Log []LogEntry `json:"siege_log"`
}

// BeginSiege opens a siege of a settlement by an army within a war.
func BeginSiege(warID, armyID uuid.UUID, target world.SettlementRef, fortification, garrison, garrisonMorale, garrisonSupplies int) *Siege {
	return &Siege{
		ID:                 uuid.New(),
		WarID:              warID,
		ArmyID:             armyID,
		Target:             target,
		Status:             SiegeActive,
		FortificationLevel: fortification,
		GarrisonStrength:   garrison,
		GarrisonMorale:     garrisonMorale,
		SuppliesRemaining:  garrisonSupplies,
	}
}

// IsOngoing reports whether the siege is in a non-terminal state.
func (s *Siege) IsOngoing() bool {
	switch s.Status {
	case SiegeActive, SiegeAssault, SiegeBreached:
		return true
	default:
		return false
	}
}

// CanAssault reports whether the attacker may attempt an assault: the walls
// are breached, or worn down far enough to storm.
func (s *Siege) CanAssault() bool {
	return s.HasBreach || s.FortificationLevel <= AssaultableFortification
}

// IsStarving reports whether the garrison has run out of food. Starvation
// accelerates garrison morale loss and surrender.
func (s *Siege) IsStarving() bool {
	return s.SuppliesRemaining <= 0
}

// AssaultDifficulty is the probability-of-failure score for an assault,
// clamped to [10, 90]. Strong walls and a steady garrison raise it; a breach
// lowers it for the rest of the siege. The tick process rolls against this
// number; the siege itself never rolls dice.
func (s *Siege) AssaultDifficulty() int {
	difficulty := 50
	if s.HasBreach {
		difficulty -= 20
	}
	difficulty += s.FortificationLevel / 5
	difficulty += s.GarrisonMorale / 10

	if difficulty < 10 {
		difficulty = 10
	}
	if difficulty > 90 {
		difficulty = 90
	}
	return difficulty
}

// BeginAssault moves the siege into the assault state. Only permitted once
// the walls can actually be stormed.
func (s *Siege) BeginAssault() error {
	if !s.CanAssault() {
		return fmt.Errorf("%w: assault against intact fortifications", military.ErrInvalidTransition)
	}
	return s.fire("assault")
}

// Repulse throws a failed assault back to the siege lines.
func (s *Siege) Repulse() error {
	return s.fire("repulse")
}

// RecordBreach marks the walls broken during an assault. The breach is
// permanent for the remainder of the siege.
func (s *Siege) RecordBreach() error {
	if err := s.fire("breach"); err != nil {
		return err
	}
	s.HasBreach = true
	return nil
}

// Capture ends the siege with the settlement taken.
func (s *Siege) Capture() error {
	return s.fire("capture")
}

// Lift ends the siege broken by a relief force.
func (s *Siege) Lift() error {
	return s.fire("lift")
}

// Abandon ends the siege with the attacker withdrawing.
func (s *Siege) Abandon() error {
	return s.fire("abandon")
}

func (s *Siege) fire(event string) error {
	next, err := fire(newSiegeMachine(string(s.Status)), event)
	if err != nil {
		return err
	}
	s.Status = SiegeStatus(next)
	return nil
}

// AppendLog records one siege event. The log is append-only.
func (s *Siege) AppendLog(tick uint64, format string, args ...any) {
	s.Log = append(s.Log, LogEntry{Tick: tick, Message: fmt.Sprintf(format, args...)})
}
