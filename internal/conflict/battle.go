package conflict

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

// BattleType classifies how an engagement came about.
type BattleType uint8

const (
	BattleField BattleType = iota
	BattleSiegeAssault
	BattleNaval
	BattleSkirmish
)

// BattleTypeName returns a display label for a battle type.
func BattleTypeName(t BattleType) string {
	switch t {
	case BattleField:
		return "field battle"
	case BattleSiegeAssault:
		return "siege assault"
	case BattleNaval:
		return "naval battle"
	default:
		return "skirmish"
	}
}

// BattleStatus is the battle's resolution. Ongoing until resolved, then
// exactly one outcome, forever.
type BattleStatus string

const (
	BattleOngoing         BattleStatus = "ongoing"
	BattleAttackerVictory BattleStatus = "attacker_victory"
	BattleDefenderVictory BattleStatus = "defender_victory"
	BattleDraw            BattleStatus = "draw"
	BattleInconclusive    BattleStatus = "inconclusive"
)

// BattlePhase is the stage of the engagement. Phases only ever move forward.
type BattlePhase string

const (
	PhaseEngagement BattlePhase = "engagement"
	PhaseMelee      BattlePhase = "melee"
	PhasePursuit    BattlePhase = "pursuit"
	PhaseAftermath  BattlePhase = "aftermath"
)

var phaseOrder = map[BattlePhase]int{
	PhaseEngagement: 0,
	PhaseMelee:      1,
	PhasePursuit:    2,
	PhaseAftermath:  3,
}

// BattleParticipant ties an army to a side of a battle.
type BattleParticipant struct {
	BattleID uuid.UUID `json:"battle_id"`
	ArmyID   uuid.UUID `json:"army_id"`
	Side     Side      `json:"side"`
}

// Battle is a field engagement inside a war. Terrain and weather are
// snapshot when the battle starts and never resampled. Casualty counters
// only grow and the log is append-only.
type Battle struct {
	ID    uuid.UUID `json:"id"`
	WarID uuid.UUID `json:"war_id"`

	Location world.SettlementRef `json:"location"`
	Type     BattleType          `json:"battle_type"`
	Status   BattleStatus        `json:"status"`
	Phase    BattlePhase         `json:"phase"`
	Day      uint64              `json:"day"` // World tick at battle start.

	AttackerTroopsStart int `json:"attacker_troops_start"`
	DefenderTroopsStart int `json:"defender_troops_start"`
	AttackerCasualties  int `json:"attacker_casualties"`
	DefenderCasualties  int `json:"defender_casualties"`

	Terrain world.TerrainModifiers `json:"terrain"`
	Weather world.WeatherModifiers `json:"weather"`

	Participants []*BattleParticipant `json:"participants"`
	Log          []LogEntry           `json:"battle_log"`
}

// NewBattle opens a battle at the engagement phase with fixed terrain and
// weather conditions.
func NewBattle(warID uuid.UUID, location world.SettlementRef, t BattleType, day uint64, terrain world.TerrainModifiers, weather world.WeatherModifiers) *Battle {
	return &Battle{
		ID:       uuid.New(),
		WarID:    warID,
		Location: location,
		Type:     t,
		Status:   BattleOngoing,
		Phase:    PhaseEngagement,
		Day:      day,
		Terrain:  terrain,
		Weather:  weather,
	}
}

// AddArmy enrolls an army on a side and counts its troops into the starting
// strength.
func (b *Battle) AddArmy(armyID uuid.UUID, side Side, troops int) {
	b.Participants = append(b.Participants, &BattleParticipant{
		BattleID: b.ID,
		ArmyID:   armyID,
		Side:     side,
	})
	if side == SideAttacker {
		b.AttackerTroopsStart += troops
	} else {
		b.DefenderTroopsStart += troops
	}
}

// AdvancePhase moves the battle one phase forward. Advancing past aftermath
// is rejected.
func (b *Battle) AdvancePhase() error {
	next, err := fire(newBattlePhaseMachine(string(b.Phase)), "advance")
	if err != nil {
		return err
	}
	b.Phase = BattlePhase(next)
	return nil
}

// SetPhase jumps the battle to a phase. Only forward moves are accepted;
// setting an earlier phase is rejected and changes nothing.
func (b *Battle) SetPhase(p BattlePhase) error {
	target, ok := phaseOrder[p]
	if !ok {
		return fmt.Errorf("%w: unknown battle phase %q", military.ErrInvalidTransition, p)
	}
	if target < phaseOrder[b.Phase] {
		return fmt.Errorf("%w: battle phase %s back to %s", military.ErrInvalidTransition, b.Phase, p)
	}
	b.Phase = p
	return nil
}

// AddCasualties accumulates losses for a side. Counters are monotonic;
// negative adjustments are rejected.
func (b *Battle) AddCasualties(side Side, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: casualties cannot decrease", military.ErrInvalidTransition)
	}
	if side == SideAttacker {
		b.AttackerCasualties += n
	} else {
		b.DefenderCasualties += n
	}
	return nil
}

// TotalCasualties is the combined losses of both sides.
func (b *Battle) TotalCasualties() int {
	return b.AttackerCasualties + b.DefenderCasualties
}

// Resolve flips the battle from ongoing to its one and only outcome.
// A second resolution, or resolving to ongoing, is rejected.
func (b *Battle) Resolve(outcome BattleStatus) error {
	if b.Status != BattleOngoing {
		return fmt.Errorf("%w: battle already resolved as %s", military.ErrInvalidTransition, b.Status)
	}
	switch outcome {
	case BattleAttackerVictory, BattleDefenderVictory, BattleDraw, BattleInconclusive:
		b.Status = outcome
		return nil
	default:
		return fmt.Errorf("%w: %s is not a battle outcome", military.ErrInvalidTransition, outcome)
	}
}

// AppendLog records one battle event. The log is append-only.
func (b *Battle) AppendLog(tick uint64, format string, args ...any) {
	b.Log = append(b.Log, LogEntry{Tick: tick, Message: fmt.Sprintf(format, args...)})
}
