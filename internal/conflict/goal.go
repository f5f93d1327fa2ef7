package conflict

import (
	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/world"
)

// GoalType enumerates what a war goal demands.
type GoalType uint8

const (
	GoalTerritory GoalType = iota
	GoalSubjugation
	GoalIndependence
	GoalRaid
	GoalHumiliation
)

// GoalTypeName returns a display label for a goal type.
func GoalTypeName(t GoalType) string {
	switch t {
	case GoalTerritory:
		return "territory"
	case GoalSubjugation:
		return "subjugation"
	case GoalIndependence:
		return "independence"
	case GoalRaid:
		return "raid"
	case GoalHumiliation:
		return "humiliation"
	default:
		return "unknown"
	}
}

// GoalTarget points a goal at either a polity or a settlement.
type GoalTarget struct {
	Polity     *PartyRef            `json:"polity,omitempty"`
	Settlement *world.SettlementRef `json:"settlement,omitempty"`
}

// WarGoal is one claimed objective inside a war. Achievement is a one-way
// flip that pays its score value to the claimant's side exactly once.
type WarGoal struct {
	ID            uuid.UUID  `json:"id"`
	WarID         uuid.UUID  `json:"war_id"`
	Type          GoalType   `json:"goal_type"`
	Target        GoalTarget `json:"target"`
	Claimant      PartyRef   `json:"claimant"`
	Side          Side       `json:"side"`
	Achieved      bool       `json:"is_achieved"`
	WarScoreValue int        `json:"war_score_value"`
}

// NewSettlementGoal creates a goal targeting a settlement.
func NewSettlementGoal(t GoalType, target world.SettlementRef, claimant PartyRef, side Side, scoreValue int) *WarGoal {
	return &WarGoal{
		ID:            uuid.New(),
		Type:          t,
		Target:        GoalTarget{Settlement: &target},
		Claimant:      claimant,
		Side:          side,
		WarScoreValue: scoreValue,
	}
}

// NewPolityGoal creates a goal targeting a whole polity.
func NewPolityGoal(t GoalType, target PartyRef, claimant PartyRef, side Side, scoreValue int) *WarGoal {
	return &WarGoal{
		ID:            uuid.New(),
		Type:          t,
		Target:        GoalTarget{Polity: &target},
		Claimant:      claimant,
		Side:          side,
		WarScoreValue: scoreValue,
	}
}

// Achieve flips the goal to achieved and returns its war score value.
// Re-achieving an achieved goal is a no-op worth nothing.
func (g *WarGoal) Achieve() (int, bool) {
	if g.Achieved {
		return 0, false
	}
	g.Achieved = true
	return g.WarScoreValue, true
}

// TargetsSettlement reports whether the goal targets the given settlement.
func (g *WarGoal) TargetsSettlement(ref world.SettlementRef) bool {
	return g.Target.Settlement != nil && *g.Target.Settlement == ref
}
