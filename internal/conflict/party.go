// Package conflict provides wars, sieges, and field battles — the state
// machines the tick process advances. Domain methods here expose
// deterministic formulas and probabilities only; every dice roll happens in
// the caller.
package conflict

import "github.com/google/uuid"

// PartyKind tags which kind of belligerent a reference names.
type PartyKind uint8

const (
	PartyKingdom PartyKind = iota
	PartyBarony
	PartyPlayer
)

// PartyRef identifies a belligerent: a kingdom, a barony, or a player acting
// in their own name.
type PartyRef struct {
	Kind PartyKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// KindName returns a display label for the party kind.
func (p PartyRef) KindName() string {
	switch p.Kind {
	case PartyKingdom:
		return "kingdom"
	case PartyBarony:
		return "barony"
	default:
		return "player"
	}
}

// Side labels which side of a war a record belongs to.
type Side uint8

const (
	SideAttacker Side = iota
	SideDefender
)

// SideName returns a display label for a side.
func SideName(s Side) string {
	if s == SideAttacker {
		return "attacker"
	}
	return "defender"
}

// LogEntry is one line in a siege or battle log. Logs are append-only:
// entries are never removed or reordered.
type LogEntry struct {
	Tick    uint64 `json:"tick"`
	Message string `json:"message"`
}
