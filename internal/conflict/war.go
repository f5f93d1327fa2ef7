package conflict

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/military"
)

// CasusBelli is the declared justification for a war.
type CasusBelli uint8

const (
	CasusClaim CasusBelli = iota
	CasusConquest
	CasusRebellion
	CasusHolyWar
	CasusDefense
	CasusRaid
)

// CasusBelliName returns a display label for a casus belli.
func CasusBelliName(c CasusBelli) string {
	switch c {
	case CasusClaim:
		return "pressed claim"
	case CasusConquest:
		return "conquest"
	case CasusRebellion:
		return "rebellion"
	case CasusHolyWar:
		return "holy war"
	case CasusDefense:
		return "defensive war"
	case CasusRaid:
		return "raid"
	default:
		return "unknown"
	}
}

// WarStatus tracks a war through its life. Transitions run one way: an ended
// war never reopens and its scores freeze.
type WarStatus string

const (
	WarActive          WarStatus = "active"
	WarAttackerWinning WarStatus = "attacker_winning"
	WarDefenderWinning WarStatus = "defender_winning"
	WarWhitePeace      WarStatus = "white_peace"
	WarAttackerVictory WarStatus = "attacker_victory"
	WarDefenderVictory WarStatus = "defender_victory"
)

// DecisiveScore is the war score at which a side can claim outright victory.
const DecisiveScore = 100

// winningMargin is the lead over the opponent that marks a side as winning.
const winningMargin = 20

// War is a conflict between two sides. The kingdom fields are nullable —
// baronies and lone players wage war too; the typed attacker/defender refs
// are authoritative. Wars are historical records and are never deleted.
type War struct {
	ID uuid.UUID `json:"id"`

	AttackerKingdomID *uuid.UUID `json:"attacker_kingdom_id,omitempty"`
	DefenderKingdomID *uuid.UUID `json:"defender_kingdom_id,omitempty"`
	Attacker          PartyRef   `json:"attacker"`
	Defender          PartyRef   `json:"defender"`

	CasusBelli CasusBelli `json:"casus_belli"`
	Status     WarStatus  `json:"status"`

	AttackerScore int `json:"attacker_war_score"`
	DefenderScore int `json:"defender_war_score"`

	Goals        []*WarGoal        `json:"war_goals"`
	Participants []*WarParticipant `json:"participants"`

	PeaceTerms   string  `json:"peace_terms,omitempty"`
	DeclaredTick uint64  `json:"declared_tick"`
	EndedTick    *uint64 `json:"ended_tick,omitempty"`
}

// DeclareWar opens a war between two parties. The declarer joins as primary
// attacker and war leader; the target as primary defender and war leader.
func DeclareWar(attacker, defender PartyRef, casus CasusBelli, tick uint64) *War {
	w := &War{
		ID:           uuid.New(),
		Attacker:     attacker,
		Defender:     defender,
		CasusBelli:   casus,
		Status:       WarActive,
		DeclaredTick: tick,
	}
	w.AddParticipant(attacker, SideAttacker, RolePrimary, true, tick)
	w.AddParticipant(defender, SideDefender, RolePrimary, true, tick)
	return w
}

// IsEnded reports whether the war has concluded.
func (w *War) IsEnded() bool {
	return w.EndedTick != nil
}

// AddScore credits war score to a side. Scores freeze once the war ends;
// a late credit is dropped and reported false.
func (w *War) AddScore(side Side, points int) bool {
	if w.IsEnded() {
		return false
	}
	if side == SideAttacker {
		w.AttackerScore += points
	} else {
		w.DefenderScore += points
	}
	return true
}

// WinningSide reports which side currently qualifies as winning: a side with
// decisive score, or a lead of more than the winning margin. Contested wars
// report no winner. Advisory only — the tick process decides when a war
// actually flips status or ends.
func (w *War) WinningSide() (Side, bool) {
	switch {
	case w.AttackerScore >= DecisiveScore || w.AttackerScore-w.DefenderScore > winningMargin:
		return SideAttacker, true
	case w.DefenderScore >= DecisiveScore || w.DefenderScore-w.AttackerScore > winningMargin:
		return SideDefender, true
	default:
		return 0, false
	}
}

// MarkWinning drifts the status toward the given side's winning state.
func (w *War) MarkWinning(side Side) error {
	event := "attacker_gains"
	if side == SideDefender {
		event = "defender_gains"
	}
	return w.fire(event)
}

// Conclude ends the war with a terminal status, freezes scores, and records
// the peace terms. Ending an already-ended war is an invalid transition.
func (w *War) Conclude(status WarStatus, terms string, tick uint64) error {
	var event string
	switch status {
	case WarWhitePeace:
		event = "white_peace"
	case WarAttackerVictory:
		event = "attacker_victory"
	case WarDefenderVictory:
		event = "defender_victory"
	default:
		return fmt.Errorf("%w: %s is not a terminal war status", military.ErrInvalidTransition, status)
	}
	if err := w.fire(event); err != nil {
		return err
	}
	w.PeaceTerms = terms
	t := tick
	w.EndedTick = &t
	for _, p := range w.Participants {
		if p.IsActive() {
			p.Leave(tick)
		}
	}
	return nil
}

func (w *War) fire(event string) error {
	next, err := fire(newWarMachine(string(w.Status)), event)
	if err != nil {
		return err
	}
	w.Status = WarStatus(next)
	return nil
}

// AddParticipant records a belligerent joining the war.
func (w *War) AddParticipant(party PartyRef, side Side, role ParticipantRole, leader bool, tick uint64) *WarParticipant {
	p := &WarParticipant{
		WarID:       w.ID,
		Participant: party,
		Side:        side,
		Role:        role,
		IsWarLeader: leader,
		JoinedTick:  tick,
	}
	w.Participants = append(w.Participants, p)
	return p
}

// ActiveParticipants returns the belligerents still in the war on a side.
// Departed participants stay queryable on the war but are excluded here.
func (w *War) ActiveParticipants(side Side) []*WarParticipant {
	var out []*WarParticipant
	for _, p := range w.Participants {
		if p.Side == side && p.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

// WarLeaders returns the active leaders of a side. Nothing guarantees
// exactly one — callers must tolerate zero or several.
func (w *War) WarLeaders(side Side) []*WarParticipant {
	var out []*WarParticipant
	for _, p := range w.Participants {
		if p.Side == side && p.IsActive() && p.IsWarLeader {
			out = append(out, p)
		}
	}
	return out
}

// AddGoal attaches a war goal for a claimant's side.
func (w *War) AddGoal(g *WarGoal) {
	g.WarID = w.ID
	w.Goals = append(w.Goals, g)
}
