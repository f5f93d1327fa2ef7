package conflict

import "github.com/google/uuid"

// ParticipantRole distinguishes how a belligerent entered the war.
type ParticipantRole uint8

const (
	RolePrimary ParticipantRole = iota
	RoleAlly
	RoleVassal
)

// RoleName returns a display label for a participant role.
func RoleName(r ParticipantRole) string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleAlly:
		return "ally"
	default:
		return "vassal"
	}
}

// WarParticipant is a belligerent's membership record in one war. A nil
// LeftTick means currently active; departed participants remain on the war
// for history but drop out of score and troop aggregation.
type WarParticipant struct {
	WarID       uuid.UUID       `json:"war_id"`
	Participant PartyRef        `json:"participant"`
	Side        Side            `json:"side"`
	Role        ParticipantRole `json:"role"`
	IsWarLeader bool            `json:"is_war_leader"`

	ContributionScore int     `json:"contribution_score"`
	JoinedTick        uint64  `json:"joined_tick"`
	LeftTick          *uint64 `json:"left_tick,omitempty"`
}

// IsActive reports whether the participant is still in the war.
func (p *WarParticipant) IsActive() bool {
	return p.LeftTick == nil
}

// Contribute credits battle and siege contributions to the participant.
func (p *WarParticipant) Contribute(points int) {
	if p.IsActive() {
		p.ContributionScore += points
	}
}

// Leave records the participant's exit — defeat, separate peace, or a vassal
// released from service. Idempotent: a second exit keeps the first tick.
func (p *WarParticipant) Leave(tick uint64) {
	if p.LeftTick == nil {
		t := tick
		p.LeftTick = &t
	}
}
