package conflict

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/talgya/warmarch/internal/military"
)

// fire runs an event on a status machine and reports the resulting state.
// Disallowed events surface as ErrInvalidTransition; the machine (and the
// owning entity) is left unchanged.
func fire(m *fsm.FSM, event string) (string, error) {
	if err := m.Event(context.Background(), event); err != nil {
		return m.Current(), fmt.Errorf("%w: %s from %s", military.ErrInvalidTransition, event, m.Current())
	}
	return m.Current(), nil
}

// Machines are rebuilt from the stored status value on demand, so entities
// loaded from a snapshot behave identically to freshly created ones.

func newWarMachine(current string) *fsm.FSM {
	return fsm.NewFSM(current, fsm.Events{
		{Name: "attacker_gains", Src: []string{"active", "defender_winning"}, Dst: "attacker_winning"},
		{Name: "defender_gains", Src: []string{"active", "attacker_winning"}, Dst: "defender_winning"},
		{Name: "white_peace", Src: []string{"active", "attacker_winning", "defender_winning"}, Dst: "white_peace"},
		{Name: "attacker_victory", Src: []string{"active", "attacker_winning", "defender_winning"}, Dst: "attacker_victory"},
		{Name: "defender_victory", Src: []string{"active", "attacker_winning", "defender_winning"}, Dst: "defender_victory"},
	}, fsm.Callbacks{})
}

func newSiegeMachine(current string) *fsm.FSM {
	return fsm.NewFSM(current, fsm.Events{
		{Name: "assault", Src: []string{"active"}, Dst: "assault"},
		{Name: "repulse", Src: []string{"assault"}, Dst: "active"},
		{Name: "breach", Src: []string{"assault"}, Dst: "breached"},
		{Name: "capture", Src: []string{"breached"}, Dst: "captured"},
		{Name: "lift", Src: []string{"active", "assault", "breached"}, Dst: "lifted"},
		{Name: "abandon", Src: []string{"active", "assault", "breached"}, Dst: "abandoned"},
	}, fsm.Callbacks{})
}

func newBattlePhaseMachine(current string) *fsm.FSM {
	return fsm.NewFSM(current, fsm.Events{
		{Name: "advance", Src: []string{"engagement"}, Dst: "melee"},
		{Name: "advance", Src: []string{"melee"}, Dst: "pursuit"},
		{Name: "advance", Src: []string{"pursuit"}, Dst: "aftermath"},
	}, fsm.Callbacks{})
}
